package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/powerplan/core/model"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// WriteJSON writes the production plan to w as an indented JSON array.
func WriteJSON(w io.Writer, plan model.ProductionPlan) error {
	if plan == nil {
		plan = model.ProductionPlan{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// WriteCSV writes the production plan to w with a name,p header.
func WriteCSV(w io.Writer, plan model.ProductionPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "p"}); err != nil {
		return err
	}
	for _, a := range plan {
		if err := cw.Write([]string{a.Name, strconv.FormatFloat(a.P, 'f', 1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format.
func Write(w io.Writer, format string, plan model.ProductionPlan) error {
	switch format {
	case FormatJSON, "":
		return WriteJSON(w, plan)
	case FormatCSV:
		return WriteCSV(w, plan)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
