package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/powerplan/app"
	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/pkg/export"
)

func newPlanCmd(opts *options) *cobra.Command {
	var (
		file       string
		format     string
		bestEffort bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute a production plan from a payload file",
		Long: "Compute a production plan from a JSON or YAML payload and print it as JSON or CSV.\n" +
			"Use -f - to read JSON from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != export.FormatJSON && format != export.FormatCSV {
				return fmt.Errorf("unknown output format %q", format)
			}
			req, err := readPayload(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			// The HTTP server is not started, keep the port free.
			svc, err := app.New(cfg)
			if err != nil {
				return err
			}
			svc.Start()
			res, planErr := svc.Plan(req)
			if err := svc.Close(); err != nil {
				return err
			}
			if planErr != nil && !(bestEffort && errors.Is(planErr, dispatch.ErrInfeasible)) {
				return planErr
			}
			if planErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", planErr)
			}
			return export.Write(cmd.OutOrStdout(), format, res.Plan)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "payload file (.json, .yaml or - for stdin)")
	cmd.Flags().StringVarP(&format, "output", "o", export.FormatJSON, "output format: json or csv")
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "print the closest plan when the load cannot be met")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readPayload(stdin io.Reader, path string) (model.PlanRequest, error) {
	var req model.PlanRequest
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("read payload: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return req, fmt.Errorf("decode payload %s: %w", path, err)
	}
	return req, nil
}
