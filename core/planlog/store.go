package planlog

import (
	"context"
	"time"

	"github.com/kilianp07/powerplan/core/model"
)

// PlanRecord captures one planner run: the request it received and the plan
// it produced.
type PlanRecord struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Source    string               `json:"source"`
	Strategy  string               `json:"strategy"`
	Outcome   string               `json:"outcome"`
	Request   model.PlanRequest    `json:"request"`
	Plan      model.ProductionPlan `json:"plan"`
	Cost      float64              `json:"cost"`
	Residual  float64              `json:"residual"`
	Error     string               `json:"error,omitempty"`
}

// LogQuery defines filters for retrieving records. Zero values match all.
type LogQuery struct {
	Start time.Time
	End   time.Time
	// Plant keeps the records whose request names the plant.
	Plant   string
	Outcome string
	// Limit keeps the most recent records; 0 means no limit.
	Limit int
}

// LogStore persists PlanRecords and supports querying. Query returns records
// in append order.
type LogStore interface {
	Append(ctx context.Context, rec PlanRecord) error
	Query(ctx context.Context, q LogQuery) ([]PlanRecord, error)
	Close() error
}

// Matches reports whether r satisfies every filter of q except Limit.
func (q LogQuery) Matches(r PlanRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	if q.Plant != "" {
		for _, p := range r.Request.Powerplants {
			if p.Name == q.Plant {
				return true
			}
		}
		return false
	}
	return true
}

func (q LogQuery) limit(recs []PlanRecord) []PlanRecord {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, PlanRecord) error { return nil }
func (NopStore) Query(context.Context, LogQuery) ([]PlanRecord, error) {
	return nil, nil
}
func (NopStore) Close() error { return nil }
