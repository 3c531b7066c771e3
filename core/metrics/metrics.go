package metrics

import (
	"time"

	"github.com/kilianp07/powerplan/core/model"
)

// Plan outcomes.
const (
	OutcomeBalanced   = "balanced"
	OutcomeInfeasible = "infeasible"
	OutcomeRejected   = "rejected"
)

// PlanRecord describes one production plan computation.
type PlanRecord struct {
	PlanID   string
	Strategy string
	Outcome  string
	Load     float64
	Wind     float64
	Cost     float64
	Residual float64
	Duration time.Duration
	Plan     model.ProductionPlan
	Time     time.Time
}

// MetricsSink records production plans for observability purposes.
type MetricsSink interface {
	RecordPlan(rec PlanRecord) error
}

// RequestRecord describes one HTTP request served by the API.
type RequestRecord struct {
	Route    string
	Method   string
	Status   int
	Duration time.Duration
}

// RequestRecorder is implemented by sinks able to record API traffic.
type RequestRecorder interface {
	RecordRequest(rec RequestRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanRecord) error       { return nil }
func (NopSink) RecordRequest(RequestRecord) error { return nil }
