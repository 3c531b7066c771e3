package events

import (
	"time"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/model"
)

// Plan sources.
const (
	SourceHTTP = "http"
	SourceCLI  = "cli"
)

// PlanEvent is published after every planner run. Err is non-nil when the
// plan could not match the load; Result then holds the best-effort plan.
type PlanEvent struct {
	Request model.PlanRequest
	Result  dispatch.Result
	Err     error
	Source  string
}

// RequestEvent is published by the API for every served request.
type RequestEvent struct {
	Route    string
	Method   string
	Status   int
	Duration time.Duration
}
