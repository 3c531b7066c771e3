package mqtt

import (
	"context"

	"github.com/kilianp07/powerplan/core/events"
)

// PlanPublisher sends computed plans to the plant controllers listening on
// the broker.
type PlanPublisher interface {
	// PublishPlan announces the plan and, when it is balanced, one setpoint
	// per plant.
	PublishPlan(ctx context.Context, ev events.PlanEvent) error
}
