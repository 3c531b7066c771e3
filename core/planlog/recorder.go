package planlog

import (
	"context"
	"errors"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// Outcomes stored in PlanRecord.Outcome.
const (
	OutcomeBalanced   = "balanced"
	OutcomeInfeasible = "infeasible"
)

// RecordFromEvent builds the stored form of a planner run.
func RecordFromEvent(ev events.PlanEvent) PlanRecord {
	r := ev.Result
	rec := PlanRecord{
		ID:        r.ID,
		Timestamp: r.Timestamp,
		Source:    ev.Source,
		Strategy:  r.Strategy,
		Outcome:   OutcomeBalanced,
		Request:   ev.Request,
		Plan:      r.Plan,
		Cost:      r.Cost,
		Residual:  r.Residual,
	}
	if ev.Err != nil {
		rec.Error = ev.Err.Error()
		if errors.Is(ev.Err, dispatch.ErrInfeasible) {
			rec.Outcome = OutcomeInfeasible
		}
	}
	return rec
}

// StartRecorder appends every events.PlanEvent published on bus to store until ctx
// is canceled or the bus closes. The returned channel is closed on exit.
func StartRecorder(ctx context.Context, bus eventbus.EventBus, store LogStore, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				pe, ok := ev.(events.PlanEvent)
				if !ok {
					continue
				}
				if err := store.Append(ctx, RecordFromEvent(pe)); err != nil {
					log.Errorf("append plan %s: %v", pe.Result.ID, err)
				}
			}
		}
	}()
	return done
}
