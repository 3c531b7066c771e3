package metrics

import (
	"context"
	"errors"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/events"
	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// PlanRecordFromEvent converts a planner event to a metrics record.
func PlanRecordFromEvent(ev events.PlanEvent) coremetrics.PlanRecord {
	r := ev.Result
	outcome := coremetrics.OutcomeBalanced
	switch {
	case errors.Is(ev.Err, dispatch.ErrInfeasible):
		outcome = coremetrics.OutcomeInfeasible
	case ev.Err != nil:
		outcome = coremetrics.OutcomeRejected
	}
	return coremetrics.PlanRecord{
		PlanID:   r.ID,
		Strategy: r.Strategy,
		Outcome:  outcome,
		Load:     r.Load,
		Wind:     r.Wind,
		Cost:     r.Cost,
		Residual: r.Residual,
		Duration: r.Duration,
		Plan:     r.Plan,
		Time:     r.Timestamp,
	}
}

// StartEventCollector subscribes to the event bus and records plan and
// request events. It stops when the context is canceled or the bus closes.
// The returned channel is closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
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
				switch e := ev.(type) {
				case events.PlanEvent:
					if err := sink.RecordPlan(PlanRecordFromEvent(e)); err != nil {
						log.Warnf("record plan %s: %v", e.Result.ID, err)
					}
				case events.RequestEvent:
					if r, ok := sink.(coremetrics.RequestRecorder); ok {
						if err := r.RecordRequest(coremetrics.RequestRecord{
							Route:    e.Route,
							Method:   e.Method,
							Status:   e.Status,
							Duration: e.Duration,
						}); err != nil {
							log.Warnf("record request: %v", err)
						}
					}
				}
			}
		}
	}()
	return done
}
