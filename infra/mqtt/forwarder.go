package mqtt

import (
	"context"

	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/logger"
	coremqtt "github.com/kilianp07/powerplan/core/mqtt"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// StartForwarder publishes every PlanEvent seen on bus until ctx is canceled
// or the bus closes. The returned channel is closed on exit.
func StartForwarder(ctx context.Context, bus eventbus.EventBus, pub coremqtt.PlanPublisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
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
				if err := pub.PublishPlan(ctx, pe); err != nil {
					log.Errorf("forward plan %s: %v", pe.Result.ID, err)
				}
			}
		}
	}()
	return done
}
