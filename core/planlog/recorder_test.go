package planlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

func TestRecordFromEvent(t *testing.T) {
	req := model.PlanRequest{Load: 30, Powerplants: []model.Powerplant{{Name: "g", Type: model.PlantGasFired}}}
	ev := events.PlanEvent{
		Request: req,
		Result:  dispatch.Result{ID: "p1", Strategy: "greedy", Residual: 30, Plan: model.ProductionPlan{{Name: "g", P: 0}}},
		Err:     &dispatch.InfeasibleError{Load: 30, Residual: 30},
		Source:  events.SourceCLI,
	}
	rec := RecordFromEvent(ev)
	assert.Equal(t, OutcomeInfeasible, rec.Outcome)
	assert.Equal(t, events.SourceCLI, rec.Source)
	assert.Equal(t, req, rec.Request)
	assert.NotEmpty(t, rec.Error)

	ev.Err = nil
	assert.Equal(t, OutcomeBalanced, RecordFromEvent(ev).Outcome)
}

func TestStartRecorder(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "plans.jsonl"))
	require.NoError(t, err)
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := StartRecorder(ctx, bus, store, nil)

	bus.Publish(events.RequestEvent{Route: "/productionplan"})
	bus.Publish(events.PlanEvent{Result: dispatch.Result{ID: "p1", Timestamp: time.Now()}})

	require.Eventually(t, func() bool {
		recs, err := store.Query(context.Background(), LogQuery{})
		return err == nil && len(recs) == 1 && recs[0].ID == "p1"
	}, time.Second, 10*time.Millisecond)

	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recorder did not stop")
	}
}
