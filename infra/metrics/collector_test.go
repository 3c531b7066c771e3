package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/events"
	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

type memorySink struct {
	mu       sync.Mutex
	plans    []coremetrics.PlanRecord
	requests []coremetrics.RequestRecord
}

func (m *memorySink) RecordPlan(r coremetrics.PlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, r)
	return nil
}

func (m *memorySink) RecordRequest(r coremetrics.RequestRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, r)
	return nil
}

func (m *memorySink) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plans), len(m.requests)
}

func TestPlanRecordFromEvent(t *testing.T) {
	res := dispatch.Result{ID: "p1", Strategy: "greedy", Load: 30, Residual: 30, Plan: model.ProductionPlan{{Name: "g", P: 0}}}
	rec := PlanRecordFromEvent(events.PlanEvent{Result: res, Err: &dispatch.InfeasibleError{Load: 30, Residual: 30}})
	assert.Equal(t, coremetrics.OutcomeInfeasible, rec.Outcome)
	assert.Equal(t, "p1", rec.PlanID)
	assert.Equal(t, 30.0, rec.Residual)

	assert.Equal(t, coremetrics.OutcomeBalanced, PlanRecordFromEvent(events.PlanEvent{Result: res}).Outcome)
	assert.Equal(t, coremetrics.OutcomeRejected, PlanRecordFromEvent(events.PlanEvent{Err: errors.New("bad")}).Outcome)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	sink := &memorySink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink, nil)

	bus.Publish(events.PlanEvent{Result: dispatch.Result{ID: "p1"}})
	bus.Publish(events.RequestEvent{Route: "/productionplan", Method: "POST", Status: 200})
	bus.Publish("ignored")

	require.Eventually(t, func() bool {
		p, r := sink.counts()
		return p == 1 && r == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestStartEventCollector_StopsOnBusClose(t *testing.T) {
	bus := eventbus.New()
	done := StartEventCollector(context.Background(), bus, &memorySink{}, nil)
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestStartEventCollector_NilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, &memorySink{}, nil)
	_, open := <-done
	assert.False(t, open)
}
