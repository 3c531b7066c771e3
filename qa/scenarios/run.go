package scenarios

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/planlog"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/infra/metrics"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// RunScenario plans sc and checks the result, the exported metrics and the
// persisted plan log.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry("qa", reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	store, err := planlog.NewSQLiteStore(filepath.Join(t.TempDir(), "plans.db"))
	if err != nil {
		t.Fatalf("plan store: %v", err)
	}
	defer func() { _ = store.Close() }()

	planner, err := dispatch.NewPlannerFromConfig(sc.Dispatch, logger.NopLogger{})
	if err != nil {
		t.Fatalf("planner: %v", err)
	}

	bus := eventbus.New()
	ctx := context.Background()
	collected := metrics.StartEventCollector(ctx, bus, sink, nil)
	recorded := planlog.StartRecorder(ctx, bus, store, nil)

	res, planErr := planner.Plan(sc.Request)
	bus.Publish(events.PlanEvent{Request: sc.Request, Result: res, Err: planErr, Source: events.SourceCLI})
	bus.Close()
	<-collected
	<-recorded

	outcome := planlog.OutcomeBalanced
	if sc.Expected.Infeasible {
		outcome = planlog.OutcomeInfeasible
		if !errors.Is(planErr, dispatch.ErrInfeasible) {
			t.Fatalf("expected infeasible plan, got err=%v", planErr)
		}
		if math.Abs(res.Residual-sc.Expected.Residual) > dispatch.Tolerance {
			t.Errorf("residual %.1f, want %.1f", res.Residual, sc.Expected.Residual)
		}
	} else {
		if planErr != nil {
			t.Fatalf("plan: %v", planErr)
		}
		if math.Abs(res.Plan.Total()-sc.Request.Load) > dispatch.Tolerance {
			t.Errorf("total %.1f does not match load %.1f", res.Plan.Total(), sc.Request.Load)
		}
	}
	if len(res.Plan) != len(sc.Request.Powerplants) {
		t.Fatalf("plan has %d entries for %d plants", len(res.Plan), len(sc.Request.Powerplants))
	}
	for i, a := range res.Plan {
		if a.Name != sc.Request.Powerplants[i].Name {
			t.Errorf("entry %d is %s, want %s", i, a.Name, sc.Request.Powerplants[i].Name)
		}
	}
	for name, want := range sc.Expected.Plan {
		got, ok := res.Plan.Get(name)
		if !ok {
			t.Errorf("plant %s missing from plan", name)
			continue
		}
		if math.Abs(got-want) > dispatch.Tolerance {
			t.Errorf("plant %s: got %.1f, want %.1f", name, got, want)
		}
	}
	if sc.Expected.Cost != 0 && math.Abs(res.Cost-sc.Expected.Cost) > 0.5 {
		t.Errorf("cost %.2f, want %.2f", res.Cost, sc.Expected.Cost)
	}

	if n, err := testutil.GatherAndCount(reg, "qa_plans_total"); err != nil || n != 1 {
		t.Errorf("expected one plans_total series, got %d (%v)", n, err)
	}
	recs, err := store.Query(ctx, planlog.LogQuery{Outcome: outcome})
	if err != nil {
		t.Fatalf("query plan log: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != res.ID {
		t.Errorf("plan log holds %d %s records, want plan %s", len(recs), outcome, res.ID)
	}
}
