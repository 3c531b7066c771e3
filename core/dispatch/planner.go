package dispatch

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/model"
)

// Result describes one computed production plan.
type Result struct {
	ID        string
	Timestamp time.Time
	Load      float64
	Plan      model.ProductionPlan
	Strategy  string
	// Wind is the total wind output after curtailment.
	Wind float64
	// Cost is the hourly cost of the plan in €.
	Cost float64
	// Residual is load minus planned total; zero for a balanced plan.
	Residual float64
	Duration time.Duration
}

// Balanced reports whether the plan matches the load within Tolerance.
func (r Result) Balanced() bool { return math.Abs(r.Residual) <= Tolerance }

// Planner runs the cost, wind, dispatch and reconciliation stages. It holds no
// per-call state and is safe for concurrent use.
type Planner struct {
	dispatcher Dispatcher
	reconciler Reconciler
	log        logger.Logger
	now        func() time.Time
}

// NewPlanner builds a planner. A nil dispatcher selects the merit order pass
// and a nil logger disables logging.
func NewPlanner(d Dispatcher, order ReconcileOrder, log logger.Logger) *Planner {
	if d == nil {
		d = MeritOrderDispatcher{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Planner{dispatcher: d, reconciler: Reconciler{Order: order}, log: log, now: time.Now}
}

// NewPlannerFromConfig builds a planner from validated settings.
func NewPlannerFromConfig(cfg Config, log logger.Logger) (*Planner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewPlanner(cfg.NewDispatcher(), cfg.ReconcileOrder, log), nil
}

// Strategy returns the name of the configured dispatcher.
func (p *Planner) Strategy() string { return p.dispatcher.Name() }

// Plan computes the production plan for req. When the load cannot be matched
// the best-effort result is returned together with an *InfeasibleError.
func (p *Planner) Plan(req model.PlanRequest) (Result, error) {
	start := p.now()
	units := newUnits(req)

	wind, remaining := allocateWind(units, req.Load)
	p.dispatcher.Dispatch(units, remaining)
	residual := p.reconciler.Reconcile(units, req.Load)

	res := Result{
		ID:        uuid.NewString(),
		Timestamp: start,
		Load:      req.Load,
		Plan:      make(model.ProductionPlan, len(units)),
		Strategy:  p.dispatcher.Name(),
		Wind:      wind,
		Residual:  residual,
	}
	for i, u := range units {
		res.Plan[i] = model.Allocation{Name: u.Plant.Name, P: Round1(u.Output)}
		if u.Output > 0 {
			res.Cost += u.Output * u.Cost
		}
	}
	res.Cost = math.Round(res.Cost*100) / 100
	res.Duration = p.now().Sub(start)

	p.log.Debugw("production plan computed", map[string]any{
		"plan_id":   res.ID,
		"load":      req.Load,
		"wind":      wind,
		"remaining": remaining,
		"strategy":  res.Strategy,
		"cost":      res.Cost,
		"residual":  residual,
	})
	if !res.Balanced() {
		err := &InfeasibleError{Load: req.Load, Residual: residual}
		p.log.Warnf("plan %s: %v", res.ID, err)
		return res, err
	}
	return res, nil
}
