package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/powerplan/core/metrics"
)

// DefaultNamespace prefixes every metric exported by PromSink.
const DefaultNamespace = "powerplan"

// PromSink records production plans and API traffic in Prometheus metrics.
type PromSink struct {
	plans     *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	residual  prometheus.Gauge
	cost      prometheus.Gauge
	setpoints *prometheus.GaugeVec
	requests  *prometheus.CounterVec
	reqTime   *prometheus.HistogramVec
}

// NewPromSink registers the plan metrics on the default Prometheus registerer.
// They are served by StartPromServer or by the API server's /metrics route.
func NewPromSink(namespace string) (*PromSink, error) {
	return NewPromSinkWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(namespace string, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	s := &PromSink{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Total number of computed production plans",
		}, []string{"strategy", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Time spent computing a production plan",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"strategy"}),
		residual: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plan_residual_mw",
			Help:      "Load minus planned output of the last plan",
		}),
		cost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plan_cost_euro_per_hour",
			Help:      "Hourly cost of the last plan",
		}),
		setpoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plant_setpoint_mw",
			Help:      "Power assigned to each plant by the last plan",
		}, []string{"plant"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of API requests",
		}, []string{"route", "method", "code"}),
		reqTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	var err error
	if s.plans, err = register(reg, s.plans); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.residual, err = register(reg, s.residual); err != nil {
		return nil, err
	}
	if s.cost, err = register(reg, s.cost); err != nil {
		return nil, err
	}
	if s.setpoints, err = register(reg, s.setpoints); err != nil {
		return nil, err
	}
	if s.requests, err = register(reg, s.requests); err != nil {
		return nil, err
	}
	if s.reqTime, err = register(reg, s.reqTime); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlan counts the plan and exposes its setpoints.
func (s *PromSink) RecordPlan(rec coremetrics.PlanRecord) error {
	s.plans.WithLabelValues(rec.Strategy, rec.Outcome).Inc()
	if rec.Outcome == coremetrics.OutcomeRejected {
		return nil
	}
	s.latency.WithLabelValues(rec.Strategy).Observe(rec.Duration.Seconds())
	s.residual.Set(rec.Residual)
	s.cost.Set(rec.Cost)
	s.setpoints.Reset()
	for _, a := range rec.Plan {
		s.setpoints.WithLabelValues(a.Name).Set(a.P)
	}
	return nil
}

// RecordRequest counts an API request.
func (s *PromSink) RecordRequest(rec coremetrics.RequestRecord) error {
	s.requests.WithLabelValues(rec.Route, rec.Method, strconv.Itoa(rec.Status)).Inc()
	s.reqTime.WithLabelValues(rec.Route).Observe(rec.Duration.Seconds())
	return nil
}
