package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/powerplan/api"
	"github.com/kilianp07/powerplan/config"
	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/events"
	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/core/monitoring"
	"github.com/kilianp07/powerplan/core/planlog"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/infra/metrics"
	inframon "github.com/kilianp07/powerplan/infra/monitoring"
	"github.com/kilianp07/powerplan/infra/mqtt"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// drainTimeout bounds how long Close waits for consumers to flush the bus.
const drainTimeout = 5 * time.Second

// Service wires the planner to the API and its event consumers.
type Service struct {
	Planner *dispatch.Planner
	Server  *api.Server

	cfg       *config.Config
	bus       *eventbus.Bus
	sink      coremetrics.MetricsSink
	store     planlog.LogStore
	publisher *mqtt.PahoPublisher
	log       logger.Logger

	startOnce sync.Once
	closeOnce sync.Once
	cancel    context.CancelFunc
	done      []<-chan struct{}
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)
	logg := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	monitoring.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	planner, err := dispatch.NewPlannerFromConfig(cfg.Dispatch, logger.New("planner"))
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	store, err := planlog.NewStore(cfg.Logging.Plans)
	if err != nil {
		return nil, fmt.Errorf("plan log: %w", err)
	}
	var pub *mqtt.PahoPublisher
	if cfg.MQTT.Enabled {
		if pub, err = mqtt.NewPahoPublisher(cfg.MQTT); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	bus := eventbus.New()
	srv := api.NewServer(cfg.Server, api.Deps{
		Planner:    planner,
		BestEffort: cfg.Dispatch.BestEffort,
		Store:      store,
		Bus:        bus,
		Monitor:    mon,
		Log:        logger.New("api"),
	})
	return &Service{
		Planner:   planner,
		Server:    srv,
		cfg:       cfg,
		bus:       bus,
		sink:      sink,
		store:     store,
		publisher: pub,
		log:       logg,
	}, nil
}

// Start launches the event consumers. It is called by Run and may be called
// directly when plans are computed without the HTTP server.
func (s *Service) Start() {
	s.startOnce.Do(func() {
		// Consumers outlive the caller's context so that Close can drain them.
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.done = append(s.done,
			metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics")),
			planlog.StartRecorder(ctx, s.bus, s.store, logger.New("planlog")),
		)
		if s.publisher != nil {
			s.done = append(s.done, mqtt.StartForwarder(ctx, s.bus, s.publisher, logger.New("mqtt")))
		}
	})
}

// Plan computes a plan outside of the HTTP API and publishes it like the API does.
func (s *Service) Plan(req model.PlanRequest) (dispatch.Result, error) {
	res, err := s.Planner.Plan(req)
	s.bus.Publish(events.PlanEvent{Request: req, Result: res, Err: err, Source: events.SourceCLI})
	return res, err
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.Start()
	if addr := s.cfg.Metrics.PromAddr; addr != "" {
		monitoring.Go("prom-server", func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		})
	}
	s.log.Infof("planner ready: strategy %s, reconcile order %s", s.Planner.Strategy(), s.cfg.Dispatch.ReconcileOrder)
	return s.Server.Run(ctx)
}

// Close drains pending events and releases resources held by the service.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.bus.Close()
		timeout := time.After(drainTimeout)
		for _, d := range s.done {
			select {
			case <-d:
			case <-timeout:
				s.log.Warnf("event consumers did not drain within %s", drainTimeout)
			}
		}
		if s.cancel != nil {
			s.cancel()
		}
		if s.publisher != nil {
			s.publisher.Close()
		}
		if c, ok := s.sink.(interface{ Close() }); ok {
			c.Close()
		}
		monitoring.Flush(2 * time.Second)
		err = s.store.Close()
	})
	return err
}
