// Package api assembles the HTTP surface of the planner.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/powerplan/api/middleware"
	"github.com/kilianp07/powerplan/api/planlogs"
	"github.com/kilianp07/powerplan/api/productionplan"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/monitoring"
	"github.com/kilianp07/powerplan/core/planlog"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// Deps holds the collaborators of the routes. Only Planner is required.
type Deps struct {
	Planner    productionplan.Planner
	BestEffort bool
	Store      planlog.LogStore
	Bus        eventbus.EventBus
	Monitor    monitoring.Monitor
	Log        logger.Logger
	// Metrics serves GET /metrics; nil uses the default Prometheus registry.
	Metrics http.Handler
}

// Server exposes the planner over HTTP.
type Server struct {
	cfg     Config
	handler http.Handler
	limiter *middleware.RateLimiter
	log     logger.Logger

	mu   sync.Mutex
	addr string
}

// NewServer builds the router for cfg. cfg is expected to be validated.
func NewServer(cfg Config, d Deps) *Server {
	if d.Log == nil {
		d.Log = logger.NopLogger{}
	}
	if d.Monitor == nil {
		d.Monitor = monitoring.NopMonitor{}
	}
	if d.Store == nil {
		d.Store = planlog.NopStore{}
	}
	if d.Metrics == nil {
		d.Metrics = promhttp.Handler()
	}
	s := &Server{cfg: cfg, log: d.Log, addr: cfg.Addr}
	if cfg.RateLimit.Requests > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window())
	}

	plan := productionplan.NewHandler(d.Planner, productionplan.Options{
		BestEffort: d.BestEffort,
		Bus:        d.Bus,
		Monitor:    d.Monitor,
		Log:        d.Log,
	})
	var planRoute http.Handler = plan
	if s.limiter != nil {
		planRoute = s.limiter.Middleware(planRoute)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /productionplan", middleware.Observe("productionplan", d.Bus, d.Log)(planRoute))
	mux.Handle("GET /api/plans/logs", middleware.Observe("plan_logs", d.Bus, d.Log)(planlogs.NewLogHandler(d.Store, cfg.LogToken)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", d.Metrics)

	s.handler = middleware.Chain(mux,
		middleware.Recover(d.Monitor, d.Log),
		middleware.CORS(cfg.AllowedOrigins),
	)
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr returns the listening address once Run has bound it.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown server: %v", err)
		}
	}()
	if s.limiter != nil {
		go s.sweep(ctx, s.cfg.RateLimit.Window())
	}

	s.log.Infof("planner API listening on %s", s.Addr())
	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.limiter.Sweep()
		}
	}
}
