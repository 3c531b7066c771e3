// Package middleware holds the HTTP wrappers shared by the API routes.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/monitoring"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so that the first one is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// CORS allows browser clients from origins. The literal "null" admits pages
// opened from the file system.
func CORS(origins []string) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Plan-Id", "X-Plan-Residual"},
	})
	return c.Handler
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Observe logs every request and publishes an events.RequestEvent on bus.
// route labels the handler so that metrics do not explode on raw paths.
func Observe(route string, bus eventbus.EventBus, log logger.Logger) Middleware {
	if log == nil {
		log = logger.NopLogger{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			d := time.Since(start)
			log.Debugw("request", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.code(),
				"duration_ms": d.Milliseconds(),
			})
			if bus != nil {
				bus.Publish(events.RequestEvent{Route: route, Method: r.Method, Status: rec.code(), Duration: d})
			}
		})
	}
}

// Recover turns a panic into a 500 and reports it to mon.
func Recover(mon monitoring.Monitor, log logger.Logger) Middleware {
	if mon == nil {
		mon = monitoring.NopMonitor{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, v)
				mon.CapturePanic(v, map[string]string{"path": r.URL.Path})
				http.Error(w, fmt.Sprintf("internal error: %v", v), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
