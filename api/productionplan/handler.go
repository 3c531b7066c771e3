// Package productionplan serves POST /productionplan.
package productionplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/core/monitoring"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// Error messages returned to clients.
const (
	MsgInvalidPayload = "Invalid or empty JSON payload"
	MsgMissingFields  = "Missing 'load', 'fuels', or 'powerplants' in payload"
	MsgInfeasible     = "Could not compute a valid production plan for the given load"
	MsgInternal       = "An internal server error occurred"
)

// HeaderResidual carries the unmatched load of a best-effort plan.
const (
	HeaderResidual = "X-Plan-Residual"
	HeaderPlanID   = "X-Plan-Id"
)

// MaxBodyBytes bounds the accepted payload size.
const MaxBodyBytes = 1 << 20

// Planner computes production plans.
type Planner interface {
	Plan(req model.PlanRequest) (dispatch.Result, error)
}

// Options configures a Handler. Zero values disable the optional behaviour.
type Options struct {
	// BestEffort answers 200 with the closest plan when the load cannot be met.
	BestEffort bool
	Bus        eventbus.EventBus
	Monitor    monitoring.Monitor
	Log        logger.Logger
}

// payload uses pointers so that absent keys can be told apart from zeros.
type payload struct {
	Load        *float64            `json:"load" validate:"required"`
	Fuels       *model.Fuels        `json:"fuels" validate:"required"`
	Powerplants *[]model.Powerplant `json:"powerplants" validate:"required"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler computes a production plan for each request.
type Handler struct {
	planner  Planner
	opts     Options
	validate *validator.Validate
}

func NewHandler(p Planner, opts Options) *Handler {
	if opts.Monitor == nil {
		opts.Monitor = monitoring.NopMonitor{}
	}
	if opts.Log == nil {
		opts.Log = logger.NopLogger{}
	}
	return &Handler{planner: p, opts: opts, validate: validator.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, status, body := h.decode(w, r)
	if body != nil {
		h.opts.Log.Errorf("rejected payload: %s", body.Error)
		writeJSON(w, status, body)
		return
	}

	res, err := h.plan(req)
	var pe *panicError
	if errors.As(err, &pe) {
		h.opts.Log.Errorf("planner panic: %v", pe.value)
		h.opts.Monitor.CapturePanic(pe.value, map[string]string{"handler": "productionplan"})
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: MsgInternal, Details: pe.Error()})
		return
	}
	if h.opts.Bus != nil {
		h.opts.Bus.Publish(events.PlanEvent{Request: req, Result: res, Err: err, Source: events.SourceHTTP})
	}
	if res.ID != "" {
		w.Header().Set(HeaderPlanID, res.ID)
	}
	switch {
	case err == nil:
		h.opts.Log.Infof("plan %s: load %.1f MW, cost %.2f €/h", res.ID, res.Load, res.Cost)
	case errors.Is(err, dispatch.ErrInfeasible) && h.opts.BestEffort:
		w.Header().Set(HeaderResidual, strconv.FormatFloat(res.Residual, 'f', 1, 64))
	case errors.Is(err, dispatch.ErrInfeasible):
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: MsgInfeasible, Details: err.Error()})
		return
	default:
		h.opts.Monitor.CaptureException(err, map[string]string{"handler": "productionplan"})
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: MsgInternal, Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res.Plan)
}

// decode returns the request, or the status and body of the rejection.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (model.PlanRequest, int, *errorBody) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return model.PlanRequest{}, http.StatusRequestEntityTooLarge, &errorBody{Error: MsgInvalidPayload, Details: err.Error()}
		}
		return model.PlanRequest{}, http.StatusBadRequest, &errorBody{Error: MsgInvalidPayload, Details: err.Error()}
	}
	// An empty object counts as an empty payload.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil || len(keys) == 0 {
		return model.PlanRequest{}, http.StatusBadRequest, &errorBody{Error: MsgInvalidPayload}
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.PlanRequest{}, http.StatusBadRequest, &errorBody{Error: MsgInvalidPayload, Details: err.Error()}
	}
	if err := h.validate.Struct(p); err != nil {
		return model.PlanRequest{}, http.StatusBadRequest, &errorBody{Error: MsgMissingFields}
	}
	return model.PlanRequest{Load: *p.Load, Fuels: *p.Fuels, Powerplants: *p.Powerplants}, 0, nil
}

type panicError struct{ value any }

func (e *panicError) Error() string { return fmt.Sprint(e.value) }

// plan runs the planner, turning a panic into a *panicError.
func (h *Handler) plan(req model.PlanRequest) (res dispatch.Result, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &panicError{value: v}
		}
	}()
	return h.planner.Plan(req)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
