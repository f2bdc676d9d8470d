package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"transport-planning-service/internal/api/dto"
	"transport-planning-service/internal/platform/obs"
	"transport-planning-service/internal/ports"
	"transport-planning-service/internal/services"

	"golang.org/x/time/rate"
)

// RouteReader reads back the routes stored for a run.
type RouteReader interface {
	RouteStops(ctx context.Context, runID string) (map[string][]string, error)
}

type PlanHandler struct {
	Repo    ports.NetworkRepository
	Sinks   []ports.PlanSink
	Routes  RouteReader
	Options services.Options
	// Start is used when a request carries no start time; zero means now.
	Start time.Time
	// Limiter throttles POST runs when set.
	Limiter *rate.Limiter
}

// Plan runs the optimiser on POST and returns stored routes on GET.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.run(w, r)
	case http.MethodGet:
		h.routes(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *PlanHandler) run(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil && !h.Limiter.Allow() {
		w.Header().Set("Retry-After", "10")
		writeError(w, r, http.StatusTooManyRequests, "too many planning runs")
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	opts := h.Options
	if req.MaxIterations != nil {
		opts.MaxIterations = *req.MaxIterations
	}
	if a := strings.TrimSpace(req.Acceptance); a != "" {
		opts.Acceptance = strings.ToLower(a)
	}
	if err := opts.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	start := h.Start
	if req.Start != nil {
		start = *req.Start
	}
	if start.IsZero() {
		start = time.Now().UTC().Truncate(time.Minute)
	}

	run, err := services.PlanTransport(r.Context(), services.PlanTransportRequest{Start: start, Options: opts}, h.Repo, h.Sinks...)
	if err != nil {
		obs.Entry(r.Context()).WithField("run_id", run.ID).WithError(err).Error("plan transport failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.RunResponse{
		RunID:      run.ID,
		Cost:       run.Result.Cost,
		Iterations: run.Result.Iterations,
		Accepted:   run.Result.Accepted,
		Unassigned: len(run.Result.Unassigned),
		Plans:      make([]dto.PlanResponse, 0, len(run.Traces)),
	}
	for i, tr := range run.Traces {
		plan := run.Result.Plans[i]
		pr := dto.PlanResponse{Truck: tr.TruckCode, Route: make([]string, 0, len(plan.Route))}
		for _, c := range plan.Route {
			pr.Route = append(pr.Route, c.Code)
		}
		for _, d := range tr.Deliveries {
			item := dto.DeliveryResponse{
				OrderID:     d.Order.OrderID,
				Quantity:    d.Order.Quantity,
				Destination: d.Order.Destination.Code,
				Late:        d.Late,
			}
			if d.Delivered {
				at := d.DeliveredAt
				item.DeliveredAt = &at
			}
			pr.Deliveries = append(pr.Deliveries, item)
		}
		res.Plans = append(res.Plans, pr)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *PlanHandler) routes(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimSpace(r.URL.Query().Get("run_id"))
	if runID == "" {
		writeError(w, r, http.StatusBadRequest, "run_id is required")
		return
	}
	if h.Routes == nil {
		writeError(w, r, http.StatusNotFound, "plan storage is not configured")
		return
	}

	routes, err := h.Routes.RouteStops(r.Context(), runID)
	if err != nil {
		obs.Entry(r.Context()).WithError(err).Error("read route stops failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(routes) == 0 {
		writeError(w, r, http.StatusNotFound, "unknown run")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RoutesResponse{RunID: runID, Routes: routes})
}
