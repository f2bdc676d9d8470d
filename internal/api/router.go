package api

import (
	"net/http"

	"transport-planning-service/internal/api/handlers"
	"transport-planning-service/internal/platform/obs"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(plans *handlers.PlanHandler, db handlers.Pinger) http.Handler {
	mux := http.NewServeMux()

	health := &handlers.HealthHandler{DB: db}
	orders := &handlers.OrderHandler{Repo: plans.Repo}

	mux.HandleFunc("/health", health.Health)
	mux.HandleFunc("/orders", orders.List)
	mux.HandleFunc("/plans", plans.Plan)
	mux.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(mux)
}
