package dto

import "time"

// PlanRequest overrides the configured start time and search budget of one run.
type PlanRequest struct {
	Start         *time.Time `json:"start"`
	MaxIterations *int       `json:"max_iterations"`
	Acceptance    string     `json:"acceptance"`
}

type DeliveryResponse struct {
	OrderID     string     `json:"order_id"`
	Quantity    int        `json:"quantity"`
	Destination string     `json:"destination"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	Late        bool       `json:"late"`
}

type PlanResponse struct {
	Truck      string             `json:"truck"`
	Route      []string           `json:"route"`
	Deliveries []DeliveryResponse `json:"deliveries"`
}

type RunResponse struct {
	RunID      string         `json:"run_id"`
	Cost       float64        `json:"cost"`
	Iterations int            `json:"iterations"`
	Accepted   int            `json:"accepted"`
	Unassigned int            `json:"unassigned"`
	Plans      []PlanResponse `json:"plans"`
}

type RoutesResponse struct {
	RunID  string              `json:"run_id"`
	Routes map[string][]string `json:"routes"`
}
