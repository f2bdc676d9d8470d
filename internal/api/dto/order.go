package dto

import "time"

type OrderResponse struct {
	OrderID     string    `json:"order_id"`
	Quantity    int       `json:"quantity"`
	Origin      string    `json:"origin,omitempty"`
	Destination string    `json:"destination"`
	OrderedAt   time.Time `json:"ordered_at"`
	Deadline    time.Time `json:"deadline"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}
