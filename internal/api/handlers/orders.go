package handlers

import (
	"net/http"

	"transport-planning-service/internal/api/dto"
	"transport-planning-service/internal/platform/obs"
	"transport-planning-service/internal/ports"
)

// OrderHandler exposes the pending package orders.
type OrderHandler struct {
	Repo ports.NetworkRepository
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	orders, err := h.Repo.ListPackageOrders(r.Context())
	if err != nil {
		obs.Entry(r.Context()).WithError(err).Error("list package orders failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListOrdersResponse{Orders: make([]dto.OrderResponse, 0, len(orders))}
	for _, o := range orders {
		item := dto.OrderResponse{
			OrderID:     o.OrderID,
			Quantity:    o.Quantity,
			Destination: o.Destination.Code,
			OrderedAt:   o.OrderedAt,
			Deadline:    o.Deadline,
		}
		if o.Origin != nil {
			item.Origin = o.Origin.Code
		}
		res.Orders = append(res.Orders, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}
