package services

import (
	"fmt"
	"slices"
	"time"

	"transport-planning-service/internal/domain"
)

// AssignmentResult groups the orders loaded onto each usable truck.
// Plans carry deliveries only; routes are filled in by a RouteBuilder.
type AssignmentResult struct {
	Plans      []*domain.TransportationPlan
	Unassigned []*domain.PackageOrder
}

// AssignPackages distributes orders across trucks, earliest deadline first.
//
// Orders are sorted once by deadline and consumed from a shared pool while
// trucks are visited in the given order. An order that does not fit the
// residual capacity of a truck is split: the truck receives a fragment of
// exactly the residual quantity and the rest stays in the pool.
// The orders passed in are mutated when they are split.
func AssignPackages(
	trucks []*domain.Truck,
	orders []*domain.PackageOrder,
	at time.Time,
	enforceWindows bool,
) (*AssignmentResult, error) {
	pool := slices.Clone(orders)
	slices.SortStableFunc(pool, func(a, b *domain.PackageOrder) int {
		return a.Deadline.Compare(b.Deadline)
	})

	res := &AssignmentResult{}

	for _, truck := range trucks {
		if len(pool) == 0 {
			break
		}
		if !truckUsable(truck, at, enforceWindows) {
			continue
		}

		plan := domain.NewTransportationPlan(truck)
		remaining := truck.Capacity

		for i := 0; i < len(pool) && remaining > 0; {
			order := pool[i]

			if order.Quantity <= remaining {
				if err := plan.Load(order); err != nil {
					return nil, fmt.Errorf("assign packages: order %s: %w", order.OrderID, err)
				}
				remaining -= order.Quantity
				pool = slices.Delete(pool, i, i+1)
				continue
			}

			part := order.Split(remaining)
			if err := plan.Load(part); err != nil {
				return nil, fmt.Errorf("assign packages: split order %s: %w", order.OrderID, err)
			}
			remaining = 0
		}

		if len(plan.Deliveries) > 0 {
			res.Plans = append(res.Plans, plan)
		}
	}

	res.Unassigned = pool
	return res, nil
}

func truckUsable(t *domain.Truck, at time.Time, enforceWindows bool) bool {
	if !t.Available {
		return false
	}
	if enforceWindows && !t.IsOperational(at) {
		return false
	}
	return true
}
