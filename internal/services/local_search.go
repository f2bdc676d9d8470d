package services

import (
	"transport-planning-service/internal/domain"
)

// LocalSearch produces neighbouring solutions with package-swap moves.
type LocalSearch struct {
	Builder RouteBuilder
}

// Neighbor copies the solution and, for every pair of plans, applies the
// first capacity-feasible swap of one delivery from each plan, rebuilding
// both routes. A swap is applied whenever it is feasible; whether it pays
// off is decided by the caller on the whole solution.
func (ls LocalSearch) Neighbor(plans []*domain.TransportationPlan) []*domain.TransportationPlan {
	next := domain.ClonePlans(plans)

	for i := 0; i < len(next); i++ {
		for j := i + 1; j < len(next); j++ {
			ls.swapFirstFeasible(next[i], next[j])
		}
	}

	return next
}

// swapFirstFeasible reports whether a swap was applied.
func (ls LocalSearch) swapFirstFeasible(a, b *domain.TransportationPlan) bool {
	for ai, pa := range a.Deliveries {
		for bi, pb := range b.Deliveries {
			if !CanSwap(a, pa, b, pb) {
				continue
			}

			a.Deliveries[ai] = pb
			b.Deliveries[bi] = pa
			ls.Builder.Route(a)
			ls.Builder.Route(b)
			return true
		}
	}
	return false
}

// CanSwap reports whether exchanging pa (carried by a) with pb (carried by b)
// keeps both trucks within capacity.
func CanSwap(a *domain.TransportationPlan, pa *domain.PackageOrder, b *domain.TransportationPlan, pb *domain.PackageOrder) bool {
	loadA := a.TotalQuantity() - pa.Quantity + pb.Quantity
	loadB := b.TotalQuantity() - pb.Quantity + pa.Quantity
	return loadA <= a.Truck.Capacity && loadB <= b.Truck.Capacity
}
