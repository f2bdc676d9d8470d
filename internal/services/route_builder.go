package services

import (
	"math"
	"time"

	"transport-planning-service/internal/domain"
	"transport-planning-service/internal/network"
)

// RouteBuilder builds truck routes with a greedy nearest-neighbour rule on
// top of the network shortest-path oracle, evaluated at a fixed time.
type RouteBuilder struct {
	Network *network.RoadNetwork
	At      time.Time
}

// Build visits the closest remaining destination at each step, appending
// every intermediate city of the shortest path, then returns home.
//
// Ties go to the delivery found first. Deliveries whose destination cannot be
// reached from the current city are returned as unrouted.
func (b RouteBuilder) Build(
	start *domain.City,
	deliveries []*domain.PackageOrder,
) (route []*domain.City, unrouted []*domain.PackageOrder) {
	remaining := append([]*domain.PackageOrder(nil), deliveries...)
	if start == nil {
		return nil, remaining
	}

	route = []*domain.City{start}
	current := start

	for len(remaining) > 0 {
		bestIdx := -1
		bestCost := math.Inf(1)
		var bestPath []*domain.City

		// Select next stop by minimum path cost (greedy step).
		for i, d := range remaining {
			r := b.Network.ShortestPath(current, d.Destination, b.At)
			if !r.Reachable() {
				continue
			}
			if r.Cost < bestCost {
				bestIdx = i
				bestCost = r.Cost
				bestPath = r.Path
			}
		}

		if bestIdx < 0 {
			break
		}

		route = append(route, bestPath[1:]...)
		current = remaining[bestIdx].Destination
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	if current.Code != start.Code {
		back := b.Network.ShortestPath(current, start, b.At)
		if back.Reachable() {
			route = append(route, back.Path[1:]...)
		}
	}

	return route, remaining
}

// Route rebuilds the route of a plan from its current deliveries.
func (b RouteBuilder) Route(plan *domain.TransportationPlan) {
	plan.Route, plan.Unrouted = b.Build(plan.Truck.Location, plan.Deliveries)
}
