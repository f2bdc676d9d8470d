package services

import (
	"time"

	"transport-planning-service/internal/domain"
	"transport-planning-service/internal/network"
)

var start = time.Date(2023, 3, 1, 8, 0, 0, 0, time.UTC)

func city(code string) *domain.City {
	return &domain.City{Code: code}
}

// link builds a segment whose cost equals its driving time in hours.
func link(from, to *domain.City, cost float64) *domain.RoadSegment {
	return &domain.RoadSegment{Origin: from, Destination: to, Distance: cost, SpeedLimit: 1, Cost: cost}
}

func truck(code string, capacity int, at *domain.City) *domain.Truck {
	return &domain.Truck{Code: code, Type: "A", Capacity: capacity, Location: at, Available: true, AvailableFrom: start}
}

func order(id string, qty int, dest *domain.City, deadline time.Time) *domain.PackageOrder {
	return &domain.PackageOrder{OrderID: id, Quantity: qty, Destination: dest, OrderedAt: start, Deadline: deadline}
}

func routeCodes(route []*domain.City) []string {
	out := make([]string, 0, len(route))
	for _, c := range route {
		out = append(out, c.Code)
	}
	return out
}

// chain is A -> B -> C with a direct A -> C shortcut that is closed at start.
func chain() (*network.RoadNetwork, *domain.City, *domain.City, *domain.City) {
	a, b, c := city("A"), city("B"), city("C")
	ac := link(a, c, 10)
	ac.AddBlockage(start, start.Add(24*time.Hour))
	net := network.Build(
		[]*domain.City{a, b, c},
		[]*domain.RoadSegment{link(a, b, 2), link(b, c, 3), ac},
	)
	return net, a, b, c
}
