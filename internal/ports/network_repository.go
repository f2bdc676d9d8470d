package ports

import (
	"context"

	"transport-planning-service/internal/domain"
)

// Port: a boundary for retrieving the planning inputs from a data source.
// Segments, trucks and orders reference cities by value; callers must not
// rely on pointer identity between collections.
type NetworkRepository interface {
	ListCities(ctx context.Context) ([]*domain.City, error)
	// Segments are returned with their blockage intervals attached.
	ListRoadSegments(ctx context.Context) ([]*domain.RoadSegment, error)
	// Trucks are returned with their maintenance and breakdown windows attached.
	ListTrucks(ctx context.Context) ([]*domain.Truck, error)
	ListPackageOrders(ctx context.Context) ([]*domain.PackageOrder, error)
}
