package ports

import (
	"context"

	"transport-planning-service/internal/domain"
)

// Port: receives the final transportation plans of a run.
type PlanSink interface {
	SavePlans(ctx context.Context, runID string, plans []*domain.TransportationPlan) error
}
