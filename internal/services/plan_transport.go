package services

import (
	"context"
	"fmt"
	"time"

	"transport-planning-service/internal/domain"
	"transport-planning-service/internal/network"
	"transport-planning-service/internal/platform/obs"
	"transport-planning-service/internal/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type PlanTransportRequest struct {
	Start   time.Time
	Options Options
}

// Snapshot is the set of collections loaded before a run.
type Snapshot struct {
	Cities   []*domain.City
	Segments []*domain.RoadSegment
	Trucks   []*domain.Truck
	Orders   []*domain.PackageOrder
}

// LoadSnapshot fetches every planning collection concurrently.
func LoadSnapshot(ctx context.Context, repo ports.NetworkRepository) (*Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Cities, err = repo.ListCities(gctx)
		return wrap("list cities", err)
	})
	g.Go(func() (err error) {
		snap.Segments, err = repo.ListRoadSegments(gctx)
		return wrap("list road segments", err)
	})
	g.Go(func() (err error) {
		snap.Trucks, err = repo.ListTrucks(gctx)
		return wrap("list trucks", err)
	})
	g.Go(func() (err error) {
		snap.Orders, err = repo.ListPackageOrders(gctx)
		return wrap("list package orders", err)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &snap, nil
}

// Run is the outcome of PlanTransport. Result is nil when the inputs could
// not be loaded.
type Run struct {
	ID     string
	Result *Result
	Traces []PlanTrace
}

// PlanTransport loads the inputs, runs the optimiser and hands the best
// plans to every sink. A sink failure aborts the remaining sinks. When the
// search is cancelled the best plans found so far are still traced and
// returned alongside the error, but not saved.
func PlanTransport(
	ctx context.Context,
	req PlanTransportRequest,
	repo ports.NetworkRepository,
	sinks ...ports.PlanSink,
) (*Run, error) {
	run := &Run{ID: uuid.NewString()}
	ctx = obs.WithRunID(ctx, run.ID)
	started := time.Now()

	snap, err := LoadSnapshot(ctx, repo)
	if err != nil {
		return run, fmt.Errorf("plan transport: %w", err)
	}

	net := network.Build(snap.Cities, snap.Segments)
	run.Result, err = Solve(ctx, Problem{
		Network: net,
		Trucks:  snap.Trucks,
		Orders:  snap.Orders,
		Start:   req.Start,
	}, req.Options)
	if run.Result != nil {
		run.Traces = TracePlans(net, run.Result.Plans)
	}
	if err != nil {
		return run, fmt.Errorf("plan transport: %w", err)
	}
	obs.RunDuration.Observe(time.Since(started).Seconds())

	for _, sink := range sinks {
		if err := sink.SavePlans(ctx, run.ID, run.Result.Plans); err != nil {
			return run, fmt.Errorf("plan transport: save plans: %w", err)
		}
	}

	return run, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
