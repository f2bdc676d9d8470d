package services

import (
	"context"
	"fmt"
	"time"

	"transport-planning-service/internal/domain"
	"transport-planning-service/internal/network"
	"transport-planning-service/internal/platform/obs"

	"github.com/sirupsen/logrus"
)

// Problem is the in-memory input of one optimisation run.
type Problem struct {
	Network *network.RoadNetwork
	Trucks  []*domain.Truck
	Orders  []*domain.PackageOrder
	Start   time.Time
}

// Result is the best solution found by a run and how the search got there.
type Result struct {
	Plans      []*domain.TransportationPlan
	Cost       float64
	Evaluation Evaluation
	Unassigned []*domain.PackageOrder

	Iterations int
	Accepted   int
	// BestCostHistory holds the best cost after initialisation (index 0)
	// and after every iteration.
	BestCostHistory []float64
	Penalties       map[domain.SegmentKey]int
	Lambda          float64
	Acceptance      string
}

// Solve runs Guided Local Search on the problem.
//
// The orders of the problem are copied before assignment so the caller's
// collection is left untouched. The context is checked at the top of every
// iteration; on cancellation the best solution found so far is returned
// together with the context error.
func Solve(ctx context.Context, p Problem, opts Options) (_ *Result, err error) {
	defer obs.Time(ctx, "gls.Solve")(&err)

	if p.Network == nil {
		return nil, fmt.Errorf("solve: %w: network is nil", ErrInvalidConfig)
	}

	acceptor, err := opts.NewAcceptor()
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	state := NewSearchState(p.Network, opts.LambdaFactor)
	builder := RouteBuilder{Network: p.Network, At: p.Start}
	evaluator := CostEvaluator{Network: p.Network, LatenessWeight: opts.LatenessWeight}
	search := LocalSearch{Builder: builder}

	assigned, err := AssignPackages(p.Trucks, cloneOrders(p.Orders), p.Start, opts.EnforceMaintenanceWindows)
	if err != nil {
		return nil, fmt.Errorf("solve: initial solution: %w", err)
	}
	for _, plan := range assigned.Plans {
		builder.Route(plan)
	}

	current := assigned.Plans
	best := current
	bestEval := evaluator.Evaluate(best, state)

	res := &Result{
		Unassigned:      assigned.Unassigned,
		Lambda:          state.Lambda,
		Acceptance:      acceptor.Name(),
		BestCostHistory: []float64{bestEval.Total},
	}

	log := obs.Entry(ctx).WithField("acceptance", acceptor.Name())
	log.WithFields(logrus.Fields{
		"plans":      len(current),
		"unassigned": len(assigned.Unassigned),
		"cost":       bestEval.Total,
		"lambda":     state.Lambda,
	}).Info("initial solution built")

	for state.Iteration < opts.MaxIterations && !acceptor.Exhausted() {
		if err = ctx.Err(); err != nil {
			break
		}

		candidate := search.Neighbor(current)
		ev := evaluator.Evaluate(candidate, state)

		outcome := "rejected"
		if acceptor.Accept(ev.Total, bestEval.Total) {
			outcome = "accepted"
			current = candidate
			res.Accepted++
			if ev.Total < bestEval.Total {
				outcome = "improved"
				best = candidate
				bestEval = ev
			}
		}

		incremented := state.UpdatePenalties(p.Network, candidate, opts.UsageThreshold)
		acceptor.Step()
		state.Iteration++

		res.BestCostHistory = append(res.BestCostHistory, bestEval.Total)
		obs.SearchIterations.WithLabelValues(acceptor.Name(), outcome).Inc()
		obs.PenaltyIncrements.Add(float64(len(incremented)))
		obs.MissingSegments.Add(float64(ev.MissingSegments))

		log.WithFields(logrus.Fields{
			"iteration": state.Iteration,
			"candidate": ev.Total,
			"best":      bestEval.Total,
			"outcome":   outcome,
			"penalized": len(incremented),
		}).Debug("gls iteration")
	}

	res.Plans = best
	res.Cost = bestEval.Total
	res.Evaluation = bestEval
	res.Iterations = state.Iteration
	res.Penalties = state.Snapshot()
	obs.BestCost.Set(bestEval.Total)

	log.WithFields(logrus.Fields{
		"iterations": res.Iterations,
		"accepted":   res.Accepted,
		"cost":       res.Cost,
	}).Info("search finished")

	return res, err
}

func cloneOrders(orders []*domain.PackageOrder) []*domain.PackageOrder {
	out := make([]*domain.PackageOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Clone())
	}
	return out
}
