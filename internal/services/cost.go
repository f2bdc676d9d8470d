package services

import (
	"time"

	"transport-planning-service/internal/domain"
	"transport-planning-service/internal/network"
)

// Evaluation breaks an objective value into its terms.
type Evaluation struct {
	Total        float64
	SegmentCost  float64
	PenaltyCost  float64
	LatenessCost float64
	// MissingSegments counts consecutive route pairs with no road segment.
	// They contribute nothing to the cost.
	MissingSegments int
	LateDeliveries  int
}

// CostEvaluator computes the GLS-augmented objective of a solution:
// segment cost + lambda × penalty for every route leg, plus a lateness
// penalty of LatenessWeight per hour for every late delivery.
type CostEvaluator struct {
	Network        *network.RoadNetwork
	LatenessWeight float64
}

func (e CostEvaluator) Evaluate(plans []*domain.TransportationPlan, state *SearchState) Evaluation {
	var ev Evaluation

	for _, p := range plans {
		for i := 0; i+1 < len(p.Route); i++ {
			seg, ok := e.Network.Segment(p.Route[i].Code, p.Route[i+1].Code)
			if !ok {
				ev.MissingSegments++
				continue
			}
			ev.SegmentCost += seg.Cost
			if state != nil {
				ev.PenaltyCost += state.Lambda * float64(state.Penalty(seg.Key()))
			}
		}

		for _, d := range p.Deliveries {
			eta := EstimateDeliveryTime(e.Network, p, d)
			if !eta.After(d.Deadline) {
				continue
			}
			ev.LateDeliveries++
			ev.LatenessCost += e.LatenessWeight * eta.Sub(d.Deadline).Hours()
		}
	}

	ev.Total = ev.SegmentCost + ev.PenaltyCost + ev.LatenessCost
	return ev
}

// EstimateDeliveryTime walks the plan route from the truck's availability
// time and stops at the first arrival in the order's destination. Legs with
// no matching segment add no time. When the destination is never reached the
// estimate is the end of the route.
func EstimateDeliveryTime(net *network.RoadNetwork, p *domain.TransportationPlan, order *domain.PackageOrder) time.Time {
	t := p.Truck.AvailableFrom
	if len(p.Route) == 0 || order.Destination == nil {
		return t
	}
	dest := order.Destination.Code
	if p.Route[0].Code == dest {
		return t
	}

	for i := 0; i+1 < len(p.Route); i++ {
		if seg, ok := net.Segment(p.Route[i].Code, p.Route[i+1].Code); ok {
			t = t.Add(seg.TravelTime())
		}
		if p.Route[i+1].Code == dest {
			break
		}
	}
	return t
}
