package services

import (
	"slices"
	"strings"

	"transport-planning-service/internal/domain"
	"transport-planning-service/internal/network"

	"gonum.org/v1/gonum/stat"
)

// SearchState is the guidance memory of one GLS run: the penalty table over
// road segments and the weight converting penalty counts into cost units.
// Penalties only ever grow during a run.
type SearchState struct {
	Penalties map[domain.SegmentKey]int
	Lambda    float64
	Iteration int
}

// NewSearchState maps every known segment to a zero penalty and derives
// lambda from the mean segment cost.
func NewSearchState(net *network.RoadNetwork, lambdaFactor float64) *SearchState {
	segments := net.Segments()
	s := &SearchState{
		Penalties: make(map[domain.SegmentKey]int, len(segments)),
		Lambda:    Lambda(segments, lambdaFactor),
	}
	for _, seg := range segments {
		s.Penalties[seg.Key()] = 0
	}
	return s
}

// Lambda is factor × (sum of segment costs / segment count); zero for an empty network.
func Lambda(segments []*domain.RoadSegment, factor float64) float64 {
	if len(segments) == 0 {
		return 0
	}
	costs := make([]float64, 0, len(segments))
	for _, s := range segments {
		costs = append(costs, s.Cost)
	}
	return factor * stat.Mean(costs, nil)
}

func (s *SearchState) Penalty(key domain.SegmentKey) int {
	return s.Penalties[key]
}

// Snapshot copies the penalty table.
func (s *SearchState) Snapshot() map[domain.SegmentKey]int {
	out := make(map[domain.SegmentKey]int, len(s.Penalties))
	for k, v := range s.Penalties {
		out[k] = v
	}
	return out
}

// UpdatePenalties increments by one the penalty of every segment traversed
// by more than threshold plans of the solution. It returns the incremented
// segments in a stable order.
func (s *SearchState) UpdatePenalties(
	net *network.RoadNetwork,
	plans []*domain.TransportationPlan,
	threshold int,
) []domain.SegmentKey {
	usage := SegmentUsage(net, plans)

	var overused []domain.SegmentKey
	for key, n := range usage {
		if n > threshold {
			overused = append(overused, key)
		}
	}
	slices.SortFunc(overused, func(a, b domain.SegmentKey) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})

	for _, key := range overused {
		s.Penalties[key]++
	}
	return overused
}

// SegmentUsage counts, per segment, how many plans traverse it.
// Route legs without a matching segment are ignored.
func SegmentUsage(net *network.RoadNetwork, plans []*domain.TransportationPlan) map[domain.SegmentKey]int {
	usage := make(map[domain.SegmentKey]int)
	for _, p := range plans {
		seen := make(map[domain.SegmentKey]struct{})
		for i := 0; i+1 < len(p.Route); i++ {
			seg, ok := net.Segment(p.Route[i].Code, p.Route[i+1].Code)
			if !ok {
				continue
			}
			key := seg.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			usage[key]++
		}
	}
	return usage
}
