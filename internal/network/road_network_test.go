package network

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"transport-planning-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

func seg(from, to *domain.City, cost float64) *domain.RoadSegment {
	return &domain.RoadSegment{Origin: from, Destination: to, Distance: cost, SpeedLimit: 1, Cost: cost}
}

func codes(path []*domain.City) []string {
	out := make([]string, 0, len(path))
	for _, c := range path {
		out = append(out, c.Code)
	}
	return out
}

// bruteForce enumerates every simple path and returns the cheapest cost.
func bruteForce(n *RoadNetwork, from, to string, at time.Time) float64 {
	best := math.Inf(1)
	visited := map[string]bool{from: true}

	var walk func(code string, cost float64)
	walk = func(code string, cost float64) {
		if code == to {
			best = math.Min(best, cost)
			return
		}
		for _, s := range n.Outgoing(code) {
			next := s.Destination.Code
			if visited[next] || !s.IsAvailableAt(at) {
				continue
			}
			visited[next] = true
			walk(next, cost+s.Cost)
			visited[next] = false
		}
	}
	walk(from, 0)
	return best
}

func pathCost(t *testing.T, n *RoadNetwork, path []*domain.City) float64 {
	t.Helper()
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		s, ok := n.Segment(path[i].Code, path[i+1].Code)
		require.True(t, ok, "path uses unknown segment %s->%s", path[i].Code, path[i+1].Code)
		total += s.Cost
	}
	return total
}

func TestShortestPathMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 40; trial++ {
		size := 3 + rng.Intn(6)
		cities := make([]*domain.City, size)
		for i := range cities {
			cities[i] = &domain.City{Code: fmt.Sprintf("C%d", i)}
		}

		n := NewRoadNetwork()
		for _, c := range cities {
			n.AddCity(c)
		}
		for i := range cities {
			for j := range cities {
				if i == j || rng.Float64() > 0.4 {
					continue
				}
				s := seg(cities[i], cities[j], float64(1+rng.Intn(20)))
				if rng.Float64() < 0.2 {
					s.AddBlockage(t0.Add(-time.Hour), t0.Add(time.Hour))
				}
				n.AddSegment(s)
			}
		}

		for _, from := range cities {
			for _, to := range cities {
				got := n.ShortestPath(from, to, t0)
				want := bruteForce(n, from.Code, to.Code, t0)
				if from == to {
					want = 0
				}

				if math.IsInf(want, 1) {
					assert.False(t, got.Reachable(), "trial %d %s->%s", trial, from.Code, to.Code)
					assert.Empty(t, got.Path)
					continue
				}
				require.True(t, got.Reachable(), "trial %d %s->%s", trial, from.Code, to.Code)
				assert.Equal(t, want, got.Cost, "trial %d %s->%s", trial, from.Code, to.Code)
				assert.Equal(t, from.Code, got.Path[0].Code)
				assert.Equal(t, to.Code, got.Path[len(got.Path)-1].Code)
				assert.Equal(t, want, pathCost(t, n, got.Path))

				for i := 0; i+1 < len(got.Path); i++ {
					s, _ := n.Segment(got.Path[i].Code, got.Path[i+1].Code)
					assert.True(t, s.IsAvailableAt(t0))
				}
			}
		}
	}
}

func TestShortestPathAvoidsBlockedSegment(t *testing.T) {
	a := &domain.City{Code: "A"}
	b := &domain.City{Code: "B"}
	c := &domain.City{Code: "C"}

	direct := seg(a, c, 10)
	direct.AddBlockage(t0, t0.AddDate(0, 0, 7))
	n := Build([]*domain.City{a, b, c}, []*domain.RoadSegment{seg(a, b, 2), seg(b, c, 3), direct})

	r := n.ShortestPath(a, c, t0)
	require.True(t, r.Reachable())
	assert.Equal(t, 5.0, r.Cost)
	assert.Equal(t, []string{"A", "B", "C"}, codes(r.Path))

	// Outside the blockage the direct road is usable again but still more expensive.
	later := n.ShortestPath(a, c, t0.AddDate(0, 0, 8))
	assert.Equal(t, 5.0, later.Cost)
}

func TestShortestPathBlockedBridge(t *testing.T) {
	a := &domain.City{Code: "A"}
	b := &domain.City{Code: "B"}
	bridge := seg(a, b, 4)
	n := Build(nil, []*domain.RoadSegment{bridge})

	assert.True(t, n.Block("A", "B", t0, t0.Add(time.Hour)))
	assert.False(t, n.Block("B", "A", t0, t0.Add(time.Hour)))

	r := n.ShortestPath(a, b, t0)
	assert.False(t, r.Reachable())
	assert.True(t, math.IsInf(r.Cost, 1))
	assert.Empty(t, r.Path)

	assert.True(t, n.Unblock("A", "B"))
	assert.False(t, n.Unblock("B", "A"))
	r = n.ShortestPath(a, b, t0)
	require.True(t, r.Reachable())
	assert.Equal(t, []string{"A", "B"}, codes(r.Path))
}

func TestShortestPathSelfAndUnknown(t *testing.T) {
	a := &domain.City{Code: "A"}
	z := &domain.City{Code: "Z"}
	n := NewRoadNetwork()
	n.AddCity(a)

	self := n.ShortestPath(a, a, t0)
	assert.Equal(t, 0.0, self.Cost)
	assert.Equal(t, []string{"A"}, codes(self.Path))

	assert.False(t, n.ShortestPath(a, z, t0).Reachable())
	assert.Empty(t, n.Outgoing("Z"))
	assert.False(t, n.ShortestPath(nil, a, t0).Reachable())
}

func TestBlockageBoundaries(t *testing.T) {
	a := &domain.City{Code: "A"}
	b := &domain.City{Code: "B"}
	n := Build(nil, []*domain.RoadSegment{seg(a, b, 1)})
	n.Block("A", "B", t0, t0.Add(time.Hour))

	assert.False(t, n.ShortestPath(a, b, t0).Reachable(), "start is inclusive")
	assert.True(t, n.ShortestPath(a, b, t0.Add(time.Hour)).Reachable(), "end is exclusive")
	assert.True(t, n.ShortestPath(a, b, t0.Add(-time.Nanosecond)).Reachable())
}

func TestBlockagesChangeOnlyThroughNetwork(t *testing.T) {
	a := &domain.City{Code: "A"}
	b := &domain.City{Code: "B"}
	s := seg(a, b, 1)
	n := Build(nil, []*domain.RoadSegment{s})

	require.True(t, n.ShortestPath(a, b, t0).Reachable())

	// Closing the caller's segment does not leave a stale answer behind:
	// the network routes on its own copy.
	s.AddBlockage(t0, t0.Add(time.Hour))
	r := n.ShortestPath(a, b, t0)
	require.True(t, r.Reachable())
	own, ok := n.Segment("A", "B")
	require.True(t, ok)
	assert.True(t, own.IsAvailableAt(t0))

	require.True(t, n.Block("A", "B", t0, t0.Add(time.Hour)))
	assert.False(t, n.ShortestPath(a, b, t0).Reachable())
	assert.False(t, own.IsAvailableAt(t0))

	require.True(t, n.Unblock("A", "B"))
	r = n.ShortestPath(a, b, t0)
	require.True(t, r.Reachable())
	assert.Equal(t, []string{"A", "B"}, codes(r.Path))
}

func TestDuplicateSegmentKeepsCheapest(t *testing.T) {
	a := &domain.City{Code: "A"}
	b := &domain.City{Code: "B"}
	n := Build(nil, []*domain.RoadSegment{seg(a, b, 7), seg(a, b, 3), seg(a, b, 5)})

	r := n.ShortestPath(a, b, t0)
	require.True(t, r.Reachable())
	assert.Equal(t, 3.0, r.Cost)

	s, ok := n.Segment("A", "B")
	require.True(t, ok)
	assert.Equal(t, 3.0, s.Cost)
	assert.Len(t, n.Outgoing("A"), 1)
	assert.Len(t, n.Segments(), 1)
}
