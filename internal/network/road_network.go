// Package network holds the road graph and its time-dependent shortest-path oracle.
package network

import (
	"container/heap"
	"math"
	"slices"
	"sync"
	"time"

	"transport-planning-service/internal/domain"
)

// PathResult is the outcome of a shortest-path query.
// An unreachable destination has Cost = +Inf and an empty Path.
type PathResult struct {
	Cost float64
	Path []*domain.City
}

func (r PathResult) Reachable() bool { return !math.IsInf(r.Cost, 1) }

func unreachable() PathResult { return PathResult{Cost: math.Inf(1)} }

type pathQuery struct {
	from, to string
	at       int64
}

// RoadNetwork is an adjacency structure over cities.
//
// Segment availability is evaluated at the query time only, not at the time
// the truck would actually reach the segment. A long route may therefore use
// a segment that closes before the truck gets there.
type RoadNetwork struct {
	cities    map[string]*domain.City
	adjacency map[string][]*domain.RoadSegment
	segments  map[domain.SegmentKey]*domain.RoadSegment
	ordered   []*domain.RoadSegment

	mu   sync.Mutex
	memo map[pathQuery]PathResult
}

func NewRoadNetwork() *RoadNetwork {
	return &RoadNetwork{
		cities:    make(map[string]*domain.City),
		adjacency: make(map[string][]*domain.RoadSegment),
		segments:  make(map[domain.SegmentKey]*domain.RoadSegment),
		memo:      make(map[pathQuery]PathResult),
	}
}

// Build creates a network from loaded cities and segments.
func Build(cities []*domain.City, segments []*domain.RoadSegment) *RoadNetwork {
	n := NewRoadNetwork()
	for _, c := range cities {
		n.AddCity(c)
	}
	for _, s := range segments {
		n.AddSegment(s)
	}
	return n
}

func (n *RoadNetwork) AddCity(c *domain.City) {
	if _, ok := n.cities[c.Code]; !ok {
		n.cities[c.Code] = c
	}
}

// AddSegment registers a directed segment. The network keeps its own copy,
// so blockages added to s afterwards do not change routing; use Block and
// Unblock instead. When two segments share the same origin and destination
// only the cheaper one is kept.
func (n *RoadNetwork) AddSegment(s *domain.RoadSegment) {
	n.AddCity(s.Origin)
	n.AddCity(s.Destination)

	own := *s
	own.Blockages = slices.Clone(s.Blockages)

	key := own.Key()
	if cur, ok := n.segments[key]; ok {
		if own.Cost >= cur.Cost {
			return
		}
		*cur = own
	} else {
		seg := &own
		n.segments[key] = seg
		n.adjacency[seg.Origin.Code] = append(n.adjacency[seg.Origin.Code], seg)
		n.ordered = append(n.ordered, seg)
	}
	n.resetMemo()
}

// Block closes the segment from -> to during [start, end).
// It reports false when no such segment exists.
func (n *RoadNetwork) Block(from, to string, start, end time.Time) bool {
	s, ok := n.segments[domain.SegmentKey{From: from, To: to}]
	if !ok {
		return false
	}
	s.AddBlockage(start, end)
	n.resetMemo()
	return true
}

// Unblock removes every closure from the segment from -> to.
// It reports false when no such segment exists.
func (n *RoadNetwork) Unblock(from, to string) bool {
	s, ok := n.segments[domain.SegmentKey{From: from, To: to}]
	if !ok {
		return false
	}
	s.ClearBlockages()
	n.resetMemo()
	return true
}

// Segment looks up the directed segment between two cities.
// The returned segment belongs to the network and must not be modified.
func (n *RoadNetwork) Segment(from, to string) (*domain.RoadSegment, bool) {
	s, ok := n.segments[domain.SegmentKey{From: from, To: to}]
	return s, ok
}

// Segments returns every registered segment in insertion order.
func (n *RoadNetwork) Segments() []*domain.RoadSegment {
	return n.ordered
}

// Outgoing returns the segments leaving a city. Unknown cities have none.
func (n *RoadNetwork) Outgoing(code string) []*domain.RoadSegment {
	return n.adjacency[code]
}

func (n *RoadNetwork) resetMemo() {
	n.mu.Lock()
	n.memo = make(map[pathQuery]PathResult)
	n.mu.Unlock()
}

// ShortestPath returns the minimum-cost path from origin to destination using
// only segments available at the given time.
func (n *RoadNetwork) ShortestPath(origin, destination *domain.City, at time.Time) PathResult {
	if origin == nil || destination == nil {
		return unreachable()
	}
	if origin.Code == destination.Code {
		return PathResult{Cost: 0, Path: []*domain.City{origin}}
	}
	if _, known := n.cities[destination.Code]; !known {
		return unreachable()
	}

	q := pathQuery{from: origin.Code, to: destination.Code, at: at.UnixNano()}
	n.mu.Lock()
	r, ok := n.memo[q]
	n.mu.Unlock()
	if ok {
		return r
	}

	r = n.dijkstra(origin, destination, at)

	n.mu.Lock()
	n.memo[q] = r
	n.mu.Unlock()
	return r
}

func (n *RoadNetwork) dijkstra(origin, destination *domain.City, at time.Time) PathResult {
	costs := map[string]float64{origin.Code: 0}
	prev := make(map[string]*domain.RoadSegment)
	settled := make(map[string]struct{})

	pq := &cityQueue{}
	heap.Push(pq, queueItem{code: origin.Code, cost: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(queueItem)
		if _, done := settled[cur.code]; done {
			continue
		}
		settled[cur.code] = struct{}{}

		if cur.code == destination.Code {
			return PathResult{Cost: cur.cost, Path: n.reconstruct(origin, destination, prev)}
		}

		for _, seg := range n.adjacency[cur.code] {
			if !seg.IsAvailableAt(at) {
				continue
			}
			next := seg.Destination.Code
			if _, done := settled[next]; done {
				continue
			}
			c := cur.cost + seg.Cost
			if best, ok := costs[next]; !ok || c < best {
				costs[next] = c
				prev[next] = seg
				heap.Push(pq, queueItem{code: next, cost: c})
			}
		}
	}

	return unreachable()
}

func (n *RoadNetwork) reconstruct(origin, destination *domain.City, prev map[string]*domain.RoadSegment) []*domain.City {
	path := []*domain.City{destination}
	for code := destination.Code; code != origin.Code; {
		seg := prev[code]
		path = append(path, seg.Origin)
		code = seg.Origin.Code
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	path[0] = origin
	return path
}

type queueItem struct {
	code string
	cost float64
}

// cityQueue is a min-heap of tentative city costs.
type cityQueue []queueItem

func (q cityQueue) Len() int           { return len(q) }
func (q cityQueue) Less(i, j int) bool { return q[i].cost < q[j].cost }
func (q cityQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *cityQueue) Push(x any)        { *q = append(*q, x.(queueItem)) }
func (q *cityQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}
