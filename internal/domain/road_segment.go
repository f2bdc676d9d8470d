package domain

import (
	"math"
	"time"
)

// SegmentKey is the value identity of a directed road segment.
type SegmentKey struct {
	From string
	To   string
}

func (k SegmentKey) String() string { return k.From + "->" + k.To }

// BlockageInterval is a half-open [Start, End) period during which a segment is closed.
type BlockageInterval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside [Start, End).
func (b BlockageInterval) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// RoadSegment is a directed edge between two cities.
// Distance is in kilometers, SpeedLimit in km/h and Cost in hours (rounded).
type RoadSegment struct {
	Origin      *City
	Destination *City
	Distance    float64
	SpeedLimit  float64
	Cost        float64
	Blockages   []BlockageInterval
}

// NewRoadSegment creates a segment with its cost pre-computed from distance and speed.
func NewRoadSegment(origin, destination *City, distanceKm, speedKmh float64) *RoadSegment {
	seg := &RoadSegment{
		Origin:      origin,
		Destination: destination,
		Distance:    distanceKm,
		SpeedLimit:  speedKmh,
	}
	if speedKmh > 0 {
		seg.Cost = math.Round(distanceKm / speedKmh)
	}
	return seg
}

func (s *RoadSegment) Key() SegmentKey {
	return SegmentKey{From: s.Origin.Code, To: s.Destination.Code}
}

// TravelTime is the time needed to drive the segment at its speed limit.
// A segment without a positive speed limit takes no time.
func (s *RoadSegment) TravelTime() time.Duration {
	if s.SpeedLimit <= 0 {
		return 0
	}
	hours := s.Distance / s.SpeedLimit
	return time.Duration(hours * float64(time.Hour))
}

// AddBlockage appends a closure window, keeping the intervals ordered by start.
func (s *RoadSegment) AddBlockage(start, end time.Time) {
	b := BlockageInterval{Start: start, End: end}
	i := len(s.Blockages)
	for i > 0 && s.Blockages[i-1].Start.After(start) {
		i--
	}
	s.Blockages = append(s.Blockages, BlockageInterval{})
	copy(s.Blockages[i+1:], s.Blockages[i:])
	s.Blockages[i] = b
}

// ClearBlockages reopens the segment at all times.
func (s *RoadSegment) ClearBlockages() {
	s.Blockages = nil
}

// IsAvailableAt reports whether the segment can be used at t.
func (s *RoadSegment) IsAvailableAt(t time.Time) bool {
	for _, b := range s.Blockages {
		if b.Contains(t) {
			return false
		}
	}
	return true
}
