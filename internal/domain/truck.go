package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrCapacityExceeded = errors.New("truck capacity exceeded")

// Unavailability window type codes.
const (
	WindowMaintenance = "MAINTENANCE"
	WindowBreakdown   = "BREAKDOWN"
)

// UnavailabilityWindow is a [Start, End) period in which a truck cannot operate.
type UnavailabilityWindow struct {
	Type  string
	Start time.Time
	End   time.Time
}

func (w UnavailabilityWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Delivery truck with a fixed capacity and home city.
type Truck struct {
	Code          string
	Type          string
	Capacity      int
	Location      *City
	Available     bool
	AvailableFrom time.Time
	Maintenance   []UnavailabilityWindow
	Breakdowns    []UnavailabilityWindow
}

// IsOperational reports whether t falls outside every maintenance and breakdown window.
func (t *Truck) IsOperational(at time.Time) bool {
	for _, w := range t.Maintenance {
		if w.Contains(at) {
			return false
		}
	}
	for _, w := range t.Breakdowns {
		if w.Contains(at) {
			return false
		}
	}
	return true
}

// ScheduleMaintenance registers a maintenance stop lasting the given number of days.
func (t *Truck) ScheduleMaintenance(start time.Time, days int) {
	t.Maintenance = append(t.Maintenance, UnavailabilityWindow{
		Type:  WindowMaintenance,
		Start: start,
		End:   start.AddDate(0, 0, days),
	})
}

func capacityError(t *Truck, load, qty int) error {
	return fmt.Errorf(
		"load truck %s: %w (capacity=%d load=%d add=%d)",
		t.Code, ErrCapacityExceeded, t.Capacity, load, qty,
	)
}
