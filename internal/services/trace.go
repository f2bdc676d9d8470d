package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"transport-planning-service/internal/domain"
	"transport-planning-service/internal/network"
)

const traceTimeLayout = "2006-01-02 15:04"

// LegTrace is one driven segment of a plan with its computed timestamps.
type LegTrace struct {
	From       *domain.City
	To         *domain.City
	DepartAt   time.Time
	ArriveAt   time.Time
	Cost       float64
	DistanceKm float64
	// Missing is set when no road segment links From and To.
	Missing bool
}

// DeliveryTrace reports when an order is handed over, if at all.
type DeliveryTrace struct {
	Order       *domain.PackageOrder
	Delivered   bool
	DeliveredAt time.Time
	Late        bool
}

type PlanTrace struct {
	TruckCode  string
	Legs       []LegTrace
	Deliveries []DeliveryTrace
}

// TracePlans computes leg and delivery timestamps for every plan, starting
// from each truck's availability time.
func TracePlans(net *network.RoadNetwork, plans []*domain.TransportationPlan) []PlanTrace {
	out := make([]PlanTrace, 0, len(plans))

	for _, p := range plans {
		pt := PlanTrace{TruckCode: p.Truck.Code}

		current := p.Truck.AvailableFrom
		for i := 0; i+1 < len(p.Route); i++ {
			leg := LegTrace{From: p.Route[i], To: p.Route[i+1], DepartAt: current}

			seg, ok := net.Segment(leg.From.Code, leg.To.Code)
			if ok {
				current = current.Add(seg.TravelTime())
				leg.Cost = seg.Cost
				leg.DistanceKm = seg.Distance
			} else {
				leg.Missing = true
			}
			leg.ArriveAt = current
			pt.Legs = append(pt.Legs, leg)
		}

		for _, d := range p.Deliveries {
			dt := DeliveryTrace{Order: d}
			if d.Destination != nil && p.Visits(d.Destination.Code) {
				dt.Delivered = true
				dt.DeliveredAt = EstimateDeliveryTime(net, p, d)
				dt.Late = dt.DeliveredAt.After(d.Deadline)
			}
			pt.Deliveries = append(pt.Deliveries, dt)
		}

		out = append(out, pt)
	}

	return out
}

// FormatTrace renders traces as human-readable text. Arrivals after end are
// flagged; a zero end disables the check.
func FormatTrace(out io.Writer, traces []PlanTrace, start, end time.Time) error {
	w := &strings.Builder{}

	fmt.Fprintf(w, "Planning window: %s", start.Format(traceTimeLayout))
	if !end.IsZero() {
		fmt.Fprintf(w, " - %s", end.Format(traceTimeLayout))
	}
	fmt.Fprintln(w)

	for _, pt := range traces {
		fmt.Fprintf(w, "\nTruck: %s\nRoute:\n", pt.TruckCode)
		for _, l := range pt.Legs {
			if l.Missing {
				fmt.Fprintf(w, " - From %s to %s: no road segment\n", cityLabel(l.From), cityLabel(l.To))
				continue
			}
			fmt.Fprintf(w, " - From %s to %s\n   Start time: %s, Arrival time: %s",
				cityLabel(l.From), cityLabel(l.To),
				l.DepartAt.Format(traceTimeLayout), l.ArriveAt.Format(traceTimeLayout),
			)
			if !end.IsZero() && l.ArriveAt.After(end) {
				fmt.Fprint(w, " (after window)")
			}
			fmt.Fprintf(w, "\n   Cost: %.0f | Distance: %.1f km\n", l.Cost, l.DistanceKm)
		}

		fmt.Fprintln(w, "Deliveries:")
		for _, d := range pt.Deliveries {
			if !d.Delivered {
				fmt.Fprintf(w, " - Package %s (quantity %d) to %s could not be delivered on this route\n",
					d.Order.OrderID, d.Order.Quantity, cityLabel(d.Order.Destination))
				continue
			}
			status := "on time"
			if d.Late {
				status = "late"
			}
			fmt.Fprintf(w, " - Package %s (quantity %d) to %s delivered %s (%s)\n",
				d.Order.OrderID, d.Order.Quantity, cityLabel(d.Order.Destination),
				d.DeliveredAt.Format(traceTimeLayout), status)
		}
	}

	_, err := io.WriteString(out, w.String())
	return err
}

func cityLabel(c *domain.City) string {
	if c == nil {
		return "?"
	}
	if c.Name == "" {
		return c.Code
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Code)
}
