package domain

// Represents the transport plan of a single truck.
// Route is the ordered list of visited cities starting at the truck location.
// Unrouted lists deliveries whose destination could not be reached when the
// route was built; they stay in Deliveries and are reported as undeliverable.
type TransportationPlan struct {
	Truck      *Truck
	Route      []*City
	Deliveries []*PackageOrder
	Unrouted   []*PackageOrder
}

func NewTransportationPlan(truck *Truck) *TransportationPlan {
	return &TransportationPlan{Truck: truck}
}

// TotalQuantity sums the quantity of every carried order.
func (p *TransportationPlan) TotalQuantity() int {
	total := 0
	for _, d := range p.Deliveries {
		total += d.Quantity
	}
	return total
}

// RemainingCapacity is the truck capacity not yet used by deliveries.
func (p *TransportationPlan) RemainingCapacity() int {
	return p.Truck.Capacity - p.TotalQuantity()
}

// Load a single order onto the plan.
func (p *TransportationPlan) Load(order *PackageOrder) error {
	load := p.TotalQuantity()
	if load+order.Quantity > p.Truck.Capacity {
		return capacityError(p.Truck, load, order.Quantity)
	}
	p.Deliveries = append(p.Deliveries, order)
	return nil
}

// Load multiple orders onto the plan.
func (p *TransportationPlan) LoadMultiple(orders []*PackageOrder) error {
	for _, o := range orders {
		if err := p.Load(o); err != nil {
			return err
		}
	}

	return nil
}

// Clone copies the route and delivery containers; truck and orders are shared.
func (p *TransportationPlan) Clone() *TransportationPlan {
	return &TransportationPlan{
		Truck:      p.Truck,
		Route:      append([]*City(nil), p.Route...),
		Deliveries: append([]*PackageOrder(nil), p.Deliveries...),
		Unrouted:   append([]*PackageOrder(nil), p.Unrouted...),
	}
}

// Visits reports whether the route passes through the given city.
func (p *TransportationPlan) Visits(code string) bool {
	for _, c := range p.Route {
		if c.Code == code {
			return true
		}
	}
	return false
}

// ClonePlans deep-copies a solution.
func ClonePlans(plans []*TransportationPlan) []*TransportationPlan {
	out := make([]*TransportationPlan, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.Clone())
	}
	return out
}
