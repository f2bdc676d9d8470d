package domain

import "time"

// PackageOrder is a quantity of packages bound for one destination.
// Fragments produced by Split share the OrderID of the order they came from.
type PackageOrder struct {
	OrderID     string
	Quantity    int
	Origin      *City
	Destination *City
	OrderedAt   time.Time
	Deadline    time.Time
}

// Split carves qty units off the order into a new independent fragment.
// The receiver keeps the remaining quantity.
func (o *PackageOrder) Split(qty int) *PackageOrder {
	if qty > o.Quantity {
		qty = o.Quantity
	}
	part := *o
	part.Quantity = qty
	o.Quantity -= qty
	return &part
}

// Clone returns an independent copy sharing the city references.
func (o *PackageOrder) Clone() *PackageOrder {
	c := *o
	return &c
}
