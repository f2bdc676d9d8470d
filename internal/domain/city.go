package domain

import (
	"strings"
	"time"
)

// Region classifiers used for speed limits and deadline derivation.
const (
	RegionCosta  = "COSTA"
	RegionSierra = "SIERRA"
	RegionSelva  = "SELVA"
)

// City is a node of the road network. Identity is the Code; two City values
// with the same Code refer to the same place.
type City struct {
	Code              string
	Name              string
	Location          Coordinates
	Region            string
	WarehouseCapacity int
}

// SpeedLimit returns the speed limit (km/h) for a road between two regions.
func SpeedLimit(fromRegion, toRegion string) float64 {
	a := strings.ToUpper(strings.TrimSpace(fromRegion))
	b := strings.ToUpper(strings.TrimSpace(toRegion))

	switch {
	case a == RegionCosta && b == RegionCosta:
		return 70
	case (a == RegionCosta && b == RegionSierra) || (a == RegionSierra && b == RegionCosta):
		return 50
	case a == RegionSierra && b == RegionSierra:
		return 60
	case (a == RegionSierra && b == RegionSelva) || (a == RegionSelva && b == RegionSierra):
		return 55
	case a == RegionSelva && b == RegionSelva:
		return 65
	}
	return 50
}

// DeadlineFor derives a delivery deadline from the destination region.
func DeadlineFor(region string, orderedAt time.Time) time.Time {
	switch strings.ToUpper(strings.TrimSpace(region)) {
	case RegionCosta:
		return orderedAt.AddDate(0, 0, 1)
	case RegionSelva:
		return orderedAt.AddDate(0, 0, 3)
	default:
		return orderedAt.AddDate(0, 0, 2)
	}
}
