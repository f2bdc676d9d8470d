package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"transport-planning-service/internal/domain"
)

// MaintenanceDays is how long a scheduled maintenance stop lasts.
const MaintenanceDays = 2

type CitySeed struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Region            string  `json:"region"`
	Lon               float64 `json:"lon"`
	Lat               float64 `json:"lat"`
	WarehouseCapacity int     `json:"warehouse_capacity"`
}

// SegmentSeed describes a directed road. A zero distance is derived from the
// city coordinates and a zero speed from the regions it connects.
type SegmentSeed struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DistanceKm  float64 `json:"distance_km"`
	SpeedKmh    float64 `json:"speed_kmh"`
}

type WindowSeed struct {
	Origin      string    `json:"origin,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

type TruckSeed struct {
	Code          string       `json:"code"`
	Type          string       `json:"type"`
	Capacity      int          `json:"capacity"`
	Location      string       `json:"location"`
	Available     *bool        `json:"available"`
	AvailableFrom time.Time    `json:"available_from"`
	Maintenance   []time.Time  `json:"maintenance"`
	Breakdowns    []WindowSeed `json:"breakdowns"`
}

// OrderSeed is a package order. A missing deadline is derived from the
// destination region.
type OrderSeed struct {
	OrderID     string     `json:"order_id"`
	Quantity    int        `json:"quantity"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	OrderedAt   time.Time  `json:"ordered_at"`
	Deadline    *time.Time `json:"deadline"`
}

// Seed is the JSON document accepted by SeedFromJSON.
type Seed struct {
	Cities    []CitySeed    `json:"cities"`
	Segments  []SegmentSeed `json:"segments"`
	Blockages []WindowSeed  `json:"blockages"`
	Trucks    []TruckSeed   `json:"trucks"`
	Orders    []OrderSeed   `json:"orders"`
}

// Populate the database with the planning data of a JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, dialect Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	return ApplySeed(ctx, db, dialect, &data)
}

// ApplySeed validates the seed and upserts it in a single transaction.
func ApplySeed(ctx context.Context, db *sql.DB, dialect Dialect, seed *Seed) error {
	cities := make(map[string]*domain.City, len(seed.Cities))
	for i, c := range seed.Cities {
		code := strings.TrimSpace(c.Code)
		if code == "" {
			return fmt.Errorf("seed cities: item at index %d: code cannot be empty", i+1)
		}
		cities[code] = &domain.City{
			Code:              code,
			Name:              c.Name,
			Region:            strings.ToUpper(strings.TrimSpace(c.Region)),
			Location:          domain.Coordinates{Lon: c.Lon, Lat: c.Lat},
			WarehouseCapacity: c.WarehouseCapacity,
		}
	}

	lookup := func(what string, i int, code string) (*domain.City, error) {
		c, ok := cities[strings.TrimSpace(code)]
		if !ok {
			return nil, fmt.Errorf("seed %s: item at index %d: unknown city %q", what, i+1, code)
		}
		return c, nil
	}

	segments := make([]*domain.RoadSegment, 0, len(seed.Segments))
	for i, s := range seed.Segments {
		from, err := lookup("segments", i, s.Origin)
		if err != nil {
			return err
		}
		to, err := lookup("segments", i, s.Destination)
		if err != nil {
			return err
		}

		dist := s.DistanceKm
		if dist <= 0 {
			dist = domain.HaversineKm(from.Location, to.Location)
		}
		speed := s.SpeedKmh
		if speed <= 0 {
			speed = domain.SpeedLimit(from.Region, to.Region)
		}
		segments = append(segments, domain.NewRoadSegment(from, to, dist, speed))
	}

	known := make(map[domain.SegmentKey]struct{}, len(segments))
	for _, s := range segments {
		known[s.Key()] = struct{}{}
	}
	for i, b := range seed.Blockages {
		if _, ok := known[domain.SegmentKey{From: b.Origin, To: b.Destination}]; !ok {
			return fmt.Errorf("seed blockages: item at index %d: unknown segment %s->%s", i+1, b.Origin, b.Destination)
		}
		if !b.End.After(b.Start) {
			return fmt.Errorf("seed blockages: item at index %d: end must be after start", i+1)
		}
	}

	for i, t := range seed.Trucks {
		if strings.TrimSpace(t.Code) == "" || t.Capacity <= 0 {
			return fmt.Errorf("seed trucks: item at index %d: code and positive capacity are required", i+1)
		}
		if _, err := lookup("trucks", i, t.Location); err != nil {
			return err
		}
	}

	for i, o := range seed.Orders {
		if strings.TrimSpace(o.OrderID) == "" || o.Quantity <= 0 {
			return fmt.Errorf("seed orders: item at index %d: order id and positive quantity are required", i+1)
		}
		if _, err := lookup("orders", i, o.Destination); err != nil {
			return err
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range seed.Cities {
		city := cities[strings.TrimSpace(c.Code)]
		if _, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO cities (code, name, region, lon, lat, warehouse_capacity)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE
		SET name = excluded.name,
			region = excluded.region,
			lon = excluded.lon,
			lat = excluded.lat,
			warehouse_capacity = excluded.warehouse_capacity;
		`), city.Code, city.Name, city.Region, city.Location.Lon, city.Location.Lat, city.WarehouseCapacity); err != nil {
			return fmt.Errorf("seed cities: insert code=%q: %w", city.Code, err)
		}
	}

	for _, s := range segments {
		if _, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO road_segments (origin, destination, distance_km, speed_kmh, cost)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (origin, destination) DO UPDATE
		SET distance_km = excluded.distance_km,
			speed_kmh = excluded.speed_kmh,
			cost = excluded.cost;
		`), s.Origin.Code, s.Destination.Code, s.Distance, s.SpeedLimit, s.Cost); err != nil {
			return fmt.Errorf("seed segments: insert %s: %w", s.Key(), err)
		}
	}

	for _, b := range seed.Blockages {
		if _, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO segment_blockages (origin, destination, starts_at, ends_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (origin, destination, starts_at) DO UPDATE
		SET ends_at = excluded.ends_at;
		`), b.Origin, b.Destination, formatTime(b.Start), formatTime(b.End)); err != nil {
			return fmt.Errorf("seed blockages: insert %s->%s: %w", b.Origin, b.Destination, err)
		}
	}

	for _, t := range seed.Trucks {
		available := true
		if t.Available != nil {
			available = *t.Available
		}
		if _, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO trucks (code, truck_type, capacity, location, available, available_from)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE
		SET truck_type = excluded.truck_type,
			capacity = excluded.capacity,
			location = excluded.location,
			available = excluded.available,
			available_from = excluded.available_from;
		`), t.Code, t.Type, t.Capacity, strings.TrimSpace(t.Location), available, formatTime(t.AvailableFrom)); err != nil {
			return fmt.Errorf("seed trucks: insert code=%q: %w", t.Code, err)
		}

		windows := make([]domain.UnavailabilityWindow, 0, len(t.Maintenance)+len(t.Breakdowns))
		for _, m := range t.Maintenance {
			windows = append(windows, domain.UnavailabilityWindow{
				Type:  domain.WindowMaintenance,
				Start: m,
				End:   m.AddDate(0, 0, MaintenanceDays),
			})
		}
		for _, b := range t.Breakdowns {
			windows = append(windows, domain.UnavailabilityWindow{Type: domain.WindowBreakdown, Start: b.Start, End: b.End})
		}

		for _, w := range windows {
			if _, err := tx.ExecContext(ctx, dialect.Rebind(`
			INSERT INTO truck_windows (truck_code, kind, starts_at, ends_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (truck_code, kind, starts_at) DO UPDATE
			SET ends_at = excluded.ends_at;
			`), t.Code, w.Type, formatTime(w.Start), formatTime(w.End)); err != nil {
				return fmt.Errorf("seed trucks: insert %s window for %q: %w", w.Type, t.Code, err)
			}
		}
	}

	for _, o := range seed.Orders {
		dest := cities[strings.TrimSpace(o.Destination)]
		deadline := domain.DeadlineFor(dest.Region, o.OrderedAt)
		if o.Deadline != nil {
			deadline = *o.Deadline
		}

		var origin sql.NullString
		if code := strings.TrimSpace(o.Origin); code != "" {
			origin = sql.NullString{String: code, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO package_orders (order_id, quantity, origin, destination, ordered_at, deadline)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id) DO UPDATE
		SET quantity = excluded.quantity,
			origin = excluded.origin,
			destination = excluded.destination,
			ordered_at = excluded.ordered_at,
			deadline = excluded.deadline;
		`), o.OrderID, o.Quantity, origin, dest.Code, formatTime(o.OrderedAt), formatTime(deadline)); err != nil {
			return fmt.Errorf("seed orders: insert order_id=%q: %w", o.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
