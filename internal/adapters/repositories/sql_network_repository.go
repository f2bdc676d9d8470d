package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"transport-planning-service/internal/domain"
	"transport-planning-service/internal/platform/obs"
)

// SQL-backed implementation of the NetworkRepository port.
type SQLNetworkRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLNetworkRepository(db *sql.DB, dialect Dialect) *SQLNetworkRepository {
	return &SQLNetworkRepository{DB: db, Dialect: dialect}
}

// Return all cities ordered by code.
func (r *SQLNetworkRepository) ListCities(ctx context.Context) (_ []*domain.City, err error) {
	defer obs.Time(ctx, "repository.ListCities")(&err)

	if r.DB == nil {
		return nil, errors.New("network repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT code, name, region, lon, lat, warehouse_capacity
	FROM cities
	ORDER BY code;
	`)
	if err != nil {
		return nil, fmt.Errorf("list cities: query cities table: %w", err)
	}
	defer rows.Close()

	cities := make([]*domain.City, 0, 64)
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.Code, &c.Name, &c.Region, &c.Location.Lon, &c.Location.Lat, &c.WarehouseCapacity); err != nil {
			return nil, fmt.Errorf("list cities: scan row: %w", err)
		}
		cities = append(cities, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cities: row iteration: %w", err)
	}

	return cities, nil
}

func (r *SQLNetworkRepository) cityIndex(ctx context.Context) (map[string]*domain.City, error) {
	cities, err := r.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]*domain.City, len(cities))
	for _, c := range cities {
		idx[c.Code] = c
	}
	return idx, nil
}

func resolve(idx map[string]*domain.City, code string) (*domain.City, error) {
	c, ok := idx[code]
	if !ok {
		return nil, fmt.Errorf("unknown city %q", code)
	}
	return c, nil
}

// Return all road segments with their blockage intervals.
func (r *SQLNetworkRepository) ListRoadSegments(ctx context.Context) (_ []*domain.RoadSegment, err error) {
	defer obs.Time(ctx, "repository.ListRoadSegments")(&err)

	idx, err := r.cityIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("list road segments: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT origin, destination, distance_km, speed_kmh, cost
	FROM road_segments
	ORDER BY origin, destination;
	`)
	if err != nil {
		return nil, fmt.Errorf("list road segments: query road_segments table: %w", err)
	}
	defer rows.Close()

	segments := make([]*domain.RoadSegment, 0, 128)
	byKey := make(map[domain.SegmentKey]*domain.RoadSegment)
	for rows.Next() {
		var from, to string
		var s domain.RoadSegment
		if err := rows.Scan(&from, &to, &s.Distance, &s.SpeedLimit, &s.Cost); err != nil {
			return nil, fmt.Errorf("list road segments: scan row: %w", err)
		}
		if s.Origin, err = resolve(idx, from); err != nil {
			return nil, fmt.Errorf("list road segments: %w", err)
		}
		if s.Destination, err = resolve(idx, to); err != nil {
			return nil, fmt.Errorf("list road segments: %w", err)
		}
		segments = append(segments, &s)
		byKey[s.Key()] = &s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list road segments: row iteration: %w", err)
	}

	blocks, err := r.DB.QueryContext(ctx, `
	SELECT origin, destination, starts_at, ends_at
	FROM segment_blockages
	ORDER BY origin, destination, starts_at;
	`)
	if err != nil {
		return nil, fmt.Errorf("list road segments: query segment_blockages table: %w", err)
	}
	defer blocks.Close()

	for blocks.Next() {
		var key domain.SegmentKey
		var startsAt, endsAt string
		if err := blocks.Scan(&key.From, &key.To, &startsAt, &endsAt); err != nil {
			return nil, fmt.Errorf("list road segments: scan blockage: %w", err)
		}
		s, ok := byKey[key]
		if !ok {
			continue
		}
		start, err := parseTime(startsAt)
		if err != nil {
			return nil, fmt.Errorf("list road segments: blockage %s: %w", key, err)
		}
		end, err := parseTime(endsAt)
		if err != nil {
			return nil, fmt.Errorf("list road segments: blockage %s: %w", key, err)
		}
		s.AddBlockage(start, end)
	}
	if err := blocks.Err(); err != nil {
		return nil, fmt.Errorf("list road segments: blockage iteration: %w", err)
	}

	return segments, nil
}

// Return all trucks with their maintenance and breakdown windows.
func (r *SQLNetworkRepository) ListTrucks(ctx context.Context) (_ []*domain.Truck, err error) {
	defer obs.Time(ctx, "repository.ListTrucks")(&err)

	idx, err := r.cityIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trucks: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT code, truck_type, capacity, location, available, available_from
	FROM trucks
	ORDER BY code;
	`)
	if err != nil {
		return nil, fmt.Errorf("list trucks: query trucks table: %w", err)
	}
	defer rows.Close()

	trucks := make([]*domain.Truck, 0, 32)
	byCode := make(map[string]*domain.Truck)
	for rows.Next() {
		var t domain.Truck
		var location, availableFrom string
		if err := rows.Scan(&t.Code, &t.Type, &t.Capacity, &location, &t.Available, &availableFrom); err != nil {
			return nil, fmt.Errorf("list trucks: scan row: %w", err)
		}
		if t.Location, err = resolve(idx, location); err != nil {
			return nil, fmt.Errorf("list trucks: truck %s: %w", t.Code, err)
		}
		if t.AvailableFrom, err = parseTime(availableFrom); err != nil {
			return nil, fmt.Errorf("list trucks: truck %s: %w", t.Code, err)
		}
		trucks = append(trucks, &t)
		byCode[t.Code] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trucks: row iteration: %w", err)
	}

	windows, err := r.DB.QueryContext(ctx, `
	SELECT truck_code, kind, starts_at, ends_at
	FROM truck_windows
	ORDER BY truck_code, starts_at;
	`)
	if err != nil {
		return nil, fmt.Errorf("list trucks: query truck_windows table: %w", err)
	}
	defer windows.Close()

	for windows.Next() {
		var code, startsAt, endsAt string
		var w domain.UnavailabilityWindow
		if err := windows.Scan(&code, &w.Type, &startsAt, &endsAt); err != nil {
			return nil, fmt.Errorf("list trucks: scan window: %w", err)
		}
		t, ok := byCode[code]
		if !ok {
			continue
		}
		if w.Start, err = parseTime(startsAt); err != nil {
			return nil, fmt.Errorf("list trucks: window of %s: %w", code, err)
		}
		if w.End, err = parseTime(endsAt); err != nil {
			return nil, fmt.Errorf("list trucks: window of %s: %w", code, err)
		}

		if w.Type == domain.WindowBreakdown {
			t.Breakdowns = append(t.Breakdowns, w)
		} else {
			t.Maintenance = append(t.Maintenance, w)
		}
	}
	if err := windows.Err(); err != nil {
		return nil, fmt.Errorf("list trucks: window iteration: %w", err)
	}

	return trucks, nil
}

// Return all pending package orders, earliest deadline first.
func (r *SQLNetworkRepository) ListPackageOrders(ctx context.Context) (_ []*domain.PackageOrder, err error) {
	defer obs.Time(ctx, "repository.ListPackageOrders")(&err)

	idx, err := r.cityIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("list package orders: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT order_id, quantity, origin, destination, ordered_at, deadline
	FROM package_orders
	ORDER BY deadline, order_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list package orders: query package_orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.PackageOrder, 0, 128)
	for rows.Next() {
		var o domain.PackageOrder
		var origin sql.NullString
		var destination, orderedAt, deadline string
		if err := rows.Scan(&o.OrderID, &o.Quantity, &origin, &destination, &orderedAt, &deadline); err != nil {
			return nil, fmt.Errorf("list package orders: scan row: %w", err)
		}
		if origin.Valid {
			if o.Origin, err = resolve(idx, origin.String); err != nil {
				return nil, fmt.Errorf("list package orders: order %s: %w", o.OrderID, err)
			}
		}
		if o.Destination, err = resolve(idx, destination); err != nil {
			return nil, fmt.Errorf("list package orders: order %s: %w", o.OrderID, err)
		}
		if o.OrderedAt, err = parseTime(orderedAt); err != nil {
			return nil, fmt.Errorf("list package orders: order %s: %w", o.OrderID, err)
		}
		if o.Deadline, err = parseTime(deadline); err != nil {
			return nil, fmt.Errorf("list package orders: order %s: %w", o.OrderID, err)
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list package orders: row iteration: %w", err)
	}

	return orders, nil
}
