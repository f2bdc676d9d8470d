package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schema = []string{
	`
	CREATE TABLE IF NOT EXISTS cities (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		region TEXT NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		warehouse_capacity INTEGER NOT NULL DEFAULT 0
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS road_segments (
		origin TEXT NOT NULL REFERENCES cities(code),
		destination TEXT NOT NULL REFERENCES cities(code),
		distance_km DOUBLE PRECISION NOT NULL,
		speed_kmh DOUBLE PRECISION NOT NULL,
		cost DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS segment_blockages (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		starts_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		PRIMARY KEY (origin, destination, starts_at),
		FOREIGN KEY (origin, destination) REFERENCES road_segments(origin, destination)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS trucks (
		code TEXT PRIMARY KEY,
		truck_type TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		location TEXT NOT NULL REFERENCES cities(code),
		available BOOLEAN NOT NULL,
		available_from TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS truck_windows (
		truck_code TEXT NOT NULL REFERENCES trucks(code),
		kind TEXT NOT NULL,
		starts_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		PRIMARY KEY (truck_code, kind, starts_at)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS package_orders (
		order_id TEXT PRIMARY KEY,
		quantity INTEGER NOT NULL,
		origin TEXT,
		destination TEXT NOT NULL REFERENCES cities(code),
		ordered_at TEXT NOT NULL,
		deadline TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS transportation_plans (
		run_id TEXT NOT NULL,
		truck_code TEXT NOT NULL,
		total_quantity INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (run_id, truck_code)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS plan_route_stops (
		run_id TEXT NOT NULL,
		truck_code TEXT NOT NULL,
		seq INTEGER NOT NULL,
		city_code TEXT NOT NULL,
		PRIMARY KEY (run_id, truck_code, seq)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS plan_deliveries (
		run_id TEXT NOT NULL,
		truck_code TEXT NOT NULL,
		seq INTEGER NOT NULL,
		order_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		destination TEXT NOT NULL,
		routed BOOLEAN NOT NULL,
		PRIMARY KEY (run_id, truck_code, seq)
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_package_orders_deadline
	ON package_orders(deadline);
	`,
}

// Initialize the planning schema. The DDL is shared by SQLite and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
