package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"transport-planning-service/internal/domain"
	"transport-planning-service/internal/platform/obs"
)

// SQLPlanRepository stores the plans of each run, keyed by run id.
type SQLPlanRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLPlanRepository(db *sql.DB, dialect Dialect) *SQLPlanRepository {
	return &SQLPlanRepository{DB: db, Dialect: dialect}
}

// Store every plan of a run. Saving the same run twice replaces it.
func (r *SQLPlanRepository) SavePlans(ctx context.Context, runID string, plans []*domain.TransportationPlan) (err error) {
	defer obs.Time(ctx, "repository.SavePlans")(&err)

	if r.DB == nil {
		return errors.New("plan repository: DB is nil")
	}
	if runID == "" {
		return errors.New("save plans: run id must not be empty")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save plans: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"plan_deliveries", "plan_route_stops", "transportation_plans"} {
		if _, err := tx.ExecContext(ctx, r.Dialect.Rebind("DELETE FROM "+table+" WHERE run_id = ?;"), runID); err != nil {
			return fmt.Errorf("save plans: clear %s: %w", table, err)
		}
	}

	createdAt := formatTime(time.Now())
	for _, p := range plans {
		code := p.Truck.Code

		if _, err := tx.ExecContext(ctx, r.Dialect.Rebind(`
		INSERT INTO transportation_plans (run_id, truck_code, total_quantity, created_at)
		VALUES (?, ?, ?, ?);
		`), runID, code, p.TotalQuantity(), createdAt); err != nil {
			return fmt.Errorf("save plans: insert plan truck=%s: %w", code, err)
		}

		for i, c := range p.Route {
			if _, err := tx.ExecContext(ctx, r.Dialect.Rebind(`
			INSERT INTO plan_route_stops (run_id, truck_code, seq, city_code)
			VALUES (?, ?, ?, ?);
			`), runID, code, i, c.Code); err != nil {
				return fmt.Errorf("save plans: insert stop %d truck=%s: %w", i, code, err)
			}
		}

		unrouted := make(map[*domain.PackageOrder]bool, len(p.Unrouted))
		for _, o := range p.Unrouted {
			unrouted[o] = true
		}
		for i, o := range p.Deliveries {
			if _, err := tx.ExecContext(ctx, r.Dialect.Rebind(`
			INSERT INTO plan_deliveries (run_id, truck_code, seq, order_id, quantity, destination, routed)
			VALUES (?, ?, ?, ?, ?, ?, ?);
			`), runID, code, i, o.OrderID, o.Quantity, o.Destination.Code, !unrouted[o]); err != nil {
				return fmt.Errorf("save plans: insert delivery %d truck=%s: %w", i, code, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save plans: commit tx: %w", err)
	}

	return nil
}

// Return the stored route of every truck of a run, as city codes.
func (r *SQLPlanRepository) RouteStops(ctx context.Context, runID string) (map[string][]string, error) {
	if r.DB == nil {
		return nil, errors.New("plan repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(`
	SELECT truck_code, city_code
	FROM plan_route_stops
	WHERE run_id = ?
	ORDER BY truck_code, seq;
	`), runID)
	if err != nil {
		return nil, fmt.Errorf("route stops: query plan_route_stops table: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var truck, city string
		if err := rows.Scan(&truck, &city); err != nil {
			return nil, fmt.Errorf("route stops: scan row: %w", err)
		}
		out[truck] = append(out[truck], city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("route stops: row iteration: %w", err)
	}

	return out, nil
}
