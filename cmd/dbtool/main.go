package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"sort"

	"transport-planning-service/internal/adapters/repositories"
	"transport-planning-service/internal/config"
	"transport-planning-service/internal/platform/db"
	"transport-planning-service/internal/platform/obs"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		obs.Logger.Info("No .env file found (using environment variables)")
	}

	routes := flag.String("routes", "", "print the stored routes of a run id and exit")
	skipSeed := flag.Bool("schema-only", false, "initialize the schema without seeding")
	flag.Parse()

	ctx := context.Background()
	databaseURL := config.Get("DATABASE_URL", "")

	var (
		conn    *sql.DB
		dialect repositories.Dialect
		err     error
	)
	if databaseURL != "" {
		conn, err = db.Open(databaseURL)
		dialect = repositories.Postgres
	} else {
		conn, err = db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
		dialect = repositories.SQLite
	}
	if err != nil {
		obs.Logger.Fatal(err)
	}
	defer conn.Close()

	if *routes != "" {
		if err := printRoutes(ctx, repositories.NewSQLPlanRepository(conn, dialect), *routes); err != nil {
			obs.Logger.Fatal(err)
		}
		return
	}

	seedPath := config.Get("SEED_PATH", "data/seeds/network.json")
	if *skipSeed {
		seedPath = ""
	}
	if err := initAndSeed(ctx, conn, dialect, seedPath); err != nil {
		obs.Logger.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect repositories.Dialect, seedPath string) error {
	obs.Logger.WithField("dialect", dialect).Info("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	obs.Logger.Info("Schema ready.")

	if seedPath == "" {
		return nil
	}

	obs.Logger.WithField("seed", seedPath).Info("Seeding database...")
	if err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	obs.Logger.Info("Seeding complete.")

	return nil
}

func printRoutes(ctx context.Context, repo *repositories.SQLPlanRepository, runID string) error {
	stops, err := repo.RouteStops(ctx, runID)
	if err != nil {
		return err
	}
	if len(stops) == 0 {
		return fmt.Errorf("no plans stored for run %s", runID)
	}

	trucks := make([]string, 0, len(stops))
	for t := range stops {
		trucks = append(trucks, t)
	}
	sort.Strings(trucks)

	for _, t := range trucks {
		fmt.Fprintf(os.Stdout, "%s: %v\n", t, stops[t])
	}
	return nil
}
