package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transport-planning-service/internal/adapters/publish"
	"transport-planning-service/internal/adapters/repositories"
	"transport-planning-service/internal/api"
	"transport-planning-service/internal/api/handlers"
	"transport-planning-service/internal/config"
	"transport-planning-service/internal/platform/db"
	"transport-planning-service/internal/platform/obs"
	"transport-planning-service/internal/ports"
	"transport-planning-service/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// main is the application composition root.
// It wires the SQL repository and the plan sinks around the optimiser, then
// either runs one planning pass and prints the trace, or serves the HTTP API.
func main() {
	serve := flag.Bool("serve", false, "serve the planning HTTP API instead of running once")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		obs.Logger.Fatal(err)
	}
	obs.SetLevel(cfg.LogLevel)
	obs.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, dialect, err := openDatabase(cfg)
	if err != nil {
		obs.Logger.Fatal(err)
	}
	defer conn.Close()

	repo := repositories.NewSQLNetworkRepository(conn, dialect)
	store := repositories.NewSQLPlanRepository(conn, dialect)
	sinks := []ports.PlanSink{store}

	if cfg.RedisURL != "" {
		pub, err := publish.NewRedisPlanPublisher(cfg.RedisURL)
		if err != nil {
			obs.Logger.Fatal(err)
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}

	if *serve {
		plans := &handlers.PlanHandler{Repo: repo, Sinks: sinks, Routes: store, Options: cfg.Optimizer}
		if cfg.PlanRunsPerMinute > 0 {
			plans.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.PlanRunsPerMinute)), 1)
		}
		err = listen(ctx, cfg.Port, api.NewRouter(plans, conn))
	} else {
		err = run(ctx, cfg, dialect, repo, sinks)
	}
	if err != nil {
		obs.Logger.Error(err)
		os.Exit(1)
	}
}

// Timeouts leave room for long optimisation runs behind POST /plans.
func listen(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	obs.Logger.WithField("addr", srv.Addr).Info("Server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func run(
	ctx context.Context,
	cfg *config.Config,
	dialect repositories.Dialect,
	repo ports.NetworkRepository,
	sinks []ports.PlanSink,
) error {
	obs.Logger.WithFields(logrus.Fields{
		"dialect":    dialect,
		"start":      cfg.SimulationStart,
		"acceptance": cfg.Optimizer.Acceptance,
		"iterations": cfg.Optimizer.MaxIterations,
	}).Info("planning run starting")

	result, planErr := services.PlanTransport(ctx, services.PlanTransportRequest{
		Start:   cfg.SimulationStart,
		Options: cfg.Optimizer,
	}, repo, sinks...)

	if result.Result != nil {
		if err := services.FormatTrace(os.Stdout, result.Traces, cfg.SimulationStart, cfg.SimulationEnd); err != nil {
			return fmt.Errorf("print trace: %w", err)
		}
		fmt.Fprintf(os.Stdout, "\nRun %s: cost %.2f after %d iterations (%d unassigned orders)\n",
			result.ID, result.Result.Cost, result.Result.Iterations, len(result.Result.Unassigned))
	}

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, obs.Registry); err != nil {
			obs.Logger.WithError(err).Warn("write metrics file")
		}
	}

	if errors.Is(planErr, context.Canceled) {
		obs.Logger.WithField("run_id", result.ID).Warn("planning interrupted, best plans printed but not saved")
		return nil
	}
	return planErr
}

func openDatabase(cfg *config.Config) (*sql.DB, repositories.Dialect, error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		return conn, repositories.Postgres, err
	}
	conn, err := db.OpenSQLite(cfg.DBPath)
	return conn, repositories.SQLite, err
}
