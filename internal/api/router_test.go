package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"transport-planning-service/internal/adapters/repositories"
	"transport-planning-service/internal/api/dto"
	"transport-planning-service/internal/api/handlers"
	"transport-planning-service/internal/platform/db"
	"transport-planning-service/internal/platform/obs"
	"transport-planning-service/internal/ports"
	"transport-planning-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var simStart = time.Date(2023, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newLimitedTestServer(t, nil)
}

func newLimitedTestServer(t *testing.T, limiter *rate.Limiter) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(ctx, conn))

	deadline := simStart.Add(48 * time.Hour)
	require.NoError(t, repositories.ApplySeed(ctx, conn, repositories.SQLite, &repositories.Seed{
		Cities: []repositories.CitySeed{
			{Code: "A", Name: "Alpha", Region: "COSTA"},
			{Code: "B", Name: "Beta", Region: "COSTA"},
			{Code: "C", Name: "Gamma", Region: "COSTA"},
		},
		Segments: []repositories.SegmentSeed{
			{Origin: "A", Destination: "B", DistanceKm: 140, SpeedKmh: 70},
			{Origin: "B", Destination: "C", DistanceKm: 210, SpeedKmh: 70},
			{Origin: "A", Destination: "C", DistanceKm: 700, SpeedKmh: 70},
		},
		Blockages: []repositories.WindowSeed{
			{Origin: "A", Destination: "C", Start: simStart, End: simStart.Add(24 * time.Hour)},
		},
		Trucks: []repositories.TruckSeed{
			{Code: "T1", Type: "A", Capacity: 10, Location: "A", AvailableFrom: simStart},
		},
		Orders: []repositories.OrderSeed{
			{OrderID: "o-1", Quantity: 4, Destination: "C", OrderedAt: simStart, Deadline: &deadline},
		},
	}))

	store := repositories.NewSQLPlanRepository(conn, repositories.SQLite)
	opts := services.DefaultOptions()
	opts.MaxIterations = 3

	obs.RegisterDefault()
	router := NewRouter(&handlers.PlanHandler{
		Repo:    repositories.NewSQLNetworkRepository(conn, repositories.SQLite),
		Sinks:   []ports.PlanSink{store},
		Routes:  store,
		Options: opts,
		Start:   simStart,
		Limiter: limiter,
	}, conn)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, res *http.Response, v any) {
	t.Helper()
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body map[string]string
	decode(t, res, &body)
	assert.Equal(t, "ok", body["status"])
}

type downDB struct{}

func (downDB) PingContext(ctx context.Context) error { return errors.New("connection refused") }

func TestHealthDatabaseDown(t *testing.T) {
	h := &handlers.HealthHandler{DB: downDB{}}
	rec := httptest.NewRecorder()

	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListOrders(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/orders")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body dto.ListOrdersResponse
	decode(t, res, &body)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "C", body.Orders[0].Destination)
	assert.Empty(t, body.Orders[0].Origin)
}

func TestPlanRunAndReadBack(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Post(srv.URL+"/plans", "application/json", strings.NewReader(`{"max_iterations": 2}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var run dto.RunResponse
	decode(t, res, &run)
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, 2, run.Iterations)
	assert.Equal(t, 5.0, run.Cost)
	require.Len(t, run.Plans, 1)
	assert.Equal(t, []string{"A", "B", "C"}, run.Plans[0].Route)
	require.Len(t, run.Plans[0].Deliveries, 1)
	require.NotNil(t, run.Plans[0].Deliveries[0].DeliveredAt)
	assert.Equal(t, simStart.Add(5*time.Hour), run.Plans[0].Deliveries[0].DeliveredAt.UTC())

	res, err = http.Get(srv.URL + "/plans?run_id=" + run.RunID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var routes dto.RoutesResponse
	decode(t, res, &routes)
	assert.Equal(t, map[string][]string{"T1": {"A", "B", "C"}}, routes.Routes)
}

func TestPlanRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]string{
		"unknown field":      `{"trucks": 3}`,
		"two objects":        `{} {}`,
		"invalid acceptance": `{"acceptance": "tabu"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := http.Post(srv.URL+"/plans", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			res.Body.Close()
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		})
	}

	res, err := http.Get(srv.URL + "/plans?run_id=missing")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/plans", nil)
	require.NoError(t, err)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Post(srv.URL+"/plans", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	res.Body.Close()

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gls_iterations_total")
}

func TestPlanRunsAreRateLimited(t *testing.T) {
	srv := newLimitedTestServer(t, rate.NewLimiter(rate.Every(time.Hour), 1))

	res, err := http.Post(srv.URL+"/plans", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Post(srv.URL+"/plans", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "10", res.Header.Get("Retry-After"))
}
