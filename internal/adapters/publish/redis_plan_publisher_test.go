package publish

import (
	"context"
	"testing"
	"time"

	"transport-planning-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*RedisPlanPublisher, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	pub, err := NewRedisPlanPublisher("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })
	return pub, mr
}

func samplePlans() []*domain.TransportationPlan {
	a, b, c := &domain.City{Code: "A"}, &domain.City{Code: "B"}, &domain.City{Code: "C"}
	plan := domain.NewTransportationPlan(&domain.Truck{Code: "T1", Capacity: 10, Location: a})
	routed := &domain.PackageOrder{OrderID: "1", Quantity: 4, Destination: c}
	stranded := &domain.PackageOrder{OrderID: "2", Quantity: 1, Destination: &domain.City{Code: "D"}}
	plan.Deliveries = []*domain.PackageOrder{routed, stranded}
	plan.Unrouted = []*domain.PackageOrder{stranded}
	plan.Route = []*domain.City{a, b, c}
	return []*domain.TransportationPlan{plan}
}

func TestSavePlansStoresAndAnnounces(t *testing.T) {
	ctx := context.Background()
	pub, mr := newTestPublisher(t)

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = sub.Close() })
	ps := sub.Subscribe(ctx, PlansChannel)
	_, err := ps.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, pub.SavePlans(ctx, "run-1", samplePlans()))

	select {
	case msg := <-ps.Channel():
		assert.Equal(t, "run-1", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no announcement received")
	}

	run, err := pub.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, run.Plans, 1)
	assert.Equal(t, []string{"A", "B", "C"}, run.Plans[0].Route)
	assert.Equal(t, 5, run.Plans[0].TotalQuantity)
	assert.True(t, run.Plans[0].Deliveries[0].Routed)
	assert.False(t, run.Plans[0].Deliveries[1].Routed)

	assert.Equal(t, DefaultTTL, mr.TTL(PlansKey("run-1")))
}

func TestSavePlansRequiresRunID(t *testing.T) {
	pub, _ := newTestPublisher(t)
	assert.Error(t, pub.SavePlans(context.Background(), "", samplePlans()))
}

func TestLoadRunMissing(t *testing.T) {
	pub, _ := newTestPublisher(t)

	_, err := pub.LoadRun(context.Background(), "nope")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestNewRedisPlanPublisherBadURL(t *testing.T) {
	_, err := NewRedisPlanPublisher("not a url")
	assert.Error(t, err)
}
