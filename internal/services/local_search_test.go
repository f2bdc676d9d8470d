package services

import (
	"testing"

	"transport-planning-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanSwap(t *testing.T) {
	x := city("X")
	a := domain.NewTransportationPlan(truck("T1", 10, x))
	b := domain.NewTransportationPlan(truck("T2", 6, x))
	small, big := order("s", 2, x, start), order("b", 8, x, start)
	require.NoError(t, a.Load(big))
	require.NoError(t, b.Load(small))

	assert.False(t, CanSwap(a, big, b, small))

	b.Truck.Capacity = 8
	assert.True(t, CanSwap(a, big, b, small))
}

func TestNeighborSwapsAndLeavesInputAlone(t *testing.T) {
	net, a, b, c := chain()
	builder := RouteBuilder{Network: net, At: start}

	p1 := domain.NewTransportationPlan(truck("T1", 10, a))
	require.NoError(t, p1.Load(order("1", 5, b, start)))
	p2 := domain.NewTransportationPlan(truck("T2", 10, a))
	require.NoError(t, p2.Load(order("2", 5, c, start)))
	builder.Route(p1)
	builder.Route(p2)
	plans := []*domain.TransportationPlan{p1, p2}

	next := LocalSearch{Builder: builder}.Neighbor(plans)

	require.Len(t, next, 2)
	assert.Equal(t, "2", next[0].Deliveries[0].OrderID)
	assert.Equal(t, "1", next[1].Deliveries[0].OrderID)
	assert.Equal(t, []string{"A", "B", "C"}, routeCodes(next[0].Route))
	assert.Equal(t, []string{"A", "B"}, routeCodes(next[1].Route))

	assert.Equal(t, "1", p1.Deliveries[0].OrderID)
	assert.Equal(t, []string{"A", "B"}, routeCodes(p1.Route))

	for _, p := range next {
		assert.LessOrEqual(t, p.TotalQuantity(), p.Truck.Capacity)
	}
}

func TestNeighborSingleTruckIsUnchanged(t *testing.T) {
	net, a, _, c := chain()
	builder := RouteBuilder{Network: net, At: start}

	p := domain.NewTransportationPlan(truck("T1", 10, a))
	require.NoError(t, p.Load(order("1", 5, c, start)))
	builder.Route(p)

	next := LocalSearch{Builder: builder}.Neighbor([]*domain.TransportationPlan{p})

	require.Len(t, next, 1)
	assert.NotSame(t, p, next[0])
	assert.Equal(t, routeCodes(p.Route), routeCodes(next[0].Route))
}
