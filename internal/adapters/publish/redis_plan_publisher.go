package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"transport-planning-service/internal/domain"
	"transport-planning-service/internal/platform/obs"

	redis "github.com/redis/go-redis/v9"
)

const (
	// PlansChannel receives the run id of every published run.
	PlansChannel = "plans"
	DefaultTTL   = 24 * time.Hour
)

type DeliveryMessage struct {
	OrderID     string `json:"order_id"`
	Quantity    int    `json:"quantity"`
	Destination string `json:"destination"`
	Routed      bool   `json:"routed"`
}

type PlanMessage struct {
	Truck         string            `json:"truck"`
	Route         []string          `json:"route"`
	TotalQuantity int               `json:"total_quantity"`
	Deliveries    []DeliveryMessage `json:"deliveries"`
}

// RunMessage is the JSON document stored under PlansKey(runID).
type RunMessage struct {
	RunID       string        `json:"run_id"`
	PublishedAt time.Time     `json:"published_at"`
	Plans       []PlanMessage `json:"plans"`
}

func PlansKey(runID string) string { return "plans:" + runID }

// RedisPlanPublisher stores each run's plans in Redis and announces the run
// on PlansChannel.
type RedisPlanPublisher struct {
	rdb *redis.Client
	TTL time.Duration
}

func NewRedisPlanPublisher(url string) (*RedisPlanPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis plan publisher: parse url: %w", err)
	}
	return NewRedisPlanPublisherFromClient(redis.NewClient(opt)), nil
}

func NewRedisPlanPublisherFromClient(rdb *redis.Client) *RedisPlanPublisher {
	return &RedisPlanPublisher{rdb: rdb, TTL: DefaultTTL}
}

func (p *RedisPlanPublisher) Close() error { return p.rdb.Close() }

// SavePlans implements the PlanSink port.
func (p *RedisPlanPublisher) SavePlans(ctx context.Context, runID string, plans []*domain.TransportationPlan) (err error) {
	defer obs.Time(ctx, "publish.SavePlans")(&err)

	if runID == "" {
		return errors.New("publish plans: run id must not be empty")
	}

	data, err := json.Marshal(NewRunMessage(runID, plans, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("publish plans: encode: %w", err)
	}

	_, err = p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, PlansKey(runID), data, p.TTL)
		pipe.Publish(ctx, PlansChannel, runID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish plans: run %s: %w", runID, err)
	}
	return nil
}

// LoadRun reads back a published run.
func (p *RedisPlanPublisher) LoadRun(ctx context.Context, runID string) (*RunMessage, error) {
	data, err := p.rdb.Get(ctx, PlansKey(runID)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	var msg RunMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("load run %s: decode: %w", runID, err)
	}
	return &msg, nil
}

func NewRunMessage(runID string, plans []*domain.TransportationPlan, at time.Time) RunMessage {
	msg := RunMessage{RunID: runID, PublishedAt: at, Plans: make([]PlanMessage, 0, len(plans))}

	for _, p := range plans {
		unrouted := make(map[*domain.PackageOrder]bool, len(p.Unrouted))
		for _, o := range p.Unrouted {
			unrouted[o] = true
		}

		pm := PlanMessage{
			Truck:         p.Truck.Code,
			Route:         make([]string, 0, len(p.Route)),
			TotalQuantity: p.TotalQuantity(),
		}
		for _, c := range p.Route {
			pm.Route = append(pm.Route, c.Code)
		}
		for _, o := range p.Deliveries {
			pm.Deliveries = append(pm.Deliveries, DeliveryMessage{
				OrderID:     o.OrderID,
				Quantity:    o.Quantity,
				Destination: o.Destination.Code,
				Routed:      !unrouted[o],
			})
		}
		msg.Plans = append(msg.Plans, pm)
	}

	return msg
}
