package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/planwerk/cockpit-backend/internal/plans/domain"
)

// Subscription delivers the decoded events of one channel until Close.
type Subscription struct {
	pubsub *redis.PubSub
	events chan domain.VersionPublished
}

func (s *Subscription) Events() <-chan domain.VersionPublished { return s.events }

func (s *Subscription) Close() error { return s.pubsub.Close() }

type RedisSubscriber struct {
	client *redis.Client
}

func NewRedisSubscriber(client *redis.Client) *RedisSubscriber {
	return &RedisSubscriber{client: client}
}

// SubscribePlan listens on the plan's channel. The subscription is confirmed
// before returning, so nothing published afterwards is missed. Malformed
// payloads are skipped.
func (s *RedisSubscriber) SubscribePlan(ctx context.Context, planID uuid.UUID) (*Subscription, error) {
	pubsub := s.client.Subscribe(ctx, PlanChannel(planID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	sub := &Subscription{pubsub: pubsub, events: make(chan domain.VersionPublished, 16)}
	go func() {
		defer close(sub.events)
		for msg := range pubsub.Channel() {
			var ev domain.VersionPublished
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case sub.events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return sub, nil
}
