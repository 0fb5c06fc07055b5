// Package events fans plan version notifications out over Redis Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/planwerk/cockpit-backend/internal/plans/domain"
)

const (
	planChannelPrefix  = "cockpit:plans:"        // per plan: cockpit:plans:{plan_id}:events
	AllVersionsChannel = "cockpit:plan-versions" // every published version
)

// PlanChannel is the channel carrying the events of one tracked plan.
func PlanChannel(planID uuid.UUID) string {
	return planChannelPrefix + planID.String() + ":events"
}

// Noop drops every event. Used when Redis is not configured.
type Noop struct{}

func (Noop) PublishVersion(context.Context, domain.VersionPublished) error { return nil }

// RedisPublisher publishes version events as JSON.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) PublishVersion(ctx context.Context, ev domain.VersionPublished) error {
	if ev.Type == "" {
		ev.Type = domain.EventVersionPublished
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, PlanChannel(ev.PlanID), data)
	pipe.Publish(ctx, AllVersionsChannel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
