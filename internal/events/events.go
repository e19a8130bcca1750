// Package events carries auth-state-change notifications between the HTTP
// handlers and any in-process mirrors (see authcache). The channel is
// advisory: consumers must not make authorization decisions from it.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/adhikari-dikshant/kanban/internal/logger"
)

// Channel is the redis pub/sub channel auth events travel on.
const Channel = "auth:events"

type Type string

const (
	TypeSignedIn       Type = "signed_in"
	TypeSignedOut      Type = "signed_out"
	TypeUserUpdated    Type = "user_updated"
	TypeTokenRefreshed Type = "token_refreshed"
)

type Event struct {
	Type   Type   `json:"type"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

type Bus struct {
	client *goredis.Client
}

func NewBus(client *goredis.Client) *Bus {
	return &Bus{client: client}
}

func (b *Bus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	if err := b.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("events: publish: %w", err)
	}
	return nil
}

// Subscription delivers decoded auth events until closed.
type Subscription struct {
	pubsub *goredis.PubSub
	events chan Event
}

func (b *Bus) Subscribe(ctx context.Context) *Subscription {
	pubsub := b.client.Subscribe(ctx, Channel)

	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan Event, 16),
	}

	go func() {
		defer close(sub.events)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("dropping malformed auth event", map[string]any{
					"error": err.Error(),
				})
				continue
			}
			sub.events <- ev
		}
	}()

	return sub
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close tears the subscription down; Events() drains and closes.
func (s *Subscription) Close() error {
	return s.pubsub.Close()
}
