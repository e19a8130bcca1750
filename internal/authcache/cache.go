// Package authcache keeps an in-process mirror of the current session for
// UI code that cannot afford a provider round trip per read. The mirror is
// advisory only: route guards remain the authoritative check.
package authcache

import (
	"context"
	"sync"

	"github.com/adhikari-dikshant/kanban/internal/auth"
	"github.com/adhikari-dikshant/kanban/internal/events"
	"github.com/adhikari-dikshant/kanban/internal/identity"
	"github.com/adhikari-dikshant/kanban/internal/logger"
)

// State is a point-in-time snapshot of the mirror.
type State struct {
	User            *identity.User
	IsAuthenticated bool
	IsAdmin         bool
	IsUser          bool
}

type Cache struct {
	mu   sync.RWMutex
	user *identity.User

	provider identity.Provider
	bus      *events.Bus
	sub      *events.Subscription
	done     chan struct{}
}

// New seeds the mirror from the current session (if an access token is
// available) and subscribes to auth-change events. Call Close to stop the
// subscription; events arriving afterwards are discarded, never applied to
// a torn-down cache.
func New(
	ctx context.Context,
	provider identity.Provider,
	bus *events.Bus,
	accessToken string,
) *Cache {
	c := &Cache{
		provider: provider,
		bus:      bus,
		done:     make(chan struct{}),
	}

	if accessToken != "" {
		user, err := provider.GetUser(ctx, accessToken)
		if err != nil {
			logger.Warn("auth cache seed failed", map[string]any{
				"error": err.Error(),
			})
		} else {
			c.user = user
		}
	}

	c.sub = bus.Subscribe(ctx)
	go c.loop()

	return c
}

func (c *Cache) loop() {
	defer close(c.done)
	for ev := range c.sub.Events() {
		c.apply(ev)
	}
}

func (c *Cache) apply(ev events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case events.TypeSignedOut:
		c.user = nil
	case events.TypeSignedIn, events.TypeUserUpdated, events.TypeTokenRefreshed:
		c.user = &identity.User{
			ID:       ev.UserID,
			Email:    ev.Email,
			Metadata: map[string]any{"role": ev.Role},
		}
	}
}

// Snapshot returns the current mirror state.
func (c *Cache) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	role := auth.ParseRole(c.user.Role())
	return State{
		User:            c.user,
		IsAuthenticated: c.user != nil,
		IsAdmin:         role == auth.RoleAdmin,
		IsUser:          role == auth.RoleUser,
	}
}

// Login applies the user optimistically and persists the role into
// provider metadata. The next published event reconciles the mirror if the
// write failed.
func (c *Cache) Login(ctx context.Context, accessToken string, user *identity.User) error {
	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	_, err := c.provider.UpdateMetadata(ctx, accessToken, map[string]any{
		"role": user.Role(),
	})
	return err
}

// Logout signs the session out at the provider, clears the mirror and
// notifies subscribers.
func (c *Cache) Logout(ctx context.Context, accessToken string) error {
	userID := ""
	c.mu.Lock()
	if c.user != nil {
		userID = c.user.ID
	}
	c.user = nil
	c.mu.Unlock()

	if err := c.provider.SignOut(ctx, accessToken); err != nil {
		return err
	}

	if err := c.bus.Publish(ctx, events.Event{
		Type:   events.TypeSignedOut,
		UserID: userID,
	}); err != nil {
		logger.Warn("signed-out event not published", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

// Close stops the event subscription and waits for the feed goroutine.
func (c *Cache) Close() error {
	err := c.sub.Close()
	<-c.done
	return err
}
