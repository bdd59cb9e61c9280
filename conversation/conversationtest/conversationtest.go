// Package conversationtest holds the behaviour every History provider must
// share.
package conversationtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/librarian/conversation"
)

// Clock is a settable time source for WithClock.
type Clock struct {
	mtx sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now = c.now.Add(d)
}

// Run exercises a provider. newHistory must build an empty store driven by
// the given clock.
func Run(t *testing.T, newHistory func(t *testing.T, clock *Clock) conversation.History) {
	ctx := context.Background()

	t.Run("recent returns turns in order", func(t *testing.T) {
		clock := NewClock()
		h := newHistory(t, clock)

		require.NoError(t, h.Append(ctx, "s1", conversation.RoleHuman, "hola"))
		clock.Advance(time.Second)
		require.NoError(t, h.Append(ctx, "s1", conversation.RoleAgent, "hola, ¿qué buscas?"))

		turns, err := h.Recent(ctx, "s1", 3*time.Minute)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, conversation.RoleHuman, turns[0].Role)
		assert.Equal(t, "hola", turns[0].Text)
		assert.Equal(t, conversation.RoleAgent, turns[1].Role)
		assert.True(t, turns[0].Timestamp.Equal(clock.Now().Add(-time.Second)))
	})

	t.Run("window drops old turns", func(t *testing.T) {
		clock := NewClock()
		h := newHistory(t, clock)

		require.NoError(t, h.Append(ctx, "s1", conversation.RoleHuman, "viejo"))
		clock.Advance(5 * time.Minute)
		require.NoError(t, h.Append(ctx, "s1", conversation.RoleHuman, "nuevo"))

		turns, err := h.Recent(ctx, "s1", 3*time.Minute)
		require.NoError(t, err)
		require.Len(t, turns, 1)
		assert.Equal(t, "nuevo", turns[0].Text)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		clock := NewClock()
		h := newHistory(t, clock)

		require.NoError(t, h.Append(ctx, "s1", conversation.RoleHuman, "uno"))
		require.NoError(t, h.Append(ctx, "s2", conversation.RoleHuman, "dos"))

		turns, err := h.Recent(ctx, "s2", time.Minute)
		require.NoError(t, err)
		require.Len(t, turns, 1)
		assert.Equal(t, "dos", turns[0].Text)

		turns, err = h.Recent(ctx, "nadie", time.Minute)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})
}
