package memory

import (
	"context"
	"sync"
	"time"

	"github.com/w-h-a/librarian/conversation"
)

type memoryHistory struct {
	options conversation.Options
	turns   map[string][]conversation.Turn
	mtx     sync.RWMutex
}

func (h *memoryHistory) Append(ctx context.Context, sessionId string, role conversation.Role, text string) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.turns[sessionId] = append(h.turns[sessionId], conversation.Turn{
		Role:      role,
		Text:      text,
		Timestamp: h.options.Now(),
	})

	return nil
}

func (h *memoryHistory) Recent(ctx context.Context, sessionId string, window time.Duration) ([]conversation.Turn, error) {
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	cutoff := h.options.Now().Add(-window)

	out := []conversation.Turn{}
	for _, t := range h.turns[sessionId] {
		if !t.Timestamp.Before(cutoff) {
			out = append(out, t)
		}
	}

	return out, nil
}

func (h *memoryHistory) Close() error {
	return nil
}

func NewHistory(opts ...conversation.Option) conversation.History {
	options := conversation.NewOptions(opts...)

	return &memoryHistory{
		options: options,
		turns:   map[string][]conversation.Turn{},
	}
}
