package session

import (
	"context"
	"time"

	"github.com/w-h-a/librarian/conversation"
)

type Session struct {
	history   conversation.History
	id        string
	startedAt time.Time
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Recent returns this session's turns inside the window.
func (s *Session) Recent(ctx context.Context, window time.Duration) ([]conversation.Turn, error) {
	if s.history == nil {
		return []conversation.Turn{}, nil
	}
	return s.history.Recent(ctx, s.id, window)
}
