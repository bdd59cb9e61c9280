package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/librarian/conversation"
)

var ErrNotFound = errors.New("session not found")

type Service struct {
	history  conversation.History
	sessions map[string]*Session
	mtx      sync.RWMutex
}

// CreateSession returns the live session with id, starting one when needed.
// A blank id gets a fresh uuid.
func (s *Service) CreateSession(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if len(id) == 0 {
		id = uuid.NewString()
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if session, ok := s.sessions[id]; ok {
		return session, nil
	}

	session := &Session{
		history:   s.history,
		id:        id,
		startedAt: time.Now(),
	}

	s.sessions[id] = session

	return session, nil
}

// ListSessionIds returns live sessions, oldest first.
func (s *Service) ListSessionIds(ctx context.Context) []string {
	s.mtx.RLock()
	live := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		live = append(live, session)
	}
	s.mtx.RUnlock()

	sort.Slice(live, func(i, j int) bool {
		if live[i].startedAt.Equal(live[j].startedAt) {
			return live[i].id < live[j].id
		}
		return live[i].startedAt.Before(live[j].startedAt)
	})

	ids := make([]string, 0, len(live))
	for _, session := range live {
		ids = append(ids, session.id)
	}
	return ids
}

func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return session, nil
}

// DeleteSession forgets the live session. Stored turns age out of the
// history window on their own.
func (s *Service) DeleteSession(ctx context.Context, id string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.sessions, id)
}

func New(
	history conversation.History,
) *Service {
	return &Service{
		history:  history,
		sessions: map[string]*Session{},
		mtx:      sync.RWMutex{},
	}
}
