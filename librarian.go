package librarian

import (
	"context"
	"time"

	"github.com/w-h-a/librarian/conversation"
	"github.com/w-h-a/librarian/generator"
	"github.com/w-h-a/librarian/internal/service/agent"
	"github.com/w-h-a/librarian/internal/service/session"
	toolhandler "github.com/w-h-a/librarian/tool_handler"
)

type Librarian struct {
	agent   *agent.Service
	session *session.Service
	history conversation.History
	window  time.Duration
}

// Open starts a session with a fresh id.
func (l *Librarian) Open(ctx context.Context) (string, error) {
	return l.CreateSession(ctx, "")
}

func (l *Librarian) CreateSession(ctx context.Context, sessionId string) (string, error) {
	s, err := l.session.CreateSession(ctx, sessionId)
	if err != nil {
		return "", err
	}
	return s.ID(), nil
}

func (l *Librarian) ListSessionIds(ctx context.Context) []string {
	return l.session.ListSessionIds(ctx)
}

func (l *Librarian) End(ctx context.Context, sessionId string) {
	l.session.DeleteSession(ctx, sessionId)
}

// Recent returns the session's turns inside the history window.
func (l *Librarian) Recent(ctx context.Context, sessionId string) ([]conversation.Turn, error) {
	s, err := l.session.GetSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return s.Recent(ctx, l.window)
}

func (l *Librarian) Respond(ctx context.Context, sessionId string, userInput string) (string, error) {
	return l.agent.Respond(ctx, sessionId, userInput)
}

// Ask answers in sessionId, opening the session first when needed, and
// returns the session id alongside the answer.
func (l *Librarian) Ask(ctx context.Context, sessionId string, userInput string) (string, string, error) {
	id, err := l.CreateSession(ctx, sessionId)
	if err != nil {
		return "", "", err
	}

	answer, err := l.agent.Respond(ctx, id, userInput)
	if err != nil {
		return id, "", err
	}

	return id, answer, nil
}

// Tools is the registered tool catalog.
func (l *Librarian) Tools() *agent.ToolCatalog {
	return l.agent.Catalog()
}

func (l *Librarian) Close() error {
	if l.history == nil {
		return nil
	}
	return l.history.Close()
}

func New(
	caller generator.ToolCaller,
	formatter generator.Generator,
	history conversation.History,
	toolHandlers []toolhandler.ToolHandler,
	window time.Duration,
) *Librarian {
	agent := agent.New(
		caller,
		formatter,
		history,
		toolHandlers,
		window,
	)

	session := session.New(
		history,
	)

	if window <= 0 {
		window = 3 * time.Minute
	}

	return &Librarian{
		agent:   agent,
		session: session,
		history: history,
		window:  window,
	}
}
