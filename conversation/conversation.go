package conversation

import (
	"context"
	"time"
)

type Role string

const (
	RoleHuman Role = "human"
	RoleAgent Role = "agent"
)

type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// History is an append-only log of turns per session.
type History interface {
	Append(ctx context.Context, sessionId string, role Role, text string) error
	Recent(ctx context.Context, sessionId string, window time.Duration) ([]Turn, error)
	Close() error
}
