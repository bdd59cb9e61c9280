package speech

import (
	"context"

	"github.com/w-h-a/librarian/conversation"
)

const (
	DefaultIntonation = "neutral"
	IdleSequence      = "idle"
)

type Viseme struct {
	Visema string  `json:"visema"`
	Tiempo float64 `json:"tiempo"`
}

type Expression struct {
	Expresion  string  `json:"expresion"`
	Tiempo     float64 `json:"tiempo"`
	Intensidad float64 `json:"intensidad"`
}

type Sequence struct {
	Name        string `json:"sequence"`
	Description string `json:"description"`
}

// Animation is the sequence payload of the animation service, passed
// through to the client untouched.
type Animation map[string]any

// Speaker turns text into speech and returns where the audio can be fetched.
type Speaker interface {
	Speak(ctx context.Context, text string, intonation string) (string, error)
}

// Visemer aligns mouth shapes to synthesized audio.
type Visemer interface {
	Visemes(ctx context.Context, text string, audioURL string) ([]Viseme, error)
}

type Expressor interface {
	Expressions(ctx context.Context, text string) ([]Expression, error)
}

type Animator interface {
	Animate(ctx context.Context, text string, history []conversation.Turn) (Animation, error)
}
