package embedder

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Loader is implemented by embedders with an expensive one-time load that
// callers may want to force during startup.
type Loader interface {
	EnsureModel(ctx context.Context) error
}
