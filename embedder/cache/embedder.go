package cache

import (
	"context"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/w-h-a/librarian/embedder"
)

const (
	defaultSize = 1024
)

// cacheEmbedder memoizes vectors by exact input text. Query texts repeat a
// lot in conversation ("{author} autor", follow-up references).
type cacheEmbedder struct {
	options embedder.Options
	inner   embedder.Embedder
	cache   *lru.Cache[string, []float32]
}

func (e *cacheEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(text); ok {
		return vec, nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Add(text, vec)

	return vec, nil
}

func (e *cacheEmbedder) EnsureModel(ctx context.Context) error {
	if l, ok := e.inner.(embedder.Loader); ok {
		return l.EnsureModel(ctx)
	}
	return nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	inner, ok := EmbedderFrom(options.Context)
	if !ok || inner == nil {
		detail := "cache embedder requires an inner embedder"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	size := defaultSize
	if n, ok := SizeFrom(options.Context); ok && n > 0 {
		size = n
	}

	cache, err := lru.New[string, []float32](size)
	if err != nil {
		detail := "failed to create lru for cache embedder"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	return &cacheEmbedder{
		options: options,
		inner:   inner,
		cache:   cache,
	}
}
