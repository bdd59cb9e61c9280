package cache

import (
	"context"

	"github.com/w-h-a/librarian/embedder"
)

type embedderKey struct{}

// WithEmbedder sets the embedder whose results are cached.
func WithEmbedder(e embedder.Embedder) embedder.Option {
	return func(o *embedder.Options) {
		o.Context = context.WithValue(o.Context, embedderKey{}, e)
	}
}

func EmbedderFrom(ctx context.Context) (embedder.Embedder, bool) {
	e, ok := ctx.Value(embedderKey{}).(embedder.Embedder)
	return e, ok
}

type sizeKey struct{}

func WithSize(n int) embedder.Option {
	return func(o *embedder.Options) {
		o.Context = context.WithValue(o.Context, sizeKey{}, n)
	}
}

func SizeFrom(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(sizeKey{}).(int)
	return n, ok
}
