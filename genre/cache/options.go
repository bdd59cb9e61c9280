package cache

import (
	"context"
	"time"

	"github.com/w-h-a/librarian/genre"
)

type inferrerKey struct{}

func WithInferrer(inf genre.Inferrer) genre.Option {
	return func(o *genre.Options) {
		o.Context = context.WithValue(o.Context, inferrerKey{}, inf)
	}
}

func InferrerFrom(ctx context.Context) (genre.Inferrer, bool) {
	inf, ok := ctx.Value(inferrerKey{}).(genre.Inferrer)
	return inf, ok
}

type ttlKey struct{}

func WithTTL(ttl time.Duration) genre.Option {
	return func(o *genre.Options) {
		o.Context = context.WithValue(o.Context, ttlKey{}, ttl)
	}
}

func TTLFrom(ctx context.Context) (time.Duration, bool) {
	ttl, ok := ctx.Value(ttlKey{}).(time.Duration)
	return ttl, ok
}
