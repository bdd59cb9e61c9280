package books

import (
	"context"

	toolhandler "github.com/w-h-a/librarian/tool_handler"
)

type engineKey struct{}

func WithEngine(e Engine) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, engineKey{}, e)
	}
}

func EngineFrom(ctx context.Context) (Engine, bool) {
	e, ok := ctx.Value(engineKey{}).(Engine)
	return e, ok
}

type limitKey struct{}

// WithLimit caps list results. Defaults to 3.
func WithLimit(n int) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, limitKey{}, n)
	}
}

func LimitFrom(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(limitKey{}).(int)
	return n, ok
}
