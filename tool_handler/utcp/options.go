package utcp

import (
	"context"

	toolhandler "github.com/w-h-a/librarian/tool_handler"
)

type callerKey struct{}

// WithCaller sets the client used to reach the remote tool. A go-utcp
// client satisfies Caller.
func WithCaller(c Caller) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, callerKey{}, c)
	}
}

func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

type remoteNameKey struct{}

// WithRemoteName is the tool name as the remote provider knows it. It
// defaults to the spec name.
func WithRemoteName(name string) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, remoteNameKey{}, name)
	}
}

func RemoteNameFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(remoteNameKey{}).(string)
	return name, ok
}

type specKey struct{}

func WithToolSpec(spec toolhandler.ToolSpec) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, specKey{}, spec)
	}
}

func ToolSpecFrom(ctx context.Context) (toolhandler.ToolSpec, bool) {
	spec, ok := ctx.Value(specKey{}).(toolhandler.ToolSpec)
	return spec, ok
}
