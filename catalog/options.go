package catalog

import "context"

type Option func(*Options)

type Options struct {
	Location string
	MaxConns int
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithMaxConns(n int) Option {
	return func(o *Options) {
		o.MaxConns = n
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxConns: 4,
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
