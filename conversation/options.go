package conversation

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Location string
	MaxConns int
	Now      func() time.Time
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

// WithClock replaces time.Now for stamping and windowing turns.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxConns: 2,
		Now:      time.Now,
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
