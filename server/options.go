package server

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Address         string
	ShutdownTimeout time.Duration
	Context         context.Context
}

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = d
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Address:         ":8765",
		ShutdownTimeout: 10 * time.Second,
		Context:         context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}
