package speech

import (
	"context"
	"time"

	"github.com/w-h-a/librarian/generator"
)

type Option func(*Options)

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Generator generator.Generator
	Context   context.Context
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithGenerator sets the model used to pick expressions or animations.
func WithGenerator(g generator.Generator) Option {
	return func(o *Options) {
		o.Generator = g
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Timeout: 30 * time.Second,
		Context: context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}
