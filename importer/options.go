package importer

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Shelves  []ShelfRule
	Prune    bool
	Debounce time.Duration
	Context  context.Context
}

// WithShelves replaces the default genre to shelf rules.
func WithShelves(rules []ShelfRule) Option {
	return func(o *Options) {
		o.Shelves = rules
	}
}

// WithPrune deletes catalog books whose ISBN is missing from the import.
func WithPrune(prune bool) Option {
	return func(o *Options) {
		o.Prune = prune
	}
}

func WithDebounce(d time.Duration) Option {
	return func(o *Options) {
		o.Debounce = d
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Shelves:  DefaultShelves(),
		Debounce: 500 * time.Millisecond,
		Context:  context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}
