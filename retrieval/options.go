package retrieval

import (
	"context"
	"time"

	"github.com/w-h-a/librarian/genre"
)

type Option func(*Options)

type Options struct {
	OverFetch         int
	Timeout           time.Duration
	ReferenceDistance float64
	Inferrer          genre.Inferrer
	Context           context.Context
}

// WithOverFetch sets how many raw neighbors are pulled before filtering by
// eligible ids on stores without native filtered search.
func WithOverFetch(n int) Option {
	return func(o *Options) {
		o.OverFetch = n
	}
}

// WithTimeout bounds each embedding and nearest-neighbor step.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithReferenceDistance is the largest cosine distance at which the nearest
// book is taken to be the reference of a recommendation. Non-positive
// accepts any nearest book.
func WithReferenceDistance(d float64) Option {
	return func(o *Options) {
		o.ReferenceDistance = d
	}
}

func WithInferrer(inf genre.Inferrer) Option {
	return func(o *Options) {
		o.Inferrer = inf
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		OverFetch:         50,
		Timeout:           5 * time.Second,
		ReferenceDistance: 0.45,
		Context:           context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
