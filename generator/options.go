package generator

import "context"

type Option func(*Options)

type Options struct {
	ApiKey       string
	Model        string
	BaseURL      string
	PromptPrefix string
	MaxTokens    int
	Temperature  *float64
	Context      context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

func WithPromptPrefix(prefix string) Option {
	return func(o *Options) {
		o.PromptPrefix = prefix
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets sampling temperature, zero included. Without it the
// provider default applies.
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxTokens: 1024,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
