package llm

import (
	"context"

	"github.com/w-h-a/librarian/generator"
	"github.com/w-h-a/librarian/genre"
)

type generatorKey struct{}

func WithGenerator(g generator.Generator) genre.Option {
	return func(o *genre.Options) {
		o.Context = context.WithValue(o.Context, generatorKey{}, g)
	}
}

func GeneratorFrom(ctx context.Context) (generator.Generator, bool) {
	g, ok := ctx.Value(generatorKey{}).(generator.Generator)
	return g, ok
}
