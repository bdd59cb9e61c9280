package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/w-h-a/librarian/generator"
	"github.com/w-h-a/librarian/genre"
)

type llmInferrer struct {
	options   genre.Options
	generator generator.Generator
}

func (i *llmInferrer) Infer(ctx context.Context, subject string, role genre.Role) ([]string, error) {
	subject = strings.TrimSpace(subject)
	if len(subject) == 0 {
		return nil, genre.ErrUndetermined
	}

	var prompt string
	switch role {
	case genre.RoleAuthor:
		prompt = fmt.Sprintf(authorPrompt, subject, subject)
	default:
		prompt = fmt.Sprintf(bookPrompt, subject, subject)
	}

	reply, err := i.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("genre inference: %w", err)
	}

	genres := genre.Sanitize(reply)
	if len(genres) == 0 {
		slog.WarnContext(ctx, "discarding genre inference reply", "subject", subject, "role", role, "reply", reply)
		return nil, genre.ErrUndetermined
	}

	slog.InfoContext(ctx, "inferred genres", "subject", subject, "role", role, "genres", genres)

	return genres, nil
}

func NewInferrer(opts ...genre.Option) genre.Inferrer {
	options := genre.NewOptions(opts...)

	g, ok := GeneratorFrom(options.Context)
	if !ok || g == nil {
		detail := "llm genre inferrer requires a generator"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	return &llmInferrer{
		options:   options,
		generator: g,
	}
}
