// Package books exposes the retrieval engine as agent tools. Every handler
// answers in the book wire shape: an object or null for a single book, an
// array otherwise.
package books

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/w-h-a/librarian/catalog"
	"github.com/w-h-a/librarian/retrieval"
	toolhandler "github.com/w-h-a/librarian/tool_handler"
)

const (
	SearchByTitle    = "search_book_by_title"
	SearchByCriteria = "search_books_by_criteria"
	RecommendSimilar = "recommend_similar_books"
	RecommendAuthor  = "recommend_by_author"
)

type Engine interface {
	SearchTitle(ctx context.Context, title string) (*catalog.Book, error)
	SearchCriteria(ctx context.Context, criteria retrieval.Criteria, limit int) ([]catalog.Book, error)
	RecommendSimilarBook(ctx context.Context, reference string, limit int) ([]catalog.Book, error)
	RecommendByAuthor(ctx context.Context, author string, limit int) ([]catalog.Book, error)
}

// NewToolHandlers returns the four catalog tools in menu order.
func NewToolHandlers(opts ...toolhandler.Option) []toolhandler.ToolHandler {
	return []toolhandler.ToolHandler{
		NewSearchByTitle(opts...),
		NewSearchByCriteria(opts...),
		NewRecommendSimilar(opts...),
		NewRecommendByAuthor(opts...),
	}
}

type base struct {
	options toolhandler.Options
	engine  Engine
	limit   int
}

func newBase(opts ...toolhandler.Option) base {
	options := toolhandler.NewOptions(opts...)

	engine, ok := EngineFrom(options.Context)
	if !ok || engine == nil {
		detail := "catalog tool requires a retrieval engine"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	limit := retrieval.DefaultLimit
	if n, ok := LimitFrom(options.Context); ok && n > 0 {
		limit = n
	}

	return base{
		options: options,
		engine:  engine,
		limit:   limit,
	}
}

// respond encodes v, turning an unavailable search into a flagged response
// instead of an error so the control loop can carry on.
func respond(tool string, v any, err error) (toolhandler.ToolResponse, error) {
	if errors.Is(err, retrieval.ErrSearchUnavailable) {
		return toolhandler.ToolResponse{
			Content: toolhandler.UnavailableContent,
			Metadata: map[string]string{
				"source":                    "catalog",
				"tool":                      tool,
				toolhandler.MetaUnavailable: "true",
			},
		}, nil
	}

	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	b, err := json.Marshal(v)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	return toolhandler.ToolResponse{
		Content: string(b),
		Metadata: map[string]string{
			"source": "catalog",
			"tool":   tool,
		},
	}, nil
}
