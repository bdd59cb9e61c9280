package books

import (
	"context"
	"fmt"

	toolhandler "github.com/w-h-a/librarian/tool_handler"
	getsafe "github.com/w-h-a/librarian/util/get_safe"
)

type recommendSimilarToolHandler struct {
	base
}

func (th *recommendSimilarToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        RecommendSimilar,
		Description: "Recomienda libros similares a un libro específico (mismo género, cualquier autor). Si el libro no está en el catálogo, infiere su género.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"reference": map[string]any{
					"type":        "string",
					"description": "Título o descripción del libro de referencia.",
				},
			},
			"required": []any{"reference"},
		},
		Examples: []map[string]any{
			{"reference": "Harry Potter"},
		},
	}
}

func (th *recommendSimilarToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	if _, ok := req.Arguments["reference"]; !ok {
		return toolhandler.ToolResponse{}, fmt.Errorf("missing 'reference' argument")
	}

	books, err := th.engine.RecommendSimilarBook(ctx, getsafe.String(req.Arguments, "reference"), th.limit)

	return respond(RecommendSimilar, books, err)
}

func NewRecommendSimilar(opts ...toolhandler.Option) toolhandler.ToolHandler {
	return &recommendSimilarToolHandler{base: newBase(opts...)}
}
