package books

import (
	"context"
	"fmt"

	toolhandler "github.com/w-h-a/librarian/tool_handler"
	getsafe "github.com/w-h-a/librarian/util/get_safe"
)

type recommendAuthorToolHandler struct {
	base
}

func (th *recommendAuthorToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        RecommendAuthor,
		Description: "Recomienda libros de autores similares: mismo género, diferente autor. Úsala para \"algo similar a [autor]\" o \"autores como [autor]\".",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"author_name": map[string]any{
					"type":        "string",
					"description": "Nombre del autor de referencia.",
				},
			},
			"required": []any{"author_name"},
		},
		Examples: []map[string]any{
			{"author_name": "Isabel Allende"},
		},
	}
}

func (th *recommendAuthorToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	if _, ok := req.Arguments["author_name"]; !ok {
		return toolhandler.ToolResponse{}, fmt.Errorf("missing 'author_name' argument")
	}

	books, err := th.engine.RecommendByAuthor(ctx, getsafe.String(req.Arguments, "author_name"), th.limit)

	return respond(RecommendAuthor, books, err)
}

func NewRecommendByAuthor(opts ...toolhandler.Option) toolhandler.ToolHandler {
	return &recommendAuthorToolHandler{base: newBase(opts...)}
}
