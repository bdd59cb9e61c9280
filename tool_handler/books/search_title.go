package books

import (
	"context"
	"fmt"

	toolhandler "github.com/w-h-a/librarian/tool_handler"
	getsafe "github.com/w-h-a/librarian/util/get_safe"
)

type searchTitleToolHandler struct {
	base
}

func (th *searchTitleToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        SearchByTitle,
		Description: "Busca un libro específico por su título. Devuelve el libro si existe o null si no se encuentra.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Título del libro a buscar.",
				},
			},
			"required": []any{"title"},
		},
		Examples: []map[string]any{
			{"title": "Cien años de soledad"},
		},
	}
}

func (th *searchTitleToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	if _, ok := req.Arguments["title"]; !ok {
		return toolhandler.ToolResponse{}, fmt.Errorf("missing 'title' argument")
	}

	book, err := th.engine.SearchTitle(ctx, getsafe.String(req.Arguments, "title"))

	return respond(SearchByTitle, book, err)
}

func NewSearchByTitle(opts ...toolhandler.Option) toolhandler.ToolHandler {
	return &searchTitleToolHandler{base: newBase(opts...)}
}
