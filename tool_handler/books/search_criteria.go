package books

import (
	"context"

	"github.com/w-h-a/librarian/retrieval"
	toolhandler "github.com/w-h-a/librarian/tool_handler"
	getsafe "github.com/w-h-a/librarian/util/get_safe"
)

type searchCriteriaToolHandler struct {
	base
}

func (th *searchCriteriaToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        SearchByCriteria,
		Description: "Busca libros por autor, género o consulta de texto libre. Devuelve hasta 3 libros.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"author": map[string]any{
					"type":        "string",
					"description": "Nombre del autor (opcional).",
				},
				"genre": map[string]any{
					"type":        "string",
					"description": "Género del libro (opcional).",
				},
				"query": map[string]any{
					"type":        "string",
					"description": "Consulta de texto libre sobre el tema o la sinopsis (opcional).",
				},
			},
		},
		Examples: []map[string]any{
			{"author": "Isabel Allende"},
			{"query": "libros de dragones"},
		},
	}
}

func (th *searchCriteriaToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	criteria := retrieval.Criteria{
		Author: getsafe.String(req.Arguments, "author"),
		Genre:  getsafe.String(req.Arguments, "genre"),
		Query:  getsafe.String(req.Arguments, "query"),
	}

	books, err := th.engine.SearchCriteria(ctx, criteria, getsafe.Int(req.Arguments, "limit", th.limit))

	return respond(SearchByCriteria, books, err)
}

func NewSearchByCriteria(opts ...toolhandler.Option) toolhandler.ToolHandler {
	return &searchCriteriaToolHandler{base: newBase(opts...)}
}
