package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/w-h-a/librarian/catalog"
	toolhandler "github.com/w-h-a/librarian/tool_handler"
	"github.com/w-h-a/librarian/tool_handler/books"
	getsafe "github.com/w-h-a/librarian/util/get_safe"
)

const utcpVersion = "1.0"

type Tools interface {
	ListSpecs() []toolhandler.ToolSpec
	Get(name string) (toolhandler.ToolHandler, toolhandler.ToolSpec, bool)
}

// toolsHandler serves the catalog tools over UTCP's HTTP transport. An empty
// body is discovery. Otherwise the body names the tool, or is the bare
// argument object and the tool is picked by its argument signature.
type toolsHandler struct {
	tools Tools
}

func (h *toolsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	if len(raw) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"version": utcpVersion,
			"tools":   h.manual(),
		})
		return
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	name, args := resolve(body)
	if len(name) == 0 {
		writeError(w, http.StatusBadRequest, "unknown tool signature")
		return
	}

	th, spec, ok := h.tools.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown tool "+name)
		return
	}

	slog.InfoContext(r.Context(), "executing remote tool call", "tool", spec.Name)

	rsp, err := th.Invoke(r.Context(), toolhandler.ToolRequest{Arguments: args})
	if errors.Is(err, catalog.ErrUnavailable) {
		slog.ErrorContext(r.Context(), "catalog unavailable", "tool", spec.Name, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if rsp.Unavailable() {
		writeError(w, http.StatusServiceUnavailable, "search unavailable")
		return
	}

	var result any = rsp.Content
	if json.Valid([]byte(rsp.Content)) {
		result = json.RawMessage(rsp.Content)
	}

	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (h *toolsHandler) manual() []map[string]any {
	specs := h.tools.ListSpecs()

	out := make([]map[string]any, 0, len(specs))
	for _, spec := range specs {
		out = append(out, map[string]any{
			"name":        spec.Name,
			"description": spec.Description,
			"inputs":      spec.InputSchema,
		})
	}

	return out
}

// resolve returns the tool name and its arguments.
func resolve(body map[string]any) (string, map[string]any) {
	if name := getsafe.String(body, "tool"); len(name) > 0 {
		args := getsafe.Metadata(body, "arguments")
		if args == nil {
			args = map[string]any{}
		}
		return name, args
	}

	switch {
	case has(body, "title"):
		return books.SearchByTitle, body
	case has(body, "reference"):
		return books.RecommendSimilar, body
	case has(body, "author_name"):
		return books.RecommendAuthor, body
	case has(body, "author"), has(body, "genre"), has(body, "query"):
		return books.SearchByCriteria, body
	}

	return "", nil
}

func has(body map[string]any, key string) bool {
	_, ok := body[key]
	return ok
}

func NewToolsHandler(tools Tools) *toolsHandler {
	if tools == nil {
		detail := "tools handler requires a tool catalog"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}
	return &toolsHandler{tools: tools}
}
