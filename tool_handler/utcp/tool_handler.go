// Package utcp forwards agent tool calls to tools served by another UTCP
// endpoint, such as a second librarian's /v1/tools route.
package utcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	toolhandler "github.com/w-h-a/librarian/tool_handler"
)

type Caller interface {
	CallTool(ctx context.Context, toolName string, args map[string]any) (any, error)
}

type remoteToolHandler struct {
	options    toolhandler.Options
	caller     Caller
	remoteName string
	spec       toolhandler.ToolSpec
}

func (th *remoteToolHandler) Spec() toolhandler.ToolSpec {
	return th.spec
}

func (th *remoteToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	raw, err := th.caller.CallTool(ctx, th.remoteName, req.Arguments)
	if err != nil {
		if unavailable(err) {
			slog.WarnContext(ctx, "remote catalog unavailable", "tool", th.remoteName, "error", err)
			return th.response(toolhandler.UnavailableContent, true), nil
		}
		return toolhandler.ToolResponse{}, fmt.Errorf("remote tool %s: %w", th.remoteName, err)
	}

	content, err := encode(raw)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	return th.response(content, false), nil
}

func (th *remoteToolHandler) response(content string, down bool) toolhandler.ToolResponse {
	meta := map[string]string{
		"source": "utcp",
		"tool":   th.remoteName,
	}
	if down {
		meta[toolhandler.MetaUnavailable] = "true"
	}
	return toolhandler.ToolResponse{Content: content, Metadata: meta}
}

// encode renders a remote result as tool content. A librarian replies with
// {"result": ...}; only the inner value reaches the agent.
func encode(raw any) (string, error) {
	if m, ok := raw.(map[string]any); ok {
		if inner, ok := m["result"]; ok && len(m) == 1 {
			raw = inner
		}
	}

	if s, ok := raw.(string); ok {
		return s, nil
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encode remote result: %w", err)
	}

	return string(b), nil
}

func unavailable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "503") || strings.Contains(msg, "search unavailable")
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &remoteToolHandler{
		options: options,
	}

	caller, ok := CallerFrom(options.Context)
	if !ok || caller == nil {
		detail := "remote tool requires a utcp caller"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}
	th.caller = caller

	if spec, ok := ToolSpecFrom(options.Context); ok {
		th.spec = spec
	}

	th.remoteName = th.spec.Name
	if name, ok := RemoteNameFrom(options.Context); ok && len(name) > 0 {
		th.remoteName = name
	}

	return th
}
