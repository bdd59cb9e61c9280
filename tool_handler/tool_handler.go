package toolhandler

import "context"

const (
	// MetaUnavailable marks a response produced while the catalog search
	// could not be reached.
	MetaUnavailable = "unavailable"

	// UnavailableContent is the body of a response flagged MetaUnavailable.
	UnavailableContent = `{"error":"search unavailable"}`
)

type ToolHandler interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

type ToolRequest struct {
	SessionId string         `json:"session_id,omitempty"`
	Arguments map[string]any `json:"arguments"`
}

type ToolResponse struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Unavailable reports whether the response was flagged with MetaUnavailable.
func (r ToolResponse) Unavailable() bool {
	return r.Metadata[MetaUnavailable] == "true"
}
