package toolprovider

import (
	"context"

	toolhandler "github.com/w-h-a/librarian/tool_handler"
)

// ToolProvider discovers tools hosted elsewhere and wraps each one as a
// local ToolHandler.
type ToolProvider interface {
	Load(ctx context.Context, query string, limit int) ([]toolhandler.ToolHandler, error)
}
