package utcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	toolhandler "github.com/w-h-a/librarian/tool_handler"
)

type fakeCaller struct {
	name   string
	args   map[string]any
	result any
	err    error
}

func (c *fakeCaller) CallTool(ctx context.Context, toolName string, args map[string]any) (any, error) {
	c.name = toolName
	c.args = args
	return c.result, c.err
}

func newHandler(c *fakeCaller) toolhandler.ToolHandler {
	return NewToolHandler(
		WithCaller(c),
		WithRemoteName("sucursal.search_book_by_title"),
		WithToolSpec(toolhandler.ToolSpec{Name: "sucursal_search_book_by_title"}),
	)
}

func TestInvokeUnwrapsLibrarianResult(t *testing.T) {
	c := &fakeCaller{result: map[string]any{
		"result": map[string]any{"titulo": "Rayuela"},
	}}
	th := newHandler(c)

	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{Arguments: map[string]any{"title": "rayuela"}})
	require.NoError(t, err)

	assert.Equal(t, "sucursal.search_book_by_title", c.name)
	assert.Equal(t, "rayuela", c.args["title"])
	assert.JSONEq(t, `{"titulo":"Rayuela"}`, rsp.Content)
	assert.Equal(t, "utcp", rsp.Metadata["source"])
	assert.False(t, rsp.Unavailable())
	assert.Equal(t, "sucursal_search_book_by_title", th.Spec().Name)
}

func TestInvokePassesStringsThrough(t *testing.T) {
	th := newHandler(&fakeCaller{result: "null"})

	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{})
	require.NoError(t, err)
	assert.Equal(t, "null", rsp.Content)
}

func TestInvokeFlagsUnavailableRemote(t *testing.T) {
	th := newHandler(&fakeCaller{err: errors.New("unexpected status 503: search unavailable")})

	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{})
	require.NoError(t, err)
	assert.True(t, rsp.Unavailable())
	assert.Equal(t, toolhandler.UnavailableContent, rsp.Content)
}

func TestInvokeWrapsOtherErrors(t *testing.T) {
	boom := errors.New("connection refused")
	th := newHandler(&fakeCaller{err: boom})

	_, err := th.Invoke(context.Background(), toolhandler.ToolRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRemoteNameDefaultsToSpecName(t *testing.T) {
	c := &fakeCaller{result: []any{}}
	th := NewToolHandler(
		WithCaller(c),
		WithToolSpec(toolhandler.ToolSpec{Name: "horario"}),
	)

	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{})
	require.NoError(t, err)
	assert.Equal(t, "horario", c.name)
	assert.Equal(t, "[]", rsp.Content)
}

func TestNewToolHandlerRequiresCaller(t *testing.T) {
	assert.Panics(t, func() {
		NewToolHandler(WithToolSpec(toolhandler.ToolSpec{Name: "x"}))
	})
}
