package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/librarian/generator"
)

const completionReply = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1,
	"model": "gpt-4o-mini",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "Novela"}, "finish_reason": "stop"}]
}`

func TestGenerateSendsExplicitZeroTemperature(t *testing.T) {
	body := map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionReply))
	}))
	defer srv.Close()

	g := NewGenerator(
		generator.WithApiKey("test"),
		generator.WithModel("gpt-4o-mini"),
		generator.WithBaseURL(srv.URL+"/v1"),
		generator.WithTemperature(0),
	)

	out, err := g.Generate(context.Background(), "género de Rayuela")
	require.NoError(t, err)
	assert.Equal(t, "Novela", out)

	temp, ok := body["temperature"]
	require.True(t, ok)
	assert.Less(t, temp.(float64), 1e-6)
}

func TestTemperature(t *testing.T) {
	assert.Greater(t, temperature(0), float32(0))
	assert.Equal(t, float32(0.4), temperature(0.4))
}
