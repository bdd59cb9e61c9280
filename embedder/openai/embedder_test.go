package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/librarian/embedder"
)

func TestEmbedSendsModelAndInput(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"m"}`))
	}))
	defer srv.Close()

	e := NewEmbedder(
		embedder.WithApiKey("k"),
		embedder.WithModel("text-embedding-3-small"),
		WithBaseURL(srv.URL),
	)

	vec, err := e.Embed(context.Background(), "Cien años de soledad")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "text-embedding-3-small", got["model"])
	assert.Equal(t, []any{"Cien años de soledad"}, got["input"])
}

func TestEmbedEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[],"model":"m"}`))
	}))
	defer srv.Close()

	e := NewEmbedder(embedder.WithModel("m"), WithBaseURL(srv.URL))

	_, err := e.Embed(context.Background(), "x")
	assert.Error(t, err)
}
