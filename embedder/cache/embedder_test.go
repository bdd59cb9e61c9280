package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/librarian/embedder"
)

type countingEmbedder struct {
	calls  map[string]int
	err    error
	loaded bool
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls[text]++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text))}, nil
}

func (c *countingEmbedder) EnsureModel(ctx context.Context) error {
	c.loaded = true
	return nil
}

func TestEmbedCachesByText(t *testing.T) {
	inner := &countingEmbedder{calls: map[string]int{}}
	e := NewEmbedder(WithEmbedder(inner), WithSize(2))
	ctx := context.Background()

	for range 3 {
		vec, err := e.Embed(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, []float32{3}, vec)
	}

	assert.Equal(t, 1, inner.calls["abc"])
}

func TestEmbedEvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingEmbedder{calls: map[string]int{}}
	e := NewEmbedder(WithEmbedder(inner), WithSize(2))
	ctx := context.Background()

	e.Embed(ctx, "a")
	e.Embed(ctx, "b")
	e.Embed(ctx, "c")
	e.Embed(ctx, "a")

	assert.Equal(t, 2, inner.calls["a"])
}

func TestEmbedDoesNotCacheErrors(t *testing.T) {
	inner := &countingEmbedder{calls: map[string]int{}, err: errors.New("boom")}
	e := NewEmbedder(WithEmbedder(inner))
	ctx := context.Background()

	_, err := e.Embed(ctx, "a")
	assert.Error(t, err)
	_, err = e.Embed(ctx, "a")
	assert.Error(t, err)

	assert.Equal(t, 2, inner.calls["a"])
}

func TestEnsureModelDelegates(t *testing.T) {
	inner := &countingEmbedder{calls: map[string]int{}}
	e := NewEmbedder(WithEmbedder(inner))

	l, ok := e.(embedder.Loader)
	require.True(t, ok)
	require.NoError(t, l.EnsureModel(context.Background()))
	assert.True(t, inner.loaded)
}
