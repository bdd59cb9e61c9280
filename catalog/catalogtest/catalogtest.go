// Package catalogtest holds a behavioural suite shared by every Catalog
// implementation.
package catalogtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/librarian/catalog"
)

var Books = []catalog.Book{
	{Title: "Cien años de soledad", Author: "Gabriel García Márquez", Genre: "Realismo mágico", Isbn: "1", Available: true, Shelf: "Ficción"},
	{Title: "La casa de los espíritus", Author: "ISABEL ALLENDE", Genre: "Realismo mágico, Novela", Isbn: "2", Available: true, Shelf: "Ficción"},
	{Title: "El Principito", Author: "Antoine de Saint-Exupéry", Genre: "Infantiles", Isbn: "3", Available: false, Shelf: "Infantil"},
	{Title: "Crónica de una muerte anunciada", Author: "Gabriel García Márquez", Genre: "Novela", Isbn: "4", Available: true, Shelf: "Ficción"},
}

var Vectors = [][]float32{
	{1, 0, 0},
	{0.9, 0.1, 0},
	{0, 1, 0},
	{0.5, 0, 0.5},
}

func Seed(t *testing.T, c catalog.Catalog) []int64 {
	t.Helper()

	ids := make([]int64, 0, len(Books))
	for i, b := range Books {
		id, err := c.Upsert(context.Background(), b, Vectors[i], catalog.ContentHash(b.Title, b.Synopsis))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	return ids
}

func Run(t *testing.T, newCatalog func(t *testing.T) catalog.Catalog) {
	ctx := context.Background()

	t.Run("find by title folds case", func(t *testing.T) {
		c := newCatalog(t)
		Seed(t, c)

		book, err := c.FindByTitle(ctx, "CIEN AÑOS")
		require.NoError(t, err)
		require.NotNil(t, book)
		assert.Equal(t, "Cien años de soledad", book.Title)
		assert.True(t, book.Available)

		book, err = c.FindByTitle(ctx, "rayuela")
		require.NoError(t, err)
		assert.Nil(t, book)

		book, err = c.FindByTitle(ctx, "  ")
		require.NoError(t, err)
		assert.Nil(t, book)
	})

	t.Run("nearest orders by distance", func(t *testing.T) {
		c := newCatalog(t)
		ids := Seed(t, c)

		neighbors, err := c.Nearest(ctx, []float32{1, 0, 0}, 3)
		require.NoError(t, err)
		require.Len(t, neighbors, 3)
		assert.Equal(t, []int64{ids[0], ids[1], ids[3]}, catalog.Ids(neighbors))
		assert.InDelta(t, 0.0, neighbors[0].Distance, 1e-6)

		neighbors, err = c.Nearest(ctx, []float32{1, 0, 0}, 0)
		require.NoError(t, err)
		assert.Empty(t, neighbors)
	})

	t.Run("get by ids follows the requested order", func(t *testing.T) {
		c := newCatalog(t)
		ids := Seed(t, c)

		books, err := c.GetByIds(ctx, []int64{ids[2], ids[0]})
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "El Principito", books[0].Title)
		assert.Equal(t, "Cien años de soledad", books[1].Title)
	})

	t.Run("filter by genres is an or of substrings", func(t *testing.T) {
		c := newCatalog(t)
		ids := Seed(t, c)

		got, err := c.FilterByGenres(ctx, []string{"realismo MÁGICO", "infantiles"}, "")
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[0], ids[1], ids[2]}, got)

		got, err = c.FilterByGenres(ctx, []string{"Realismo mágico"}, "isabel allende")
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[0]}, got)

		got, err = c.FilterByGenres(ctx, nil, "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("filter by author words ands every word", func(t *testing.T) {
		c := newCatalog(t)
		Seed(t, c)

		books, err := c.FilterByAuthorWords(ctx, []string{"garcía", "MÁRQUEZ"}, "")
		require.NoError(t, err)
		require.Len(t, books, 2)

		books, err = c.FilterByAuthorWords(ctx, []string{"García"}, "novela")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Crónica de una muerte anunciada", books[0].Title)

		books, err = c.FilterByAuthorWords(ctx, []string{"Allende", "Borges"}, "")
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("upsert keeps the id and replaces the embedding", func(t *testing.T) {
		c := newCatalog(t)
		ids := Seed(t, c)

		updated := Books[2]
		updated.Synopsis = "Un aviador en el desierto"
		hash := catalog.ContentHash(updated.Title, updated.Synopsis)

		id, err := c.Upsert(ctx, updated, []float32{0, 0, 1}, hash)
		require.NoError(t, err)
		assert.Equal(t, ids[2], id)

		got, ok, err := c.ContentHash(ctx, updated.Isbn)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, hash, got)

		neighbors, err := c.Nearest(ctx, []float32{0, 0, 1}, 1)
		require.NoError(t, err)
		require.Len(t, neighbors, 1)
		assert.Equal(t, ids[2], neighbors[0].Id)
	})

	t.Run("upsert without a vector keeps the embedding", func(t *testing.T) {
		c := newCatalog(t)
		ids := Seed(t, c)

		regenred := Books[0]
		regenred.Genre = "Novela"

		id, err := c.Upsert(ctx, regenred, nil, catalog.Fingerprint(regenred))
		require.NoError(t, err)
		assert.Equal(t, ids[0], id)

		got, ok, err := c.ContentHash(ctx, regenred.Isbn)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, catalog.Fingerprint(regenred), got)

		books, err := c.GetByIds(ctx, []int64{ids[0]})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Novela", books[0].Genre)

		neighbors, err := c.Nearest(ctx, Vectors[0], 1)
		require.NoError(t, err)
		require.Len(t, neighbors, 1)
		assert.Equal(t, ids[0], neighbors[0].Id)
		assert.InDelta(t, 0, neighbors[0].Distance, 1e-6)
	})

	t.Run("delete removes the book and its embedding", func(t *testing.T) {
		c := newCatalog(t)
		ids := Seed(t, c)

		require.NoError(t, c.Delete(ctx, "1"))

		_, ok, err := c.ContentHash(ctx, "1")
		require.NoError(t, err)
		assert.False(t, ok)

		neighbors, err := c.Nearest(ctx, []float32{1, 0, 0}, 10)
		require.NoError(t, err)
		assert.Len(t, neighbors, 3)
		assert.NotContains(t, catalog.Ids(neighbors), ids[0])

		isbns, err := c.ListIsbns(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "3", "4"}, isbns)
	})
}
