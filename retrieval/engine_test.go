package retrieval

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/librarian/catalog"
	"github.com/w-h-a/librarian/catalog/memory"
	"github.com/w-h-a/librarian/catalog/sqlite"
	"github.com/w-h-a/librarian/genre"
)

var far = []float32{0, 0, 0, 1}

type mapEmbedder struct {
	vectors map[string][]float32
	calls   []string
	mtx     sync.Mutex
}

func (m *mapEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.calls = append(m.calls, text)
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return far, nil
}

type blockingEmbedder struct{}

func (blockingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeInferrer struct {
	genres map[string][]string
	calls  []string
}

func (f *fakeInferrer) Infer(ctx context.Context, subject string, role genre.Role) ([]string, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s:%s", role, subject))
	if g, ok := f.genres[subject]; ok {
		return g, nil
	}
	return nil, genre.ErrUndetermined
}

type seedBook struct {
	book   catalog.Book
	vector []float32
}

var shelf = []seedBook{
	{catalog.Book{Title: "Cien años de soledad", Author: "Gabriel García Márquez", Genre: "Realismo mágico", Isbn: "1", Available: true, Shelf: "Ficción"}, []float32{1, 0, 0, 0}},
	{catalog.Book{Title: "Crónica de una muerte anunciada", Author: "Gabriel García Márquez", Genre: "Novela", Isbn: "2", Available: true, Shelf: "Ficción"}, []float32{0.8, 0.2, 0, 0}},
	{catalog.Book{Title: "La casa de los espíritus", Author: "ISABEL ALLENDE", Genre: "Realismo mágico", Isbn: "3", Available: true, Shelf: "Ficción"}, []float32{0.9, 0, 0.1, 0}},
	{catalog.Book{Title: "Pedro Páramo", Author: "Juan Rulfo", Genre: "Realismo mágico, Novela", Isbn: "4", Available: true, Shelf: "Ficción"}, []float32{0.95, 0, 0, 0.05}},
	{catalog.Book{Title: "Las crónicas de Narnia", Author: "C. S. Lewis", Genre: "Fantasía juvenil", Isbn: "5", Available: true, Shelf: "Infantil"}, []float32{0, 1, 0, 0}},
	{catalog.Book{Title: "La isla del tesoro", Author: "Robert L. Stevenson", Genre: "Aventura", Isbn: "6", Available: false, Shelf: "Infantil"}, []float32{0, 0.9, 0.1, 0}},
	{catalog.Book{Title: "El Principito", Author: "Antoine de Saint-Exupéry", Genre: "Infantiles", Isbn: "7", Available: true, Shelf: "Infantil"}, []float32{0, 0, 1, 0}},
	{catalog.Book{Title: "Como agua para chocolate", Author: "Laura Esquivel", Genre: "Realismo mágico", Isbn: "8", Available: true, Shelf: "Ficción"}, []float32{0.7, 0, 0, 0.3}},
}

func newEmbedder() *mapEmbedder {
	return &mapEmbedder{vectors: map[string][]float32{
		"Cien años de soledad":        {1, 0, 0, 0},
		"El Principito":               {0, 0, 1, 0},
		"el pequeño príncipe":         {0, 0, 1, 0},
		"muerte anunciada":            {0, 1, 0, 0},
		"magia latinoamericana":       {1, 0, 0, 0},
		"García Márquez autor":        {1, 0, 0, 0},
		"Isabel Allende autor":        {0.9, 0, 0.1, 0},
		"Gabriel García Márquez autor": {1, 0, 0, 0},
	}}
}

func seed(t *testing.T, c catalog.Catalog) {
	t.Helper()
	for _, s := range shelf {
		_, err := c.Upsert(context.Background(), s.book, s.vector, catalog.ContentHash(s.book.Title, s.book.Synopsis))
		require.NoError(t, err)
	}
}

func newMemoryEngine(t *testing.T, opts ...Option) (*Engine, *mapEmbedder) {
	t.Helper()
	c := memory.NewCatalog()
	seed(t, c)
	emb := newEmbedder()
	return NewEngine(c, emb, opts...), emb
}

func defaultInferrer() *fakeInferrer {
	return &fakeInferrer{genres: map[string][]string{
		"Harry Potter":    {"Fantasía juvenil", "Aventura"},
		"Libro de cocina": {"Gastronomía"},
		"Ferran Adrià":    {"Gastronomía"},
		"Stephen King":    {"Terror", "Novela"},
	}}
}

func titles(books []catalog.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestSearchTitle(t *testing.T) {
	ctx := context.Background()

	t.Run("exact match any case", func(t *testing.T) {
		e, emb := newMemoryEngine(t)

		book, err := e.SearchTitle(ctx, "CIEN AÑOS DE SOLEDAD")
		require.NoError(t, err)
		require.NotNil(t, book)
		assert.Equal(t, "Cien años de soledad", book.Title)
		assert.Equal(t, "Gabriel García Márquez", book.Author)
		assert.Empty(t, emb.calls)
	})

	t.Run("exact match beats a closer vector", func(t *testing.T) {
		e, emb := newMemoryEngine(t)

		book, err := e.SearchTitle(ctx, "muerte anunciada")
		require.NoError(t, err)
		require.NotNil(t, book)
		assert.Equal(t, "Crónica de una muerte anunciada", book.Title)
		assert.Empty(t, emb.calls)
	})

	t.Run("vector fallback", func(t *testing.T) {
		e, emb := newMemoryEngine(t)

		book, err := e.SearchTitle(ctx, "el pequeño príncipe")
		require.NoError(t, err)
		require.NotNil(t, book)
		assert.Equal(t, "El Principito", book.Title)
		assert.Equal(t, []string{"el pequeño príncipe"}, emb.calls)
	})

	t.Run("empty title", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		book, err := e.SearchTitle(ctx, "   ")
		require.NoError(t, err)
		assert.Nil(t, book)
	})

	t.Run("empty catalog", func(t *testing.T) {
		e := NewEngine(memory.NewCatalog(), newEmbedder())

		book, err := e.SearchTitle(ctx, "cualquier cosa")
		require.NoError(t, err)
		assert.Nil(t, book)
	})
}

func TestSearchCriteria(t *testing.T) {
	ctx := context.Background()

	t.Run("author words must all appear", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.SearchCriteria(ctx, Criteria{Author: "García Márquez"}, 3)
		require.NoError(t, err)
		require.Len(t, books, 2)
		for _, b := range books {
			assert.Contains(t, b.Author, "García")
			assert.Contains(t, b.Author, "Márquez")
		}
	})

	t.Run("author with reversed name order", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.SearchCriteria(ctx, Criteria{Author: "Allende, Isabel"}, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"La casa de los espíritus"}, titles(books))
	})

	t.Run("author and genre", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.SearchCriteria(ctx, Criteria{Author: "García Márquez", Genre: "novela"}, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"Crónica de una muerte anunciada"}, titles(books))
	})

	t.Run("unknown author", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.SearchCriteria(ctx, Criteria{Author: "Stephen King"}, 3)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("query dominates", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.SearchCriteria(ctx, Criteria{Query: "magia latinoamericana"}, 3)
		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, "Cien años de soledad", books[0].Title)
	})

	t.Run("query narrowed by genre", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.SearchCriteria(ctx, Criteria{Query: "magia latinoamericana", Genre: "Novela"}, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"Pedro Páramo", "Crónica de una muerte anunciada"}, titles(books))
	})

	t.Run("query with unmatched narrowing falls back to plain search", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.SearchCriteria(ctx, Criteria{Query: "magia latinoamericana", Genre: "Ciencia ficción"}, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cien años de soledad", "Pedro Páramo"}, titles(books))
	})

	t.Run("genre only", func(t *testing.T) {
		e, emb := newMemoryEngine(t)

		books, err := e.SearchCriteria(ctx, Criteria{Genre: "aventura"}, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"La isla del tesoro"}, titles(books))
		assert.Empty(t, emb.calls)
	})

	t.Run("no criteria", func(t *testing.T) {
		e, emb := newMemoryEngine(t)

		books, err := e.SearchCriteria(ctx, Criteria{}, 3)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)

		books, err = e.SearchCriteria(ctx, Criteria{Author: " ", Genre: "\t", Query: "  "}, 3)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
		assert.Empty(t, emb.calls)

		assert.True(t, Criteria{}.IsEmpty())
		assert.False(t, Criteria{Genre: "Novela"}.IsEmpty())
	})

	t.Run("default limit", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.SearchCriteria(ctx, Criteria{Genre: "Realismo mágico"}, 0)
		require.NoError(t, err)
		assert.Len(t, books, DefaultLimit)
	})
}

func TestRecommendSimilarBook(t *testing.T) {
	ctx := context.Background()

	t.Run("excludes the reference and stays in genre", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.RecommendSimilarBook(ctx, "Cien años de soledad", 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"Pedro Páramo", "La casa de los espíritus", "Como agua para chocolate"}, titles(books))
		for _, b := range books {
			assert.Contains(t, b.Genre, "Realismo mágico")
		}
	})

	t.Run("absent reference uses inferred genres", func(t *testing.T) {
		inf := defaultInferrer()
		e, _ := newMemoryEngine(t, WithInferrer(inf))

		books, err := e.RecommendSimilarBook(ctx, "Harry Potter", 3)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Las crónicas de Narnia", "La isla del tesoro"}, titles(books))
		for _, b := range books {
			assert.True(t, catalog.ContainsFold(b.Genre, "Fantasía juvenil") || catalog.ContainsFold(b.Genre, "Aventura"), b.Genre)
		}
		assert.Equal(t, []string{"book:Harry Potter"}, inf.calls)
	})

	t.Run("no genre and no inferrer", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.RecommendSimilarBook(ctx, "Harry Potter", 3)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("inferrer gives up", func(t *testing.T) {
		e, _ := newMemoryEngine(t, WithInferrer(defaultInferrer()))

		books, err := e.RecommendSimilarBook(ctx, "Un libro que nadie conoce", 3)
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("no books in inferred genre", func(t *testing.T) {
		e, _ := newMemoryEngine(t, WithInferrer(defaultInferrer()))

		books, err := e.RecommendSimilarBook(ctx, "Libro de cocina", 3)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("narrow genre widens to plain neighbors", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.RecommendSimilarBook(ctx, "El Principito", 2)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.NotContains(t, titles(books), "El Principito")
	})

	t.Run("over-fetch width caps recall", func(t *testing.T) {
		e, _ := newMemoryEngine(t, WithInferrer(defaultInferrer()), WithOverFetch(1))

		books, err := e.RecommendSimilarBook(ctx, "Harry Potter", 3)
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("reference distance", func(t *testing.T) {
		inf := defaultInferrer()
		e, _ := newMemoryEngine(t, WithInferrer(inf), WithReferenceDistance(0))

		_, err := e.RecommendSimilarBook(ctx, "Harry Potter", 3)
		require.NoError(t, err)
		assert.Empty(t, inf.calls)
	})
}

func TestRecommendByAuthor(t *testing.T) {
	ctx := context.Background()

	t.Run("excludes the matched author", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.RecommendByAuthor(ctx, "Isabel Allende", 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cien años de soledad", "Pedro Páramo", "Como agua para chocolate"}, titles(books))
		for _, b := range books {
			assert.NotEqual(t, "ISABEL ALLENDE", b.Author)
			assert.Contains(t, b.Genre, "Realismo mágico")
		}
	})

	t.Run("collects every genre of the matched author", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.RecommendByAuthor(ctx, "Gabriel García Márquez", 5)
		require.NoError(t, err)
		require.NotEmpty(t, books)
		for _, b := range books {
			assert.NotEqual(t, "Gabriel García Márquez", b.Author)
		}
		assert.Contains(t, titles(books), "Pedro Páramo")
	})

	t.Run("absent author uses inferred genres", func(t *testing.T) {
		inf := defaultInferrer()
		e, _ := newMemoryEngine(t, WithInferrer(inf))

		books, err := e.RecommendByAuthor(ctx, "Stephen King", 3)
		require.NoError(t, err)
		require.NotEmpty(t, books)
		for _, b := range books {
			assert.True(t, catalog.ContainsFold(b.Genre, "Terror") || catalog.ContainsFold(b.Genre, "Novela"), b.Genre)
		}
		assert.Equal(t, []string{"author:Stephen King"}, inf.calls)
	})

	t.Run("no books in inferred genre", func(t *testing.T) {
		e, _ := newMemoryEngine(t, WithInferrer(defaultInferrer()))

		books, err := e.RecommendByAuthor(ctx, "Ferran Adrià", 3)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("no genre and no inferrer", func(t *testing.T) {
		e, _ := newMemoryEngine(t)

		books, err := e.RecommendByAuthor(ctx, "Stephen King", 3)
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("empty author", func(t *testing.T) {
		e, emb := newMemoryEngine(t)

		books, err := e.RecommendByAuthor(ctx, " ", 3)
		require.NoError(t, err)
		assert.Empty(t, books)
		assert.Empty(t, emb.calls)
	})
}

func TestResultCap(t *testing.T) {
	ctx := context.Background()
	e, _ := newMemoryEngine(t, WithInferrer(defaultInferrer()))

	for limit := 1; limit <= 4; limit++ {
		books, err := e.SearchCriteria(ctx, Criteria{Query: "magia latinoamericana"}, limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(books), limit)

		books, err = e.RecommendSimilarBook(ctx, "Cien años de soledad", limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(books), limit)

		books, err = e.RecommendByAuthor(ctx, "Isabel Allende", limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(books), limit)
	}
}

func TestReadOperationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	e, _ := newMemoryEngine(t, WithInferrer(defaultInferrer()))

	first, err := e.RecommendSimilarBook(ctx, "Harry Potter", 3)
	require.NoError(t, err)
	second, err := e.RecommendSimilarBook(ctx, "Harry Potter", 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	first, err = e.RecommendByAuthor(ctx, "Isabel Allende", 3)
	require.NoError(t, err)
	second, err = e.RecommendByAuthor(ctx, "Isabel Allende", 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTimeoutIsSearchUnavailable(t *testing.T) {
	c := memory.NewCatalog()
	seed(t, c)
	e := NewEngine(c, blockingEmbedder{}, WithTimeout(10*time.Millisecond))
	ctx := context.Background()

	_, err := e.SearchTitle(ctx, "algo que no está")
	assert.ErrorIs(t, err, ErrSearchUnavailable)

	_, err = e.RecommendSimilarBook(ctx, "Harry Potter", 3)
	assert.ErrorIs(t, err, ErrSearchUnavailable)

	_, err = e.SearchCriteria(ctx, Criteria{Query: "magia"}, 3)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestNativeFilteredSearch(t *testing.T) {
	ctx := context.Background()

	c := sqlite.NewCatalog(catalog.WithLocation(filepath.Join(t.TempDir(), "catalog.db")))
	t.Cleanup(func() { c.Close() })
	seed(t, c)

	e := NewEngine(c, newEmbedder(), WithInferrer(defaultInferrer()), WithOverFetch(1))

	books, err := e.RecommendSimilarBook(ctx, "Harry Potter", 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Las crónicas de Narnia", "La isla del tesoro"}, titles(books))

	books, err = e.RecommendByAuthor(ctx, "Isabel Allende", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cien años de soledad", "Pedro Páramo", "Como agua para chocolate"}, titles(books))
}
