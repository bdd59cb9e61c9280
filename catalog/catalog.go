package catalog

import (
	"context"
	"errors"
)

var (
	ErrUnavailable = errors.New("catalog unavailable")
)

// Catalog owns books and their embeddings. Lookups that find nothing return
// a nil book or an empty slice, never an error.
type Catalog interface {
	FindByTitle(ctx context.Context, text string) (*Book, error)
	Nearest(ctx context.Context, vector []float32, k int) ([]Neighbor, error)
	GetByIds(ctx context.Context, ids []int64) ([]Book, error)
	FilterByGenres(ctx context.Context, labels []string, excludeAuthor string) ([]int64, error)
	FilterByAuthorWords(ctx context.Context, words []string, genre string) ([]Book, error)
	// Upsert writes book and its change marker. A nil vector keeps the
	// stored embedding of an existing book.
	Upsert(ctx context.Context, book Book, vector []float32, contentHash string) (int64, error)
	ContentHash(ctx context.Context, isbn string) (string, bool, error)
	Delete(ctx context.Context, isbn string) error
	ListIsbns(ctx context.Context) ([]string, error)
	Close() error
}

// FilteredSearcher is implemented by stores that can restrict a
// nearest-neighbor query to an id subset without over-fetching.
type FilteredSearcher interface {
	NearestAmong(ctx context.Context, vector []float32, ids []int64, k int) ([]Neighbor, error)
}
