package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/w-h-a/librarian/catalog"
)

type record struct {
	book   catalog.Book
	vector []float32
	hash   string
}

type memoryCatalog struct {
	options catalog.Options
	records map[int64]record
	byIsbn  map[string]int64
	nextId  int64
	mtx     sync.RWMutex
}

func (c *memoryCatalog) FindByTitle(ctx context.Context, text string) (*catalog.Book, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, nil
	}

	c.mtx.RLock()
	defer c.mtx.RUnlock()

	for _, id := range c.sortedIds() {
		rec := c.records[id]
		if catalog.ContainsFold(rec.book.Title, text) {
			book := rec.book
			return &book, nil
		}
	}

	return nil, nil
}

func (c *memoryCatalog) Nearest(ctx context.Context, vector []float32, k int) ([]catalog.Neighbor, error) {
	if k < 1 {
		return nil, nil
	}

	c.mtx.RLock()
	defer c.mtx.RUnlock()

	candidates := make([]catalog.Neighbor, 0, len(c.records))
	for id, rec := range c.records {
		candidates = append(candidates, catalog.Neighbor{
			Id:       id,
			Distance: catalog.CosineDistance(vector, rec.vector),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance == candidates[j].Distance {
			return candidates[i].Id < candidates[j].Id
		}
		return candidates[i].Distance < candidates[j].Distance
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	return candidates, nil
}

func (c *memoryCatalog) GetByIds(ctx context.Context, ids []int64) ([]catalog.Book, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	books := make([]catalog.Book, 0, len(ids))
	for _, id := range ids {
		if rec, ok := c.records[id]; ok {
			books = append(books, rec.book)
		}
	}

	return books, nil
}

func (c *memoryCatalog) FilterByGenres(ctx context.Context, labels []string, excludeAuthor string) ([]int64, error) {
	if len(labels) == 0 {
		return nil, nil
	}

	c.mtx.RLock()
	defer c.mtx.RUnlock()

	var ids []int64
	for _, id := range c.sortedIds() {
		rec := c.records[id]
		if len(excludeAuthor) > 0 && catalog.Fold(rec.book.Author) == catalog.Fold(excludeAuthor) {
			continue
		}
		for _, label := range labels {
			if catalog.ContainsFold(rec.book.Genre, label) {
				ids = append(ids, id)
				break
			}
		}
	}

	return ids, nil
}

func (c *memoryCatalog) FilterByAuthorWords(ctx context.Context, words []string, genre string) ([]catalog.Book, error) {
	if len(words) == 0 && len(genre) == 0 {
		return nil, nil
	}

	c.mtx.RLock()
	defer c.mtx.RUnlock()

	var books []catalog.Book
	for _, id := range c.sortedIds() {
		rec := c.records[id]
		if len(genre) > 0 && !catalog.ContainsFold(rec.book.Genre, genre) {
			continue
		}
		matched := true
		for _, w := range words {
			if !catalog.ContainsFold(rec.book.Author, w) {
				matched = false
				break
			}
		}
		if matched {
			books = append(books, rec.book)
		}
	}

	return books, nil
}

func (c *memoryCatalog) Upsert(ctx context.Context, book catalog.Book, vector []float32, contentHash string) (int64, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	id, ok := c.byIsbn[book.Isbn]
	if !ok {
		c.nextId++
		id = c.nextId
		c.byIsbn[book.Isbn] = id
	}

	book.Id = id

	cpy := make([]float32, len(vector))
	copy(cpy, vector)
	if vector == nil && ok {
		cpy = c.records[id].vector
	}

	c.records[id] = record{
		book:   book,
		vector: cpy,
		hash:   contentHash,
	}

	return id, nil
}

func (c *memoryCatalog) ContentHash(ctx context.Context, isbn string) (string, bool, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	id, ok := c.byIsbn[isbn]
	if !ok {
		return "", false, nil
	}

	return c.records[id].hash, true, nil
}

func (c *memoryCatalog) Delete(ctx context.Context, isbn string) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if id, ok := c.byIsbn[isbn]; ok {
		delete(c.records, id)
		delete(c.byIsbn, isbn)
	}

	return nil
}

func (c *memoryCatalog) ListIsbns(ctx context.Context) ([]string, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	isbns := make([]string, 0, len(c.byIsbn))
	for isbn := range c.byIsbn {
		isbns = append(isbns, isbn)
	}
	sort.Strings(isbns)

	return isbns, nil
}

func (c *memoryCatalog) Close() error {
	return nil
}

func (c *memoryCatalog) sortedIds() []int64 {
	ids := make([]int64, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func NewCatalog(opts ...catalog.Option) catalog.Catalog {
	options := catalog.NewOptions(opts...)

	c := &memoryCatalog{
		options: options,
		records: map[int64]record{},
		byIsbn:  map[string]int64{},
		mtx:     sync.RWMutex{},
	}

	return c
}
