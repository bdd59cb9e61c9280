package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/w-h-a/librarian/catalog"
	"github.com/w-h-a/librarian/embedder"
	"github.com/w-h-a/librarian/genre"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrSearchUnavailable = errors.New("search unavailable")
)

const (
	DefaultLimit = 3

	authorWindow          = 10
	authorRecommendWindow = 5
	authorSuffix          = " autor"
)

// Criteria narrows a catalog search. Query dominates, then Author, then
// Genre on its own.
type Criteria struct {
	Author string
	Genre  string
	Query  string
}

func (c Criteria) IsEmpty() bool {
	return len(c.Author) == 0 && len(c.Genre) == 0 && len(c.Query) == 0
}

type Engine struct {
	options  Options
	catalog  catalog.Catalog
	embedder embedder.Embedder
	tracer   trace.Tracer
}

// SearchTitle returns the first book whose title contains title, ignoring
// case. Only when nothing matches textually is the vector index consulted.
func (e *Engine) SearchTitle(ctx context.Context, title string) (*catalog.Book, error) {
	ctx, span := e.tracer.Start(ctx, "retrieval.SearchTitle", trace.WithAttributes(
		attribute.String("title", title),
	))
	defer span.End()

	title = strings.TrimSpace(title)
	if len(title) == 0 {
		return nil, nil
	}

	book, err := e.catalog.FindByTitle(ctx, title)
	if err != nil {
		return nil, record(span, err)
	}

	if book != nil {
		span.SetAttributes(attribute.String("match", "exact"))
		return book, nil
	}

	vec, err := e.embed(ctx, title)
	if err != nil {
		return nil, record(span, err)
	}

	neighbors, err := e.nearest(ctx, vec, 1)
	if err != nil {
		return nil, record(span, err)
	}

	if len(neighbors) == 0 {
		return nil, nil
	}

	books, err := e.catalog.GetByIds(ctx, catalog.Ids(neighbors))
	if err != nil {
		return nil, record(span, err)
	}

	if len(books) == 0 {
		return nil, nil
	}

	span.SetAttributes(attribute.String("match", "vector"))

	return &books[0], nil
}

func (e *Engine) SearchCriteria(ctx context.Context, criteria Criteria, limit int) ([]catalog.Book, error) {
	ctx, span := e.tracer.Start(ctx, "retrieval.SearchCriteria", trace.WithAttributes(
		attribute.String("author", criteria.Author),
		attribute.String("genre", criteria.Genre),
		attribute.String("query", criteria.Query),
	))
	defer span.End()

	criteria.Author = strings.TrimSpace(criteria.Author)
	criteria.Genre = strings.TrimSpace(criteria.Genre)
	criteria.Query = strings.TrimSpace(criteria.Query)

	if criteria.IsEmpty() {
		return []catalog.Book{}, nil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		books []catalog.Book
		err   error
	)

	switch {
	case len(criteria.Query) > 0:
		books, err = e.searchByQuery(ctx, criteria, limit)
	case len(criteria.Author) > 0:
		books, err = e.searchByAuthor(ctx, criteria, limit)
	default:
		books, err = e.catalog.FilterByAuthorWords(ctx, nil, criteria.Genre)
	}

	if err != nil {
		return nil, record(span, err)
	}

	return orEmpty(truncate(books, limit)), nil
}

func (e *Engine) searchByQuery(ctx context.Context, criteria Criteria, limit int) ([]catalog.Book, error) {
	vec, err := e.embed(ctx, criteria.Query)
	if err != nil {
		return nil, err
	}

	var neighbors []catalog.Neighbor

	if len(criteria.Author) > 0 || len(criteria.Genre) > 0 {
		narrowed, err := e.catalog.FilterByAuthorWords(ctx, catalog.AuthorWords(criteria.Author), criteria.Genre)
		if err != nil {
			return nil, err
		}

		if len(narrowed) > 0 {
			neighbors, err = e.nearestAmong(ctx, vec, bookIds(narrowed), limit)
			if err != nil {
				return nil, err
			}
		}
	}

	if len(neighbors) == 0 {
		neighbors, err = e.nearest(ctx, vec, limit)
		if err != nil {
			return nil, err
		}
	}

	return e.catalog.GetByIds(ctx, catalog.Ids(neighbors))
}

// searchByAuthor pulls a small vector window around "{author} autor" and
// keeps only rows whose author holds every query word, so name order and
// punctuation do not matter but vector drift cannot sneak in other authors.
func (e *Engine) searchByAuthor(ctx context.Context, criteria Criteria, limit int) ([]catalog.Book, error) {
	matching, err := e.catalog.FilterByAuthorWords(ctx, catalog.AuthorWords(criteria.Author), criteria.Genre)
	if err != nil {
		return nil, err
	}

	if len(matching) == 0 {
		return []catalog.Book{}, nil
	}

	vec, err := e.embed(ctx, criteria.Author+authorSuffix)
	if err != nil {
		return nil, err
	}

	neighbors, err := e.nearest(ctx, vec, authorWindow)
	if err != nil {
		return nil, err
	}

	hits := catalog.Intersect(neighbors, bookIds(matching))
	if len(hits) == 0 {
		slog.DebugContext(ctx, "author window empty, using substring filter", "author", criteria.Author)
		return matching, nil
	}

	return e.catalog.GetByIds(ctx, catalog.Ids(truncate(hits, limit)))
}

// RecommendSimilarBook recommends books sharing the reference's genre, from
// any author, never the reference itself.
func (e *Engine) RecommendSimilarBook(ctx context.Context, reference string, limit int) ([]catalog.Book, error) {
	ctx, span := e.tracer.Start(ctx, "retrieval.RecommendSimilarBook", trace.WithAttributes(
		attribute.String("reference", reference),
	))
	defer span.End()

	reference = strings.TrimSpace(reference)
	if len(reference) == 0 {
		return []catalog.Book{}, nil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	vec, err := e.embed(ctx, reference)
	if err != nil {
		return nil, record(span, err)
	}

	ref, err := e.resolveReference(ctx, reference, vec)
	if err != nil {
		return nil, record(span, err)
	}

	var labels []string
	if ref != nil {
		labels = catalog.SplitGenres(ref.Genre)
		span.SetAttributes(attribute.String("reference.title", ref.Title))
	} else {
		labels = e.infer(ctx, reference, genre.RoleBook)
	}

	if len(labels) == 0 {
		span.SetAttributes(attribute.Bool("genre.undetermined", true))
		return []catalog.Book{}, nil
	}

	span.SetAttributes(attribute.StringSlice("genres", labels))

	eligible, err := e.catalog.FilterByGenres(ctx, labels, "")
	if err != nil {
		return nil, record(span, err)
	}

	var neighbors []catalog.Neighbor

	switch {
	case ref != nil && len(eligible) < 2:
		slog.DebugContext(ctx, "genre too narrow, widening", "reference", ref.Title, "genres", labels)

		neighbors, err = e.nearest(ctx, vec, limit+1)
		if err != nil {
			return nil, record(span, err)
		}
		neighbors = exclude(neighbors, ref.Id)
	case len(eligible) == 0:
		return []catalog.Book{}, nil
	default:
		if ref != nil {
			eligible = excludeId(eligible, ref.Id)
		}

		neighbors, err = e.nearestAmong(ctx, vec, eligible, limit)
		if err != nil {
			return nil, record(span, err)
		}
	}

	books, err := e.catalog.GetByIds(ctx, catalog.Ids(truncate(neighbors, limit)))
	if err != nil {
		return nil, record(span, err)
	}

	return orEmpty(books), nil
}

// RecommendByAuthor recommends books in the genres of the named author but
// written by someone else.
func (e *Engine) RecommendByAuthor(ctx context.Context, author string, limit int) ([]catalog.Book, error) {
	ctx, span := e.tracer.Start(ctx, "retrieval.RecommendByAuthor", trace.WithAttributes(
		attribute.String("author", author),
	))
	defer span.End()

	author = strings.TrimSpace(author)
	words := catalog.AuthorWords(author)
	if len(words) == 0 {
		return []catalog.Book{}, nil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	vec, err := e.embed(ctx, author+authorSuffix)
	if err != nil {
		return nil, record(span, err)
	}

	neighbors, err := e.nearest(ctx, vec, authorRecommendWindow)
	if err != nil {
		return nil, record(span, err)
	}

	candidates, err := e.catalog.GetByIds(ctx, catalog.Ids(neighbors))
	if err != nil {
		return nil, record(span, err)
	}

	matched, labels := authorGenres(candidates, words[0])

	if len(matched) > 0 {
		span.SetAttributes(attribute.String("author.matched", matched))
	} else {
		labels = e.infer(ctx, author, genre.RoleAuthor)
	}

	if len(labels) == 0 {
		span.SetAttributes(attribute.Bool("genre.undetermined", true))
		return []catalog.Book{}, nil
	}

	span.SetAttributes(attribute.StringSlice("genres", labels))

	eligible, err := e.catalog.FilterByGenres(ctx, labels, matched)
	if err != nil {
		return nil, record(span, err)
	}

	if len(eligible) == 0 {
		return []catalog.Book{}, nil
	}

	hits, err := e.nearestAmong(ctx, vec, eligible, limit)
	if err != nil {
		return nil, record(span, err)
	}

	books, err := e.catalog.GetByIds(ctx, catalog.Ids(truncate(hits, limit)))
	if err != nil {
		return nil, record(span, err)
	}

	return orEmpty(books), nil
}

// resolveReference finds the book a recommendation pivots on: a title
// substring match first, otherwise the nearest book if it is close enough.
func (e *Engine) resolveReference(ctx context.Context, reference string, vec []float32) (*catalog.Book, error) {
	book, err := e.catalog.FindByTitle(ctx, reference)
	if err != nil || book != nil {
		return book, err
	}

	neighbors, err := e.nearest(ctx, vec, 1)
	if err != nil {
		return nil, err
	}

	if len(neighbors) == 0 {
		return nil, nil
	}

	if e.options.ReferenceDistance > 0 && neighbors[0].Distance > e.options.ReferenceDistance {
		return nil, nil
	}

	books, err := e.catalog.GetByIds(ctx, catalog.Ids(neighbors))
	if err != nil || len(books) == 0 {
		return nil, err
	}

	return &books[0], nil
}

func (e *Engine) infer(ctx context.Context, subject string, role genre.Role) []string {
	if e.options.Inferrer == nil {
		return nil
	}

	slog.InfoContext(ctx, "subject not in catalog, inferring genres", "subject", subject, "role", role)

	labels, err := e.options.Inferrer.Infer(ctx, subject, role)
	if err != nil {
		if !errors.Is(err, genre.ErrUndetermined) {
			slog.WarnContext(ctx, "genre inference failed", "subject", subject, "role", role, "error", err)
		}
		return nil
	}

	return labels
}

func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.options.Timeout)
	defer cancel()

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, unavailable("embed", err)
	}

	return vec, nil
}

func (e *Engine) nearest(ctx context.Context, vec []float32, k int) ([]catalog.Neighbor, error) {
	ctx, cancel := context.WithTimeout(ctx, e.options.Timeout)
	defer cancel()

	neighbors, err := e.catalog.Nearest(ctx, vec, k)
	if err != nil {
		return nil, unavailable("nearest", err)
	}

	return neighbors, nil
}

// nearestAmong ranks the eligible ids around vec. Stores with native
// filtering do it directly; otherwise the engine over-fetches raw neighbors
// and intersects, which caps recall at the over-fetch width.
func (e *Engine) nearestAmong(ctx context.Context, vec []float32, eligible []int64, k int) ([]catalog.Neighbor, error) {
	if fs, ok := e.catalog.(catalog.FilteredSearcher); ok {
		ctx, cancel := context.WithTimeout(ctx, e.options.Timeout)
		defer cancel()

		neighbors, err := fs.NearestAmong(ctx, vec, eligible, k)
		if err != nil {
			return nil, unavailable("nearest among", err)
		}

		return neighbors, nil
	}

	neighbors, err := e.nearest(ctx, vec, max(e.options.OverFetch, k))
	if err != nil {
		return nil, err
	}

	return truncate(catalog.Intersect(neighbors, eligible), k), nil
}

// authorGenres picks the first candidate whose author holds firstWord and
// collects the genres of that author's candidate rows.
func authorGenres(candidates []catalog.Book, firstWord string) (string, []string) {
	matched := ""
	for _, b := range candidates {
		if catalog.ContainsFold(b.Author, firstWord) {
			matched = b.Author
			break
		}
	}

	if len(matched) == 0 {
		return "", nil
	}

	seen := map[string]struct{}{}
	var labels []string
	for _, b := range candidates {
		if catalog.Fold(b.Author) != catalog.Fold(matched) {
			continue
		}
		for _, g := range catalog.SplitGenres(b.Genre) {
			key := catalog.Fold(g)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			labels = append(labels, g)
		}
	}

	return matched, labels
}

func unavailable(step string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %w", ErrSearchUnavailable, step, err)
	}
	return fmt.Errorf("%s: %w", step, err)
}

func record(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func bookIds(books []catalog.Book) []int64 {
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.Id)
	}
	return ids
}

func exclude(neighbors []catalog.Neighbor, id int64) []catalog.Neighbor {
	out := make([]catalog.Neighbor, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Id != id {
			out = append(out, n)
		}
	}
	return out
}

func excludeId(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, i := range ids {
		if i != id {
			out = append(out, i)
		}
	}
	return out
}

func orEmpty(books []catalog.Book) []catalog.Book {
	if books == nil {
		return []catalog.Book{}
	}
	return books
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func NewEngine(cat catalog.Catalog, emb embedder.Embedder, opts ...Option) *Engine {
	options := NewOptions(opts...)

	if cat == nil || emb == nil {
		detail := "retrieval engine requires a catalog and an embedder"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	return &Engine{
		options:  options,
		catalog:  cat,
		embedder: emb,
		tracer:   otel.Tracer("github.com/w-h-a/librarian/retrieval"),
	}
}
