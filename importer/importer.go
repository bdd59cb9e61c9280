package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/w-h-a/librarian/catalog"
	"github.com/w-h-a/librarian/embedder"
)

const (
	colTitle    = "nombre del libero"
	colAuthor   = "autor(es)"
	colGenre    = "genero(s)"
	colSynopsis = "sinopsis"
	colIsbn     = "isbn"
	colInStock  = "existencia"
)

var requiredColumns = []string{colTitle, colAuthor, colGenre, colSynopsis, colIsbn, colInStock}

// Result counts what one import run did.
type Result struct {
	Inserted  int
	Updated   int
	Unchanged int
	Skipped   int
	Deleted   int
}

type Importer struct {
	options  Options
	catalog  catalog.Catalog
	embedder embedder.Embedder
}

func (i *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	return i.Import(ctx, f)
}

// Import reads the catalog CSV and brings the store in line with the rows
// that are in stock. New ISBNs are inserted, changed rows are updated (and
// re-embedded when the title or synopsis changed), and the rest are left
// alone.
func (i *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	var result Result

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("read header: %w", err)
	}

	cols, err := columns(header)
	if err != nil {
		return result, err
	}

	seen := map[string]bool{}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("line %d: %w", line, err)
		}

		book, ok := parseRow(record, cols)
		if !ok {
			continue
		}

		book.Shelf = assignShelf(i.options.Shelves, book.Genre)

		if len(book.Title) == 0 || len(book.Author) == 0 || len(book.Isbn) == 0 {
			slog.WarnContext(ctx, "skipping incomplete row", "line", line, "isbn", book.Isbn)
			result.Skipped++
			continue
		}

		if seen[book.Isbn] {
			result.Skipped++
			continue
		}
		seen[book.Isbn] = true

		changed, existed, err := i.upsert(ctx, book)
		if err != nil {
			if errors.Is(err, catalog.ErrUnavailable) {
				return result, err
			}
			slog.WarnContext(ctx, "skipping row", "line", line, "isbn", book.Isbn, "error", err)
			result.Skipped++
			continue
		}

		switch {
		case !changed:
			result.Unchanged++
		case existed:
			result.Updated++
		default:
			result.Inserted++
			if result.Inserted%50 == 0 {
				slog.InfoContext(ctx, "import progress", "inserted", result.Inserted)
			}
		}
	}

	if i.options.Prune {
		deleted, err := i.prune(ctx, seen)
		result.Deleted = deleted
		if err != nil {
			return result, err
		}
	}

	slog.InfoContext(ctx, "import finished",
		"inserted", result.Inserted,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"skipped", result.Skipped,
		"deleted", result.Deleted,
	)

	return result, nil
}

// upsert stores book unless its fingerprint is unchanged. Only a new title
// or synopsis costs an embedding; other column changes reuse the stored one.
func (i *Importer) upsert(ctx context.Context, book catalog.Book) (bool, bool, error) {
	fingerprint := catalog.Fingerprint(book)

	stored, existed, err := i.catalog.ContentHash(ctx, book.Isbn)
	if err != nil {
		return false, false, err
	}

	if existed && stored == fingerprint {
		return false, true, nil
	}

	var vec []float32
	if !existed || !catalog.SameEmbedding(stored, book) {
		vec, err = i.embedder.Embed(ctx, fmt.Sprintf("%s %s", book.Title, book.Synopsis))
		if err != nil {
			return false, existed, fmt.Errorf("embed: %w", err)
		}
	}

	if _, err := i.catalog.Upsert(ctx, book, vec, fingerprint); err != nil {
		return false, existed, err
	}

	return true, existed, nil
}

func (i *Importer) prune(ctx context.Context, keep map[string]bool) (int, error) {
	isbns, err := i.catalog.ListIsbns(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, isbn := range isbns {
		if keep[isbn] {
			continue
		}
		if err := i.catalog.Delete(ctx, isbn); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}

func columns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = idx
	}

	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	return cols, nil
}

// parseRow reports false for rows that are not in stock.
func parseRow(record []string, cols map[string]int) (catalog.Book, bool) {
	field := func(name string) string {
		idx := cols[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	if !inStock(field(colInStock)) {
		return catalog.Book{}, false
	}

	synopsis := field(colSynopsis)
	if strings.EqualFold(synopsis, "nan") {
		synopsis = ""
	}

	return catalog.Book{
		Title:     field(colTitle),
		Author:    field(colAuthor),
		Genre:     field(colGenre),
		Synopsis:  synopsis,
		Isbn:      field(colIsbn),
		Available: true,
	}, true
}

func inStock(v string) bool {
	switch strings.ToLower(v) {
	case "si", "sí", "yes", "verdadero":
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func NewImporter(cat catalog.Catalog, emb embedder.Embedder, opts ...Option) *Importer {
	if cat == nil || emb == nil {
		detail := "importer requires a catalog and an embedder"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	return &Importer{
		options:  NewOptions(opts...),
		catalog:  cat,
		embedder: emb,
	}
}
