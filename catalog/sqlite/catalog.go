package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/w-h-a/librarian/catalog"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

var DRIVER string

func init() {
	if err := registerFunctions(); err != nil {
		detail := "failed to register sqlite catalog functions"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	driver, err := otelsql.Register(
		"sqlite",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemSqlite),
	)
	if err != nil {
		detail := "failed to register sqlite catalog with otel"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	DRIVER = driver
}

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	titulo TEXT NOT NULL,
	autor TEXT NOT NULL,
	genero TEXT NOT NULL,
	sinopsis TEXT NOT NULL DEFAULT '',
	isbn TEXT UNIQUE NOT NULL,
	disponibilidad BOOLEAN NOT NULL DEFAULT 1,
	estante TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS book_embeddings (
	book_id INTEGER PRIMARY KEY REFERENCES books(id) ON DELETE CASCADE,
	embedding BLOB NOT NULL,
	content_hash TEXT NOT NULL
);
`

const bookColumns = `id, titulo, autor, genero, sinopsis, isbn, disponibilidad, estante`

type sqliteCatalog struct {
	options catalog.Options
	conn    *sql.DB
}

func (c *sqliteCatalog) FindByTitle(ctx context.Context, text string) (*catalog.Book, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, nil
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE instr(fold(titulo), fold(?)) > 0 ORDER BY id LIMIT 1`

	books, err := c.queryBooks(ctx, query, text)
	if err != nil {
		return nil, fmt.Errorf("%w: find by title: %w", catalog.ErrUnavailable, err)
	}

	if len(books) == 0 {
		return nil, nil
	}

	return &books[0], nil
}

func (c *sqliteCatalog) Nearest(ctx context.Context, vector []float32, k int) ([]catalog.Neighbor, error) {
	if k < 1 {
		return nil, nil
	}

	query := `
		SELECT book_id, vec_distance_cos(embedding, ?) AS distance
		FROM book_embeddings
		ORDER BY distance ASC, book_id ASC
		LIMIT ?
	`

	neighbors, err := c.queryNeighbors(ctx, query, catalog.EncodeVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("%w: nearest: %w", catalog.ErrUnavailable, err)
	}

	return neighbors, nil
}

func (c *sqliteCatalog) NearestAmong(ctx context.Context, vector []float32, ids []int64, k int) ([]catalog.Neighbor, error) {
	if k < 1 || len(ids) == 0 {
		return nil, nil
	}

	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT book_id, vec_distance_cos(embedding, ?) AS distance
		FROM book_embeddings
		WHERE book_id IN (SELECT value FROM json_each(?))
		ORDER BY distance ASC, book_id ASC
		LIMIT ?
	`

	neighbors, err := c.queryNeighbors(ctx, query, catalog.EncodeVector(vector), string(idsJSON), k)
	if err != nil {
		return nil, fmt.Errorf("%w: nearest among: %w", catalog.ErrUnavailable, err)
	}

	return neighbors, nil
}

func (c *sqliteCatalog) GetByIds(ctx context.Context, ids []int64) ([]catalog.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id IN (SELECT value FROM json_each(?))`

	books, err := c.queryBooks(ctx, query, string(idsJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: get by ids: %w", catalog.ErrUnavailable, err)
	}

	return catalog.OrderByIds(books, ids), nil
}

func (c *sqliteCatalog) FilterByGenres(ctx context.Context, labels []string, excludeAuthor string) ([]int64, error) {
	if len(labels) == 0 {
		return nil, nil
	}

	clauses := make([]string, 0, len(labels))
	args := make([]any, 0, len(labels)+1)
	for _, label := range labels {
		clauses = append(clauses, "instr(fold(genero), fold(?)) > 0")
		args = append(args, label)
	}

	query := `SELECT id FROM books WHERE (` + strings.Join(clauses, " OR ") + `)`
	if len(excludeAuthor) > 0 {
		query += ` AND fold(autor) != fold(?)`
		args = append(args, excludeAuthor)
	}
	query += ` ORDER BY id`

	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: filter by genres: %w", catalog.ErrUnavailable, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: filter by genres: %w", catalog.ErrUnavailable, err)
	}

	return ids, nil
}

func (c *sqliteCatalog) FilterByAuthorWords(ctx context.Context, words []string, genre string) ([]catalog.Book, error) {
	if len(words) == 0 && len(genre) == 0 {
		return nil, nil
	}

	var clauses []string
	var args []any
	for _, w := range words {
		clauses = append(clauses, "instr(fold(autor), fold(?)) > 0")
		args = append(args, w)
	}
	if len(genre) > 0 {
		clauses = append(clauses, "instr(fold(genero), fold(?)) > 0")
		args = append(args, genre)
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY id`

	books, err := c.queryBooks(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: filter by author: %w", catalog.ErrUnavailable, err)
	}

	return books, nil
}

func (c *sqliteCatalog) Upsert(ctx context.Context, book catalog.Book, vector []float32, contentHash string) (int64, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO books (titulo, autor, genero, sinopsis, isbn, disponibilidad, estante)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(isbn) DO UPDATE SET
			titulo = excluded.titulo,
			autor = excluded.autor,
			genero = excluded.genero,
			sinopsis = excluded.sinopsis,
			disponibilidad = excluded.disponibilidad,
			estante = excluded.estante
		RETURNING id
	`

	var id int64
	if err := tx.QueryRowContext(
		ctx,
		query,
		book.Title,
		book.Author,
		book.Genre,
		book.Synopsis,
		book.Isbn,
		book.Available,
		book.Shelf,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert book %s: %w", book.Isbn, err)
	}

	if vector == nil {
		if _, err := tx.ExecContext(ctx, `UPDATE book_embeddings SET content_hash = ? WHERE book_id = ?`, contentHash, id); err != nil {
			return 0, fmt.Errorf("update content hash %s: %w", book.Isbn, err)
		}
	} else if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO book_embeddings (book_id, embedding, content_hash)
		VALUES (?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			embedding = excluded.embedding,
			content_hash = excluded.content_hash`,
		id,
		catalog.EncodeVector(vector),
		contentHash,
	); err != nil {
		return 0, fmt.Errorf("upsert embedding %s: %w", book.Isbn, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return id, nil
}

func (c *sqliteCatalog) ContentHash(ctx context.Context, isbn string) (string, bool, error) {
	query := `
		SELECT e.content_hash
		FROM books b
		JOIN book_embeddings e ON e.book_id = b.id
		WHERE b.isbn = ?
	`

	var hash string
	err := c.conn.QueryRowContext(ctx, query, isbn).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return hash, true, nil
}

func (c *sqliteCatalog) Delete(ctx context.Context, isbn string) error {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_embeddings WHERE book_id IN (SELECT id FROM books WHERE isbn = ?)`, isbn); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE isbn = ?`, isbn); err != nil {
		return err
	}

	return tx.Commit()
}

func (c *sqliteCatalog) ListIsbns(ctx context.Context) ([]string, error) {
	rows, err := c.conn.QueryContext(ctx, `SELECT isbn FROM books ORDER BY isbn`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var isbns []string
	for rows.Next() {
		var isbn string
		if err := rows.Scan(&isbn); err != nil {
			return nil, err
		}
		isbns = append(isbns, isbn)
	}

	return isbns, rows.Err()
}

func (c *sqliteCatalog) Close() error {
	return c.conn.Close()
}

func (c *sqliteCatalog) queryBooks(ctx context.Context, query string, args ...any) ([]catalog.Book, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		var b catalog.Book
		if err := rows.Scan(
			&b.Id,
			&b.Title,
			&b.Author,
			&b.Genre,
			&b.Synopsis,
			&b.Isbn,
			&b.Available,
			&b.Shelf,
		); err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return books, nil
}

func (c *sqliteCatalog) queryNeighbors(ctx context.Context, query string, args ...any) ([]catalog.Neighbor, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var neighbors []catalog.Neighbor
	for rows.Next() {
		var n catalog.Neighbor
		if err := rows.Scan(&n.Id, &n.Distance); err != nil {
			return nil, err
		}
		neighbors = append(neighbors, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return neighbors, nil
}

// DSN appends the pragmas the catalog needs to a database file path.
func DSN(location string) string {
	sep := "?"
	if strings.Contains(location, "?") {
		sep = "&"
	}
	return location + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func NewCatalog(opts ...catalog.Option) catalog.Catalog {
	options := catalog.NewOptions(opts...)

	c := &sqliteCatalog{
		options: options,
	}

	// librarian.db
	conn, err := sql.Open(DRIVER, DSN(options.Location))
	if err != nil {
		detail := "failed to open sqlite catalog"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	conn.SetMaxOpenConns(options.MaxConns)

	if err := conn.Ping(); err != nil {
		detail := "failed to ping sqlite catalog"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	if _, err := conn.Exec(schema); err != nil {
		detail := "failed to migrate sqlite catalog"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	if err := otelsql.RecordStats(conn); err != nil {
		detail := "failed to initialize sqlite instrumentation for sqlite catalog"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	c.conn = conn

	return c
}
