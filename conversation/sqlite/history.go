package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/w-h-a/librarian/conversation"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	_ "modernc.org/sqlite"
)

var DRIVER string

func init() {
	driver, err := otelsql.Register(
		"sqlite",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemSqlite),
	)
	if err != nil {
		detail := "failed to register sqlite history with otel"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	DRIVER = driver
}

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS conversations_session_time ON conversations (session_id, created_at);
`

type sqliteHistory struct {
	options conversation.Options
	conn    *sql.DB
}

func (h *sqliteHistory) Append(ctx context.Context, sessionId string, role conversation.Role, text string) error {
	query := `INSERT INTO conversations (session_id, role, message, created_at) VALUES (?, ?, ?, ?)`

	if _, err := h.conn.ExecContext(ctx, query, sessionId, string(role), text, h.options.Now().UnixMilli()); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}

	return nil
}

func (h *sqliteHistory) Recent(ctx context.Context, sessionId string, window time.Duration) ([]conversation.Turn, error) {
	query := `
		SELECT role, message, created_at
		FROM conversations
		WHERE session_id = ? AND created_at >= ?
		ORDER BY created_at, id
	`

	cutoff := h.options.Now().Add(-window).UnixMilli()

	rows, err := h.conn.QueryContext(ctx, query, sessionId, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	turns := []conversation.Turn{}
	for rows.Next() {
		var (
			t    conversation.Turn
			role string
			ms   int64
		)
		if err := rows.Scan(&role, &t.Text, &ms); err != nil {
			return nil, fmt.Errorf("recent turns: %w", err)
		}
		t.Role = conversation.Role(role)
		t.Timestamp = time.UnixMilli(ms).UTC()
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}

	return turns, nil
}

func (h *sqliteHistory) Close() error {
	return h.conn.Close()
}

func NewHistory(opts ...conversation.Option) conversation.History {
	options := conversation.NewOptions(opts...)

	h := &sqliteHistory{
		options: options,
	}

	conn, err := sql.Open(DRIVER, options.Location+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		detail := "failed to open sqlite history"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	conn.SetMaxOpenConns(options.MaxConns)

	if _, err := conn.Exec(schema); err != nil {
		detail := "failed to migrate sqlite history"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	if err := otelsql.RecordStats(conn); err != nil {
		detail := "failed to initialize sqlite instrumentation for sqlite history"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	h.conn = conn

	return h
}
