// Package sqlite implements the repository interfaces on top of SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary needs
// no C toolchain. It registers itself with database/sql under the driver
// name "sqlite".
//
// The DB type owns the *sql.DB pool. Each table gets its own small store
// (UserDB, SnippetDB, TagDB, SnippetTagDB) sharing that pool, so a request
// never holds a connection longer than a single statement.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/xid"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out per-table stores.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/snippets.db" → file-based database
//   - ":memory:"         → in-memory database, used by tests
//
// PRAGMAs are passed through the DSN rather than executed once, because
// SQLite scopes foreign_keys and busy_timeout to a single connection and the
// pool opens connections lazily.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database.
	if isMemory(dbPath) {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := Open(conn)
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Open wraps an existing pool without touching the schema. Tests use it
// with go-sqlmock.
func Open(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

func dsn(dbPath string) string {
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_time_format=sqlite",
	}
	if !isMemory(dbPath) {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	return dbPath + "?" + strings.Join(pragmas, "&")
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the store is reachable. Used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// StatsCollector exposes the connection pool counters (open, in use, idle,
// wait count) as Prometheus metrics.
func (db *DB) StatsCollector() prometheus.Collector {
	return collectors.NewDBStatsCollector(db.conn, "sqlite")
}

func (db *DB) Users() *UserDB             { return &UserDB{conn: db.conn} }
func (db *DB) Snippets() *SnippetDB       { return &SnippetDB{conn: db.conn} }
func (db *DB) Tags() *TagDB               { return &TagDB{conn: db.conn} }
func (db *DB) SnippetTags() *SnippetTagDB { return &SnippetTagDB{conn: db.conn} }

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
//
// References are plain FOREIGN KEYs with no ON DELETE action: deleting a row
// that is still referenced fails instead of cascading or orphaning.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY NOT NULL,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS code_snippets (
			id          TEXT PRIMARY KEY NOT NULL,
			user_id     TEXT NOT NULL REFERENCES users(id),
			title       TEXT NOT NULL,
			content     TEXT NOT NULL,
			language    TEXT,
			description TEXT,
			is_public   INTEGER NOT NULL DEFAULT 1,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_code_snippets_user_id ON code_snippets(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating code_snippets table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tags (
			id   TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL UNIQUE
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tags table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS code_snippet_tags (
			snippet_id TEXT NOT NULL REFERENCES code_snippets(id),
			tag_id     TEXT NOT NULL REFERENCES tags(id),
			PRIMARY KEY (snippet_id, tag_id)
		);
		CREATE INDEX IF NOT EXISTS idx_code_snippet_tags_tag_id ON code_snippet_tags(tag_id);
	`)
	if err != nil {
		return fmt.Errorf("creating code_snippet_tags table: %w", err)
	}

	return nil
}

// newID returns the caller-supplied id, or a fresh xid when none was given.
func newID(supplied *string) string {
	if supplied != nil && *supplied != "" {
		return *supplied
	}
	return xid.New().String()
}

// assignments accumulates "col = ?" pairs for a partial UPDATE.
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) set(col string, value any) {
	a.cols = append(a.cols, col+" = ?")
	a.args = append(a.args, value)
}

func (a *assignments) empty() bool { return len(a.cols) == 0 }

func (a *assignments) clause() string { return strings.Join(a.cols, ", ") }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nullable binds a nil pointer as SQL NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
