package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    key        TEXT NOT NULL,
    data       TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (collection, key)
);
CREATE INDEX IF NOT EXISTS documents_lead_date_idx
    ON documents (collection, json_extract(data, '$.dateKey'));`

// SQLite keeps documents in a single-file database. It suits single-node
// deployments that do not want a Postgres server.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// documents table exists. ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn = fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", path)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}
	// one connection: writes serialize and ":memory:" stays a single database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) GetAll(ctx context.Context, collection string) ([]Record, error) {
	return s.GetFiltered(ctx, collection, Query{})
}

func (s *SQLite) GetFiltered(ctx context.Context, collection string, q Query) ([]Record, error) {
	query, args, err := buildSQLiteSelect(collection, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeDocument([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, key, err)
		}
		result = append(result, Record{Key: key, Data: doc})
	}
	return result, rows.Err()
}

// buildSQLiteSelect renders q as SQL. Validate guarantees field names are plain
// identifiers, so they are inlined into the JSON path. Values compare as text
// under the default BINARY collation, matching the Postgres backend.
func buildSQLiteSelect(collection string, q Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	args := []any{collection}
	clauses := []string{"collection = ?"}
	for _, pred := range q.Where {
		op := string(pred.Op)
		if pred.Op == OpEq {
			op = "="
		}
		clauses = append(clauses, fmt.Sprintf("%s %s ?", sqliteField(pred.Field), op))
		args = append(args, toString(pred.Value))
	}

	query := "SELECT key, data FROM documents WHERE " + strings.Join(clauses, " AND ")
	orders := make([]string, 0, len(q.OrderBy)+1)
	for _, o := range q.OrderBy {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		orders = append(orders, sqliteField(o.Field)+" "+dir)
	}
	orders = append(orders, "key ASC")
	return query + " ORDER BY " + strings.Join(orders, ", "), args, nil
}

func sqliteField(field string) string {
	return fmt.Sprintf("CAST(json_extract(data, '$.%s') AS TEXT)", field)
}

func (s *SQLite) Get(ctx context.Context, collection, key string) (Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE collection = ? AND key = ?`, collection, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeDocument([]byte(raw))
}

func (s *SQLite) Put(ctx context.Context, collection, key string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO documents (collection, key, data) VALUES (?, ?, ?)
        ON CONFLICT (collection, key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`
	_, err = s.db.ExecContext(ctx, query, collection, key, string(raw))
	return err
}

func (s *SQLite) Delete(ctx context.Context, collection, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND key = ?`, collection, key)
	return err
}

func (s *SQLite) Add(ctx context.Context, collection string, doc Document) (string, error) {
	key := uuid.NewString()
	if err := s.Put(ctx, collection, key, doc); err != nil {
		return "", err
	}
	return key, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
