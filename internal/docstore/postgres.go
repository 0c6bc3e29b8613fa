package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errPostgresNotConfigured = errors.New("postgres pool not configured")

// Postgres stores documents in a single JSONB table keyed by (collection, key).
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) GetAll(ctx context.Context, collection string) ([]Record, error) {
	return p.GetFiltered(ctx, collection, Query{})
}

func (p *Postgres) GetFiltered(ctx context.Context, collection string, q Query) ([]Record, error) {
	if p.pool == nil {
		return nil, errPostgresNotConfigured
	}
	query, args, err := buildSelect(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, key, err)
		}
		result = append(result, Record{Key: key, Data: doc})
	}
	return result, rows.Err()
}

// buildSelect renders q as SQL. Field names travel as parameters and comparisons
// use the C collation so zero-padded keys order bytewise.
func buildSelect(collection string, q Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	args := []any{collection}
	clauses := []string{"collection=$1"}

	for _, pred := range q.Where {
		args = append(args, pred.Field)
		fieldArg := len(args)
		args = append(args, toString(pred.Value))
		op := string(pred.Op)
		if pred.Op == OpEq {
			op = "="
		}
		clauses = append(clauses, fmt.Sprintf(`(data->>$%d) COLLATE "C" %s $%d`, fieldArg, op, len(args)))
	}

	query := "SELECT key, data FROM documents WHERE " + strings.Join(clauses, " AND ")

	orders := make([]string, 0, len(q.OrderBy)+1)
	for _, o := range q.OrderBy {
		args = append(args, o.Field)
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		orders = append(orders, fmt.Sprintf(`(data->>$%d) COLLATE "C" %s`, len(args), dir))
	}
	orders = append(orders, "key ASC")
	query += " ORDER BY " + strings.Join(orders, ", ")
	return query, args, nil
}

func (p *Postgres) Get(ctx context.Context, collection, key string) (Document, error) {
	if p.pool == nil {
		return nil, errPostgresNotConfigured
	}
	const query = `SELECT data FROM documents WHERE collection=$1 AND key=$2`
	var raw []byte
	if err := p.pool.QueryRow(ctx, query, collection, key).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeDocument(raw)
}

func (p *Postgres) Put(ctx context.Context, collection, key string, doc Document) error {
	if p.pool == nil {
		return errPostgresNotConfigured
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO documents (collection, key, data)
        VALUES ($1,$2,$3::jsonb)
        ON CONFLICT (collection, key) DO UPDATE SET data=EXCLUDED.data, updated_at=NOW()`
	_, err = p.pool.Exec(ctx, query, collection, key, string(raw))
	return err
}

func (p *Postgres) Delete(ctx context.Context, collection, key string) error {
	if p.pool == nil {
		return errPostgresNotConfigured
	}
	_, err := p.pool.Exec(ctx, `DELETE FROM documents WHERE collection=$1 AND key=$2`, collection, key)
	return err
}

func (p *Postgres) Add(ctx context.Context, collection string, doc Document) (string, error) {
	key := uuid.NewString()
	if err := p.Put(ctx, collection, key, doc); err != nil {
		return "", err
	}
	return key, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if p.pool == nil {
		return errPostgresNotConfigured
	}
	return p.pool.Ping(ctx)
}
