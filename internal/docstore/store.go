// Package docstore defines the document store contract the dashboard runs on,
// with Postgres, Redis and in-memory backends.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// Collections consumed by the dashboard.
const (
	CollectionAgents       = "agents"
	CollectionDaySchedules = "day_schedules"
	CollectionLeadRecords  = "lead_records"
	CollectionUsers        = "users"
)

// ErrNotFound is returned by Get when no document exists at the key.
var ErrNotFound = errors.New("document not found")

// Document is a JSON object stored under a key.
type Document map[string]any

// Record pairs a document with its key.
type Record struct {
	Key  string
	Data Document
}

// Op is a comparison operator for a Predicate.
type Op string

const (
	OpEq  Op = "=="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

// Predicate filters on a top-level document field.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Order sorts results by a top-level field.
type Order struct {
	Field string
	Desc  bool
}

// Query combines predicates (AND) with an ordering.
type Query struct {
	Where   []Predicate
	OrderBy []Order
}

// Store is the set of primitives the dashboard needs from a document database.
type Store interface {
	GetAll(ctx context.Context, collection string) ([]Record, error)
	GetFiltered(ctx context.Context, collection string, q Query) ([]Record, error)
	Get(ctx context.Context, collection, key string) (Document, error)
	Put(ctx context.Context, collection, key string, doc Document) error
	Delete(ctx context.Context, collection, key string) error
	Add(ctx context.Context, collection string, doc Document) (string, error)
	Ping(ctx context.Context) error
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate rejects unknown operators and field names that are not plain identifiers.
func (q Query) Validate() error {
	for _, p := range q.Where {
		if !fieldPattern.MatchString(p.Field) {
			return fmt.Errorf("invalid field %q", p.Field)
		}
		switch p.Op {
		case OpEq, OpLt, OpLte, OpGt, OpGte:
		default:
			return fmt.Errorf("invalid operator %q", p.Op)
		}
	}
	for _, o := range q.OrderBy {
		if !fieldPattern.MatchString(o.Field) {
			return fmt.Errorf("invalid order field %q", o.Field)
		}
	}
	return nil
}

// Encode converts a tagged struct into a Document.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeDocument(raw)
}

// Decode fills v from a Document.
func Decode(doc Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func decodeDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}
