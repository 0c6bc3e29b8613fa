package docstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. Documents are kept as JSON so callers never
// share maps with the store.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string][]byte)}
}

func (m *Memory) GetAll(ctx context.Context, collection string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.collections[collection]
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		doc, err := decodeDocument(docs[k])
		if err != nil {
			return nil, err
		}
		out = append(out, Record{Key: k, Data: doc})
	}
	return out, nil
}

func (m *Memory) GetFiltered(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	all, err := m.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return filterAndSort(all, q), nil
}

func (m *Memory) Get(ctx context.Context, collection, key string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	raw, ok := m.collections[collection][key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeDocument(raw)
}

func (m *Memory) Put(ctx context.Context, collection, key string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string][]byte)
	}
	m.collections[collection][key] = raw
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], key)
	return nil
}

func (m *Memory) Add(ctx context.Context, collection string, doc Document) (string, error) {
	key := uuid.NewString()
	if err := m.Put(ctx, collection, key, doc); err != nil {
		return "", err
	}
	return key, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}
