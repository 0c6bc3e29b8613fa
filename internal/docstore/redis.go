package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis keeps each collection in one hash: field = document key, value = JSON.
// Queries are evaluated client-side.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps a go-redis client. prefix namespaces the collection hashes.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "shiftboard"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) hashKey(collection string) string {
	return r.prefix + ":" + collection
}

func (r *Redis) GetAll(ctx context.Context, collection string) ([]Record, error) {
	if r.client == nil {
		return nil, errors.New("redis client not configured")
	}
	entries, err := r.client.HGetAll(ctx, r.hashKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		doc, err := decodeDocument([]byte(entries[k]))
		if err != nil {
			return nil, err
		}
		out = append(out, Record{Key: k, Data: doc})
	}
	return out, nil
}

func (r *Redis) GetFiltered(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	all, err := r.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return filterAndSort(all, q), nil
}

func (r *Redis) Get(ctx context.Context, collection, key string) (Document, error) {
	if r.client == nil {
		return nil, errors.New("redis client not configured")
	}
	raw, err := r.client.HGet(ctx, r.hashKey(collection), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeDocument([]byte(raw))
}

func (r *Redis) Put(ctx context.Context, collection, key string, doc Document) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.hashKey(collection), key, raw).Err()
}

func (r *Redis) Delete(ctx context.Context, collection, key string) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.HDel(ctx, r.hashKey(collection), key).Err()
}

func (r *Redis) Add(ctx context.Context, collection string, doc Document) (string, error) {
	key := uuid.NewString()
	if err := r.Put(ctx, collection, key, doc); err != nil {
		return "", err
	}
	return key, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Ping(ctx).Err()
}
