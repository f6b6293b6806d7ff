// Package cache caches todo list results in Redis.
//
// Entries are namespaced by a generation counter rather than deleted on write:
// every mutation bumps the counter, and entries written under an older
// generation are never read again and expire by TTL. A list computed before
// a write lands under the old generation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
)

// ListCache stores filtered list results keyed by generation and filter key.
type ListCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewListCache returns a ListCache writing keys under prefix with the given TTL.
func NewListCache(rdb *redis.Client, prefix string, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// NewRedisClient parses a redis:// or rediss:// URL, connects, and pings.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache.NewRedisClient: parse url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache.NewRedisClient: ping: %w", err)
	}
	return rdb, nil
}

func (c *ListCache) genKey() string {
	return c.prefix + ":gen"
}

func (c *ListCache) entryKey(gen int64, key string) string {
	return c.prefix + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

// Generation returns the current generation. A missing counter is generation 0.
func (c *ListCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache.ListCache.Generation: %w", err)
	}
	return gen, nil
}

// Get returns the cached list for key under gen. ok is false on a miss.
func (c *ListCache) Get(ctx context.Context, gen int64, key string) ([]domain.Todo, bool, error) {
	b, err := c.rdb.Get(ctx, c.entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache.ListCache.Get: %w", err)
	}
	var records []record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, false, fmt.Errorf("cache.ListCache.Get: decode: %w", err)
	}
	todos := make([]domain.Todo, len(records))
	for i, r := range records {
		todos[i] = r.toDomain()
	}
	return todos, true, nil
}

// Set stores todos for key under gen.
func (c *ListCache) Set(ctx context.Context, gen int64, key string, todos []domain.Todo) error {
	records := make([]record, len(todos))
	for i, t := range todos {
		records[i] = fromDomain(t)
	}
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("cache.ListCache.Set: encode: %w", err)
	}
	if err := c.rdb.Set(ctx, c.entryKey(gen, key), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache.ListCache.Set: %w", err)
	}
	return nil
}

// Invalidate bumps the generation so every existing entry becomes unreachable.
func (c *ListCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		return fmt.Errorf("cache.ListCache.Invalidate: %w", err)
	}
	return nil
}

// record is the cached wire shape of a domain.Todo.
type record struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
}

func fromDomain(t domain.Todo) record {
	return record{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		DueDate:   t.DueDate,
		Tags:      t.Tags,
		CreatedAt: t.CreatedAt,
	}
}

func (r record) toDomain() domain.Todo {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Todo{
		ID:        r.ID,
		Text:      r.Text,
		Completed: r.Completed,
		DueDate:   r.DueDate,
		Tags:      tags,
		CreatedAt: r.CreatedAt,
	}
}
