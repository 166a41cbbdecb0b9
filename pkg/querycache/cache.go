// Package querycache puts a Redis read-through cache in front of the query
// pipeline. Questions that differ only in Unicode form, case, or whitespace
// share one cache entry. Redis failures degrade to the wrapped querier,
// never to an error.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/text/unicode/norm"

	"github.com/tutorstack/docqa"
	"github.com/tutorstack/docqa/pkg/metrics"
)

// Querier answers retrieval questions. *docqa.Service satisfies this.
type Querier interface {
	Query(ctx context.Context, req docqa.QueryRequest) (docqa.QueryOutcome, error)
}

// Config configures the Redis connection and cache behavior.
type Config struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string
}

// Cache is a read-through query cache. Safe for concurrent use.
type Cache struct {
	next    Querier
	client  *redis.Client
	cfg     Config
	log     *slog.Logger
	metrics *metrics.Metrics
}

// New connects to Redis and wraps next with caching.
func New(next Querier, cfg Config, log *slog.Logger, m *metrics.Metrics) (*Cache, error) {
	if next == nil {
		return nil, fmt.Errorf("querycache: wrapped querier is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "docqa"
	}
	if log == nil {
		log = slog.Default()
	}
	if m == nil {
		m = metrics.New(nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("querycache: connect to redis at %s: %w", cfg.Addr, err)
	}

	log = log.With("component", "querycache")
	log.Info("query cache connected", "addr", cfg.Addr, "ttl", cfg.TTL)
	return &Cache{next: next, client: client, cfg: cfg, log: log, metrics: m}, nil
}

// Query serves from cache when possible and falls through to the wrapped
// querier otherwise. Only successful outcomes are cached; an empty outcome
// is still an outcome and is cached like any other.
func (c *Cache) Query(ctx context.Context, req docqa.QueryRequest) (docqa.QueryOutcome, error) {
	key := c.key(req)
	data, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var out docqa.QueryOutcome
		if jsonErr := json.Unmarshal([]byte(data), &out); jsonErr == nil {
			c.metrics.CacheHits.Inc()
			return out, nil
		}
		c.log.Warn("dropping undecodable cache entry", "key", key)
	case err != redis.Nil:
		c.log.Warn("cache read failed, querying index", "error", err)
	}
	c.metrics.CacheMisses.Inc()

	out, err := c.next.Query(ctx, req)
	if err != nil {
		return out, err
	}
	if payload, jsonErr := json.Marshal(out); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.cfg.TTL).Err(); setErr != nil {
			c.log.Warn("cache write failed", "error", setErr)
		}
	}
	return out, nil
}

// Invalidate removes every cached query result. Call it after ingesting or
// deleting documents so stale answers do not outlive the index change.
func (c *Cache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.cfg.KeyPrefix+":query:*", 256).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 256 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("querycache: invalidate: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("querycache: invalidate scan: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("querycache: invalidate: %w", err)
		}
	}
	c.log.Info("query cache invalidated")
	return nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// key hashes the normalized question together with every request knob that
// changes the answer. Scope slices are sorted first so order does not split
// the cache.
func (c *Cache) key(req docqa.QueryRequest) string {
	var sb strings.Builder
	sb.WriteString(NormalizeQuestion(req.Text))
	fmt.Fprintf(&sb, "|k=%d|t=%g|m=%d", req.TopK, req.ScoreThreshold, req.MaxContext)
	if req.Scope != nil {
		docs := append([]string(nil), req.Scope.DocumentIDs...)
		sort.Strings(docs)
		types := append([]string(nil), req.Scope.ChunkTypes...)
		sort.Strings(types)
		fmt.Fprintf(&sb, "|d=%s|c=%s", strings.Join(docs, ","), strings.Join(types, ","))
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%s:query:%x", c.cfg.KeyPrefix, sum)
}

// NormalizeQuestion canonicalizes a question for cache lookup: Unicode
// compatibility normalization, lowercasing, and whitespace collapse.
func NormalizeQuestion(text string) string {
	t := norm.NFKC.String(text)
	t = strings.ToLower(t)
	return strings.Join(strings.Fields(t), " ")
}
