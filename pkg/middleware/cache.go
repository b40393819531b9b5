package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	enhance "github.com/vango-dev/enhance"
	"github.com/vango-dev/enhance/internal/cache"
	"github.com/vango-dev/enhance/pkg/style"
)

// CacheStore is the storage used by the cache middleware. The stores in
// internal/cache implement it.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// KeyFunc derives a cache key from a call's input. Returning ok=false
// bypasses the cache for that call.
type KeyFunc func(markup string, state any) (key string, ok bool)

// CacheConfig configures the cache middleware.
type CacheConfig struct {
	// TTL is passed to the store. Zero uses the store default.
	TTL time.Duration

	// Key derives cache keys. If nil, calls are keyed by their markup and
	// JSON-encoded state, and calls whose state cannot be encoded are not
	// cached.
	Key KeyFunc

	// Logger receives store failures, which never fail a call.
	Logger *slog.Logger
}

// CacheOption configures the cache middleware.
type CacheOption func(*CacheConfig)

// WithCacheTTL sets the entry lifetime.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CacheConfig) {
		c.TTL = ttl
	}
}

// WithCacheKey sets the key function.
func WithCacheKey(fn KeyFunc) CacheOption {
	return func(c *CacheConfig) {
		c.Key = fn
	}
}

// WithCacheLogger sets the logger for store failures.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CacheConfig) {
		c.Logger = logger
	}
}

// entry is the stored form of a Result.
type entry struct {
	Document  string           `json:"document"`
	Body      string           `json:"body"`
	Styles    string           `json:"styles"`
	Fragments []style.Fragment `json:"fragments,omitempty"`
	Rendered  int              `json:"rendered"`
}

// Cache creates middleware that serves repeated calls from store. Only
// successful results are cached. A cached Result is a fresh copy, so
// callers may modify it.
//
// Render functions must be deterministic for a given input and state for
// the cache to be correct.
func Cache(store CacheStore, opts ...CacheOption) Middleware {
	config := CacheConfig{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Key == nil {
		config.Key = defaultKey
	}

	return func(next enhance.Processor) enhance.Processor {
		if store == nil {
			return next
		}

		return enhance.ProcessorFunc(func(ctx context.Context, markup string, state any) (*enhance.Result, error) {
			if isNodeCall(ctx) {
				return next.Process(ctx, markup, state)
			}
			key, ok := config.Key(markup, state)
			if !ok {
				return next.Process(ctx, markup, state)
			}

			if data, found, err := store.Get(ctx, key); err != nil {
				config.Logger.Warn("render cache read failed", "error", err)
			} else if found {
				var e entry
				if err := json.Unmarshal(data, &e); err == nil {
					return &enhance.Result{
						Document:  e.Document,
						Body:      e.Body,
						Styles:    e.Styles,
						Fragments: e.Fragments,
						Rendered:  e.Rendered,
					}, nil
				}
			}

			res, err := next.Process(ctx, markup, state)
			if err != nil || res == nil {
				return res, err
			}

			data, err := json.Marshal(entry{
				Document:  res.Document,
				Body:      res.Body,
				Styles:    res.Styles,
				Fragments: res.Fragments,
				Rendered:  res.Rendered,
			})
			if err == nil {
				err = store.Set(ctx, key, data, config.TTL)
			}
			if err != nil {
				config.Logger.Warn("render cache write failed", "error", err)
			}
			return res, nil
		})
	}
}

func defaultKey(markup string, state any) (string, bool) {
	key, err := cache.Key(markup, state)
	return key, err == nil
}
