// Package cache stores rendered results keyed by their input.
//
// Two drivers exist: an in-process memory store and a Redis store for
// deployments with several servers.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vango-dev/enhance/internal/config"
)

// Store is a byte cache with per-entry expiry.
type Store interface {
	// Get returns the value for key. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A ttl of zero uses the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Flush removes every entry.
	Flush(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

// Key derives a cache key from markup and the state it is rendered with.
func Key(markup string, state any) (string, error) {
	h := sha256.New()
	h.Write([]byte(markup))
	h.Write([]byte{0})
	if state != nil {
		data, err := json.Marshal(state)
		if err != nil {
			return "", fmt.Errorf("cache key: %w", err)
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Open creates the store selected by cfg, or returns nil when caching is
// disabled.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	ttl := cfg.CacheTTL()

	switch cfg.Cache.Driver {
	case config.CacheMemory:
		return NewMemory(ttl), nil
	case config.CacheRedis:
		r, err := DialRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisDB, WithTTL(ttl))
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.CacheNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}
