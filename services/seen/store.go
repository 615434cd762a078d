// Package seen tracks which detail URLs have already been handled.
package seen

import (
	"context"
	"fmt"

	"sjsage522/rafflemonitor/config"
	"sjsage522/rafflemonitor/logger"
	"sjsage522/rafflemonitor/pkg/errors"
)

// Store is the set of detail URLs already notified, or claimed for
// notification, by this monitor.
type Store interface {
	// Has reports whether url is in the set
	Has(ctx context.Context, url string) (bool, error)

	// Add inserts url into the set. Adding a present url is a no-op.
	Add(ctx context.Context, url string) error
}

// Open creates the store selected by cfg.SeenStore. External backends are
// pinged once so a wrong address fails at startup instead of on the first
// cycle.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	log := logger.ForStore()

	switch cfg.SeenStore {
	case "", config.SeenStoreMemory:
		log.Info().Str("backend", config.SeenStoreMemory).Msg("Seen store ready")
		return NewMemoryStore(), nil

	case config.SeenStoreMemcache:
		store := NewMemcacheStore(cfg.MemcacheAddr)
		if err := store.Ping(); err != nil {
			return nil, err
		}
		log.Info().Str("backend", config.SeenStoreMemcache).Str("addr", cfg.MemcacheAddr).Msg("Seen store ready")
		return store, nil

	case config.SeenStoreRedis:
		store := NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.RedisSeenKey)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		log.Info().
			Str("backend", config.SeenStoreRedis).
			Str("addr", cfg.RedisAddr).
			Str("key", cfg.RedisSeenKey).
			Msg("Seen store ready")
		return store, nil

	default:
		return nil, errors.NewConfiguration(fmt.Sprintf("unknown seen store %q", cfg.SeenStore), nil)
	}
}
