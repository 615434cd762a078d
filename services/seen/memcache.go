package seen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"

	"github.com/bradfitz/gomemcache/memcache"

	"sjsage522/rafflemonitor/pkg/errors"
)

// memcacheKeyPrefix namespaces seen entries. Keys are hashed because
// memcache rejects keys longer than 250 bytes or containing spaces.
const memcacheKeyPrefix = "rafflemonitor:seen:"

// MemcacheStore implements Store with one memcache key per url. Entries
// never expire, but memcached may still evict them under memory pressure.
type MemcacheStore struct {
	client *memcache.Client
}

// NewMemcacheStore creates a new memcache store
func NewMemcacheStore(serverAddr string) *MemcacheStore {
	return &MemcacheStore{
		client: memcache.New(serverAddr),
	}
}

// Ping checks that the server is reachable
func (m *MemcacheStore) Ping() error {
	if err := m.client.Ping(); err != nil {
		return errors.NewStore("memcache", "server unreachable", err)
	}
	return nil
}

// Has reports whether url is in the set
func (m *MemcacheStore) Has(ctx context.Context, url string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := m.client.Get(memcacheKey(url))
	if stderrors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, errors.NewStore(url, "memcache get failed", err)
	}
	return true, nil
}

// Add inserts url into the set
func (m *MemcacheStore) Add(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := m.client.Set(&memcache.Item{
		Key:   memcacheKey(url),
		Value: []byte(url),
	})
	if err != nil {
		return errors.NewStore(url, "memcache set failed", err)
	}
	return nil
}

// Close releases idle connections
func (m *MemcacheStore) Close() error {
	return m.client.Close()
}

func memcacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return memcacheKeyPrefix + hex.EncodeToString(sum[:])
}
