package seen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/rafflemonitor/config"
	"sjsage522/rafflemonitor/pkg/errors"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MemcacheStore)(nil)
	_ Store = (*RedisStore)(nil)
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ok, err := store.Has(ctx, "https://releases.43einhalb.com/en/product/a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Add(ctx, "https://releases.43einhalb.com/en/product/a"))
	require.NoError(t, store.Add(ctx, "https://releases.43einhalb.com/en/product/a"))
	assert.Equal(t, 1, store.Len())

	ok, err = store.Has(ctx, "https://releases.43einhalb.com/en/product/a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Has(ctx, "https://releases.43einhalb.com/en/product/b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), &config.Config{SeenStore: config.SeenStoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{SeenStore: "bolt"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfiguration, errors.TypeOf(err))
}

func TestMemcacheKey(t *testing.T) {
	key := memcacheKey("https://releases.43einhalb.com/en/product/a?x=a b")
	assert.True(t, len(key) < 250)
	assert.NotContains(t, key, " ")
	assert.Equal(t, key, memcacheKey("https://releases.43einhalb.com/en/product/a?x=a b"))
	assert.NotEqual(t, key, memcacheKey("https://releases.43einhalb.com/en/product/b"))
}
