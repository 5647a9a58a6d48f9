package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"backend.url": "http://localhost:5000", "search.page_size": int64(20)}
	store := NewConfigStore(seed)

	seed["backend.url"] = "changed"

	got, ok := store.Get("backend.url")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:5000", got)
	assert.Equal(t, 2, store.Len())
}

func TestConfigStore_SetGetDelete(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("summary.enabled", true))
	require.NoError(t, store.Set("summary.enabled", false))

	got, ok := store.Get("summary.enabled")
	assert.True(t, ok)
	assert.Equal(t, false, got)

	require.NoError(t, store.Delete("summary.enabled"))
	require.NoError(t, store.Delete("never.set"))

	_, ok = store.Get("summary.enabled")
	assert.False(t, ok)
}

func TestConfigStore_SaveCounts(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Save())
	require.NoError(t, store.Save())

	assert.Equal(t, 2, store.Saves())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("cache.key_%d", n%10)
			_ = store.Set(key, n)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, store.Len())
}
