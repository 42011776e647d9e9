package cache_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octavo/infrastructure/cache"
)

func TestStoreGetAfterSet(t *testing.T) {
	s := cache.NewStore[string]("test", 0, time.Minute)

	s.Set("k", "v")

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestStoreMissOnAbsentKey(t *testing.T) {
	s := cache.NewStore[string]("test", 0, time.Minute)

	_, ok := s.Get("absent")
	assert.False(t, ok)
}

func TestStoreExpiryAgainstCallerTTL(t *testing.T) {
	s := cache.NewStore[string]("test", 0, time.Nanosecond)

	s.Set("k", "v")
	time.Sleep(2 * time.Millisecond)

	_, ok := s.Get("k")
	assert.False(t, ok, "entry older than the TTL must read as absent")

	// The entry is not deleted by the failed read; an infinite-TTL probe
	// still reaches it.
	got, ok := s.GetWithin("k", cache.TTLInfinite)
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestStoreCapEvictsOldestInserted(t *testing.T) {
	s := cache.NewStore[int]("test", 3, time.Minute)

	for i := 1; i <= 4; i++ {
		s.Set(fmt.Sprintf("k%d", i), i)
	}

	assert.Equal(t, 3, s.Len())
	_, ok := s.Get("k1")
	assert.False(t, ok, "oldest-inserted key should be evicted")
	for i := 2; i <= 4; i++ {
		_, ok := s.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok)
	}
}

func TestStoreOverwriteRefreshesInsertionOrder(t *testing.T) {
	s := cache.NewStore[int]("test", 2, time.Minute)

	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("a", 3) // re-insertion makes "b" the oldest
	s.Set("c", 4)

	_, ok := s.Get("b")
	assert.False(t, ok)
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, got)
	_, ok = s.Get("c")
	assert.True(t, ok)
}

func TestStoreSingleSlot(t *testing.T) {
	s := cache.NewStore[string]("test", 1, time.Minute)

	s.Set("first", "1")
	s.Set("second", "2")

	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("first")
	assert.False(t, ok)
	got, ok := s.Get("second")
	require.True(t, ok)
	assert.Equal(t, "2", got)
}

func TestStoreExtraPayload(t *testing.T) {
	s := cache.NewStore[[]byte]("test", 0, time.Minute)

	s.SetWithExtra("img", []byte{0xFF, 0xD8}, "image/jpeg")

	val, extra, ok := s.GetWithExtra("img", time.Minute)
	require.True(t, ok)
	assert.Equal(t, []byte{0xFF, 0xD8}, val)
	assert.Equal(t, "image/jpeg", extra)
}

func TestStoreClear(t *testing.T) {
	s := cache.NewStore[string]("test", 0, time.Minute)

	s.Set("a", "1")
	s.Set("b", "2")
	s.Clear()

	assert.Equal(t, 0, s.Len())
	_, ok := s.GetWithin("a", cache.TTLInfinite)
	assert.False(t, ok, "cleared entries must not be reachable even stale")
}

func TestStoreStats(t *testing.T) {
	s := cache.NewStore[int]("ns", 2, time.Minute)

	s.Set("a", 1)
	s.Get("a")      // hit
	s.Get("absent") // miss
	s.Set("b", 2)
	s.Set("c", 3) // evicts "a"

	st := s.Stats()
	assert.Equal(t, "ns", st.Name)
	assert.Equal(t, 2, st.Entries)
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, int64(1), st.Evictions)
	assert.False(t, st.LastSet.IsZero())
}

func TestStoreEstimateSize(t *testing.T) {
	s := cache.NewStore[string]("test", 0, time.Minute)

	assert.Zero(t, s.EstimateSize())

	s.Set("key", "some cached value")
	assert.Greater(t, s.EstimateSize(), int64(len("key")))
}
