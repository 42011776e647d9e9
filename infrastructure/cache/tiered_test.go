package cache_test

import (
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octavo/infrastructure/cache"
	"octavo/infrastructure/config"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		ListTTL:         30 * time.Minute,
		DetailTTL:       time.Hour,
		HierarchyTTL:    time.Hour,
		CommentsTTL:     30 * time.Minute,
		ProfileTTL:      time.Hour,
		SearchTTL:       10 * time.Minute,
		DerivedTTL:      24 * time.Hour,
		MediaTTL:        24 * time.Hour,
		HighlightsCap:   50,
		DetailCap:       100,
		HandleCap:       500,
		ProfileEventCap: 1000,
	}
}

func TestTieredNamespaceRegistry(t *testing.T) {
	tc := cache.NewTiered(testCacheConfig(), nil)

	stats := tc.Stats()
	names := make([]string, 0, len(stats))
	for _, st := range stats {
		names = append(names, st.Name)
	}

	assert.Equal(t, []string{
		cache.NamespaceListPublications,
		cache.NamespaceListArticles,
		cache.NamespaceListHighlights,
		cache.NamespaceDetailPub,
		cache.NamespaceDetailArticle,
		cache.NamespaceHierarchy,
		cache.NamespaceComments,
		cache.NamespaceHandle,
		cache.NamespaceProfile,
		cache.NamespaceSearch,
		cache.NamespaceDerived,
		cache.NamespaceMedia,
	}, names)
}

func TestTieredClearAll(t *testing.T) {
	tc := cache.NewTiered(testCacheConfig(), nil)

	ev := &nostr.Event{ID: "aa", Kind: 30040}
	tc.Publications.Set("100:abcdef01", []*nostr.Event{ev})
	tc.PublicationDetail.Set("30040:pk:ident", ev)
	tc.Handles.Set("pk", "alice")

	tc.ClearAll()

	for _, st := range tc.Stats() {
		assert.Zero(t, st.Entries, "namespace %s should be empty", st.Name)
	}
}

func TestTieredListToDetailReadThrough(t *testing.T) {
	cfg := testCacheConfig()
	cfg.ListTTL = time.Nanosecond // expire list entries immediately
	tc := cache.NewTiered(cfg, nil)

	ev := &nostr.Event{ID: "bb", Kind: 30040, PubKey: "pk"}
	tc.Publications.Set("100:abcdef01", []*nostr.Event{ev})
	time.Sleep(2 * time.Millisecond)

	// The fresh read misses, the stale probe still sees the list.
	_, ok := tc.Publications.Get("100:abcdef01")
	assert.False(t, ok)
	list, ok := tc.Publications.GetWithin("100:abcdef01", cache.TTLInfinite)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "bb", list[0].ID)
}

func TestTieredSizes(t *testing.T) {
	tc := cache.NewTiered(testCacheConfig(), nil)

	tc.Derived.SetWithExtra("hash:epub", []byte("binary"), "application/epub+zip")

	sizes, total := tc.Sizes()
	assert.Len(t, sizes, 12)
	assert.Greater(t, sizes[cache.NamespaceDerived], int64(0))
	assert.GreaterOrEqual(t, total, sizes[cache.NamespaceDerived])
}
