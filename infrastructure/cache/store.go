// Package cache implements the in-memory tiered cache backing warm request
// paths. Each namespace is an independent keyed store with its own TTL and
// size cap; eviction removes the oldest-inserted key first.
package cache

import (
	"container/list"
	"encoding/json"
	"sync"
	"time"
)

// TTLInfinite disables the freshness check on a read. Probes that mine stale
// list entries to seed detail namespaces pass it in place of a real TTL.
const TTLInfinite time.Duration = -1

// Stats describes one namespace for the status endpoint.
type Stats struct {
	Name      string    `json:"name"`
	Entries   int       `json:"entries"`
	Hits      int64     `json:"hits"`
	Misses    int64     `json:"misses"`
	Evictions int64     `json:"evictions"`
	LastSet   time.Time `json:"last_set"`
}

// Namespace is the uniform view of a store used by the façade for
// clear-all, stats, and size reporting.
type Namespace interface {
	Name() string
	Len() int
	Clear()
	Stats() Stats
	EstimateSize() int64
}

// item is a stored value with its insertion time and optional extra payload.
type item[V any] struct {
	key      string
	value    V
	extra    string
	storedAt time.Time
	elem     *list.Element
}

// Store is a single cache namespace. Entries are never removed on a failed
// freshness check, only on eviction, overwrite, or Clear; a stale entry
// remains reachable through GetWithin with TTLInfinite.
type Store[V any] struct {
	mu    sync.RWMutex
	name  string
	cap   int // 0 means unbounded
	ttl   time.Duration
	items map[string]*item[V]
	order *list.List // front is newest, back is oldest

	hits      int64
	misses    int64
	evictions int64
	lastSet   time.Time
}

// NewStore creates a namespace with the given capacity and default TTL.
// A capacity of zero leaves the namespace unbounded.
func NewStore[V any](name string, capacity int, ttl time.Duration) *Store[V] {
	return &Store[V]{
		name:  name,
		cap:   capacity,
		ttl:   ttl,
		items: make(map[string]*item[V]),
		order: list.New(),
	}
}

// Get retrieves a value using the namespace's configured TTL.
func (s *Store[V]) Get(key string) (V, bool) {
	return s.GetWithin(key, s.ttl)
}

// GetWithin retrieves a value judged against the caller's TTL. Absence and
// staleness are both reported as a false second return, never as an error.
func (s *Store[V]) GetWithin(key string, ttl time.Duration) (V, bool) {
	v, _, ok := s.GetWithExtra(key, ttl)
	return v, ok
}

// GetExtra retrieves a value and its extra payload using the configured TTL.
func (s *Store[V]) GetExtra(key string) (V, string, bool) {
	return s.GetWithExtra(key, s.ttl)
}

// GetWithExtra is GetWithin plus the extra payload recorded at set time.
func (s *Store[V]) GetWithExtra(key string, ttl time.Duration) (V, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	it, ok := s.items[key]
	if !ok {
		s.misses++
		return zero, "", false
	}
	if ttl != TTLInfinite && time.Since(it.storedAt) > ttl {
		s.misses++
		return zero, "", false
	}

	s.hits++
	return it.value, it.extra, true
}

// Set stores a value under key, recording now as its insertion time.
func (s *Store[V]) Set(key string, value V) {
	s.SetWithExtra(key, value, "")
}

// SetWithExtra stores a value with an extra payload. An overwrite counts as a
// fresh insertion for eviction ordering. When the namespace is at capacity the
// oldest-inserted key is evicted first.
func (s *Store[V]) SetWithExtra(key string, value V, extra string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[key]; ok {
		s.order.Remove(existing.elem)
		delete(s.items, key)
	}

	for s.cap > 0 && len(s.items) >= s.cap && s.order.Len() > 0 {
		oldest := s.order.Back()
		old := oldest.Value.(*item[V])
		s.order.Remove(oldest)
		delete(s.items, old.key)
		s.evictions++
	}

	it := &item[V]{key: key, value: value, extra: extra, storedAt: time.Now()}
	it.elem = s.order.PushFront(it)
	s.items[key] = it
	s.lastSet = it.storedAt
}

// Name returns the namespace name.
func (s *Store[V]) Name() string {
	return s.name
}

// Len returns the number of entries currently held, fresh or stale.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear returns the namespace to its empty state. Counters survive.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*item[V])
	s.order.Init()
}

// Stats returns a snapshot of the namespace counters.
func (s *Store[V]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Name:      s.name,
		Entries:   len(s.items),
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		LastSet:   s.lastSet,
	}
}

// EstimateSize returns a best-effort byte estimate of the namespace contents,
// computed from the JSON encoding of each value. Values that fail to encode
// contribute only their key length.
func (s *Store[V]) EstimateSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for key, it := range s.items {
		total += int64(len(key) + len(it.extra))
		if b, err := json.Marshal(it.value); err == nil {
			total += int64(len(b))
		}
	}
	return total
}
