// Package refcollection provides an in-memory, sharded concurrent map
// satisfying bustle.Collection/bustle.Handle. It exists as the reference
// engine the test suite and demo CLI measure against — not a production
// storage backend — grounded on the teacher's capacity-bounded
// sync.RWMutex-guarded cache (pkg/storage/cache/memory.go), restructured
// into independently-locked shards so concurrent workers contend less,
// each shard additionally backed by a Bloom filter used the same way the
// teacher's cache-gossip code uses one: a cheap probabilistic membership
// pre-check, here applied locally instead of exchanged between peers.
package refcollection

import (
	"encoding/binary"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/exldna/bustlekv/pkg/bustle"
)

const shardCount = 32

// Map is a sharded, capacity-hinted concurrent map keyed by K, satisfying
// bustle.Collection[K]. K must be comparable and convertible to a byte
// slice via keyBytes so each shard's Bloom filter can index it.
type Map[K comparable] struct {
	keyBytes func(K) []byte
	shards   [shardCount]*shard[K]
}

type shard[K comparable] struct {
	mu     sync.RWMutex
	data   map[K]struct{}
	filter *bloom.BloomFilter
}

// New builds a Map sized to capacity, the Go realization of the plug-in
// contract's with_capacity operation. keyBytes must deterministically
// encode a key to bytes for the Bloom filter; callers typically pass a
// small closure around encoding/binary for integer-like keys or
// []byte(string(k)) for string keys.
func New[K comparable](capacity int, keyBytes func(K) []byte) *Map[K] {
	perShard := uint(capacity/shardCount) + 1
	m := &Map[K]{keyBytes: keyBytes}
	for i := range m.shards {
		m.shards[i] = &shard[K]{
			data:   make(map[K]struct{}, capacity/shardCount+1),
			filter: bloom.NewWithEstimates(perShard, 0.01),
		}
	}
	return m
}

// NewCollectionFactory adapts New into a bustle.NewCollection[K] factory,
// ready to pass into Workload.RunSilently.
func NewCollectionFactory[K comparable](keyBytes func(K) []byte) bustle.NewCollection[K] {
	return func(capacity int) bustle.Collection[K] {
		return New[K](capacity, keyBytes)
	}
}

func (m *Map[K]) shardFor(key K) *shard[K] {
	h := fnv1a(m.keyBytes(key))
	return m.shards[h%shardCount]
}

func fnv1a(b []byte) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= prime64
	}
	return h
}

// Pin returns a handle into this map. Cheap: it allocates no per-worker
// resources beyond the returned value itself.
func (m *Map[K]) Pin() bustle.Handle[K] {
	return &handle[K]{m: m}
}

type handle[K comparable] struct {
	m *Map[K]
}

// Get reports whether key has a mapping. The shard's Bloom filter is
// checked first as a fast negative pre-check; a filter miss is a
// guaranteed absence, a filter hit still requires the map lookup to rule
// out a false positive. Both checks happen under the shard's read lock —
// the filter's bitset is mutated by Insert under the write lock, so
// reading it outside the lock would race.
func (h *handle[K]) Get(key K) bool {
	s := h.m.shardFor(key)
	keyBytes := h.m.keyBytes(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.filter.Test(keyBytes) {
		return false
	}
	_, ok := s.data[key]
	return ok
}

// Insert reports whether key was newly inserted.
func (h *handle[K]) Insert(key K) bool {
	s := h.m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false
	}
	s.data[key] = struct{}{}
	s.filter.Add(h.m.keyBytes(key))
	return true
}

// Uint64KeyBytes encodes a uint64 key as 8 big-endian bytes, the Bloom
// filter key-encoding for bustle's uint64-native key space.
func Uint64KeyBytes(k uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, k)
	return b
}
