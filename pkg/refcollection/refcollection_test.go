package refcollection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstInsertReturnsTrue(t *testing.T) {
	m := New[uint64](1024, Uint64KeyBytes)
	h := m.Pin()
	require.True(t, h.Insert(42))
}

func TestSecondInsertOfSameKeyReturnsFalse(t *testing.T) {
	m := New[uint64](1024, Uint64KeyBytes)
	h := m.Pin()
	require.True(t, h.Insert(7))
	require.False(t, h.Insert(7))
}

func TestGetMissesBeforeInsertAndHitsAfter(t *testing.T) {
	m := New[uint64](1024, Uint64KeyBytes)
	h := m.Pin()
	require.False(t, h.Get(1))
	h.Insert(1)
	require.True(t, h.Get(1))
}

func TestConcurrentInsertsAreAllDistinct(t *testing.T) {
	m := New[uint64](4096, Uint64KeyBytes)

	const workers = 8
	const perWorker = 256

	var wg sync.WaitGroup
	results := make([][]bool, workers)
	for w := 0; w < workers; w++ {
		w := w
		results[w] = make([]bool, perWorker)
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := m.Pin()
			for i := 0; i < perWorker; i++ {
				key := uint64(w*perWorker + i)
				results[w][i] = h.Insert(key)
			}
		}()
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			require.True(t, results[w][i], "worker %d index %d", w, i)
		}
	}
}

func TestNewCollectionFactoryBuildsUsableCollection(t *testing.T) {
	factory := NewCollectionFactory[uint64](Uint64KeyBytes)
	collection := factory(64)
	h := collection.Pin()
	require.True(t, h.Insert(1))
	require.True(t, h.Get(1))
}
