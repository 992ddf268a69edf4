package bustle

import "sync"

// barrier is a cyclic rendezvous point blocking its arrivals until a fixed
// party count is reached. Go's standard library has no equivalent to
// Rust's std::sync::Barrier, so this is hand-rolled on sync.Mutex and
// sync.Cond, the same pair of primitives the collection under test's own
// concurrency is expected to build on. The run uses one, sized
// threads+1, twice: to release workers at a coordinated start and to
// rendezvous at the end of the measured region.
type barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	waiting    int
	generation int
}

// newBarrier creates a barrier that releases once parties goroutines have
// called Wait.
func newBarrier(parties int) *barrier {
	b := &barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks the calling goroutine until parties goroutines have called
// Wait on this barrier, then releases all of them together.
func (b *barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return
	}

	for gen == b.generation {
		b.cond.Wait()
	}
}
