package bustle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/exldna/bustlekv/pkg/logging"
)

// RunOption customizes a single RunSilently invocation.
type RunOption func(*runConfig)

type runConfig struct {
	logger *logging.Logger
}

// WithLogger attaches a logger to the run. Phase transitions (seed
// derivation, key-space generation, prefill, mix, join) are logged at
// Debug/Info. Without this option the run logs nothing.
func WithLogger(l *logging.Logger) RunOption {
	return func(c *runConfig) { c.logger = l }
}

// RunSilently drives one complete benchmark run: construction, prefill,
// the barrier-timed mix phase, and aggregation into a single Measurement.
// It is the library's single entry point, matching the reference
// harness's run_silently.
func (w *Workload[K]) RunSilently(ctx context.Context, newCollection NewCollection[K], keyFromUint64 KeyFromUint64[K], opts ...RunOption) (Measurement, error) {
	cfg := runConfig{logger: logging.NewLogger(&logging.Config{Level: logging.ErrorLevel})}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger.WithComponent("runner")

	d, err := w.validate()
	if err != nil {
		return Measurement{}, err
	}

	seed, err := deriveSeed(w.seed)
	if err != nil {
		return Measurement{}, err
	}
	log.Debug("seed derived")

	rng := newRunRNG(seed)
	program := buildOpProgram(w.mix, rng)
	log.Debug("operation program built")

	buffers, err := generateAllKeyBuffers(ctx, rng, w.threads, d.insertKeysPerThread, keyFromUint64)
	if err != nil {
		return Measurement{}, err
	}
	log.Info("key buffers generated", map[string]interface{}{"threads": w.threads, "keys_per_thread": d.insertKeysPerThread})

	collection := newCollection(d.initialCapacity)

	if err := prefillAll(collection, buffers, d.prefillPerThread); err != nil {
		return Measurement{}, err
	}
	log.Info("prefill complete", map[string]interface{}{"prefill_per_thread": d.prefillPerThread})

	spent, err := runMixPhase(collection, buffers, program, d.opsPerThread, d.prefillPerThread, w.threads)
	if err != nil {
		return Measurement{}, err
	}
	log.Info("mix phase complete", map[string]interface{}{"spent": spent.String()})

	return aggregate(d.totalOps, spent, w.threads), nil
}

// prefillAll runs the (untimed) prefill phase: for each worker, pin a
// handle and insert the first prefillPerThread keys of its buffer,
// asserting every insert reports success.
func prefillAll[K any](collection Collection[K], buffers [][]K, prefillPerThread uint64) error {
	g := &errgroup.Group{}
	for i, keys := range buffers {
		i, keys := i, keys
		g.Go(func() error {
			return prefillWorker(i, collection.Pin(), keys, prefillPerThread)
		})
	}
	return g.Wait()
}

func prefillWorker[K any](threadID int, handle Handle[K], keys []K, prefillPerThread uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = classifyPanic(threadID, r)
		}
	}()

	for i := uint64(0); i < prefillPerThread; i++ {
		if !handle.Insert(keys[i]) {
			panic(&CorrectnessViolation{Op: "insert", ThreadID: threadID, Index: i, Want: true, Got: false})
		}
	}
	return nil
}

// runMixPhase spawns the timed mix workers, brackets the measured
// interval with two barrier rendezvous from the runner's own goroutine,
// and returns the elapsed wall-clock time.
func runMixPhase[K any](collection Collection[K], buffers [][]K, program []opKind, opsPerThread, prefillPerThread uint64, threads int) (time.Duration, error) {
	br := newBarrier(threads + 1)

	g := &errgroup.Group{}
	for i, keys := range buffers {
		i, keys := i, keys
		g.Go(func() error {
			return mixWorker(i, collection.Pin(), keys, program, opsPerThread, prefillPerThread, br)
		})
	}

	br.Wait() // coordinated start
	start := time.Now()
	br.Wait() // terminal rendezvous
	elapsed := time.Since(start)

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return elapsed, nil
}

// mixWorker is the measured inner kernel run by one goroutine: it cycles
// the shared operation program for exactly opsPerThread operations against
// its private key buffer, advancing find_seq via the LCG recurrence and
// insert_seq monotonically, asserting the engine's reported booleans at
// every step. The barrier release is scoped to the goroutine's stack
// frame via defer, so it fires on both normal return and panic — the Go
// analogue of the reference implementation's scopeguard.
func mixWorker[K any](threadID int, handle Handle[K], keys []K, program []opKind, opsPerThread, prefillPerThread uint64, br *barrier) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = classifyPanic(threadID, r)
		}
		br.Wait()
	}()

	br.Wait() // leading barrier arrival

	n := uint64(len(keys))

	insertSeq := prefillPerThread
	findSeq := uint64(0)
	programLen := uint64(len(program))

	for i := uint64(0); i < opsPerThread; i++ {
		switch program[i%programLen] {
		case opRead:
			shouldFind := findSeq < insertSeq
			got := handle.Get(keys[findSeq])
			if got != shouldFind {
				panic(&CorrectnessViolation{Op: "get", ThreadID: threadID, Index: findSeq, Want: shouldFind, Got: got})
			}
			findSeq = lcgNext(findSeq, n)
		case opInsert:
			if !handle.Insert(keys[insertSeq]) {
				panic(&CorrectnessViolation{Op: "insert", ThreadID: threadID, Index: insertSeq, Want: true, Got: false})
			}
			insertSeq++
		}
	}
	return nil
}

// classifyPanic turns a recovered panic value into the harness's own
// error taxonomy: a CorrectnessViolation raised intentionally by this
// package passes through unchanged; anything else — an engine's own
// panic, a nil pointer dereference deep in a Collection implementation —
// is wrapped as an EngineFailure, since the harness does not distinguish
// engine errors from crashes.
func classifyPanic(threadID int, r interface{}) error {
	switch v := r.(type) {
	case *CorrectnessViolation:
		return v
	case *EngineFailure:
		return v
	case error:
		return &EngineFailure{ThreadID: threadID, Cause: v}
	default:
		return &EngineFailure{ThreadID: threadID, Cause: fmt.Errorf("%v", v)}
	}
}
