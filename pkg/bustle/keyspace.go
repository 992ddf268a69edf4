package bustle

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// opKind is one entry of the shared operation program.
type opKind uint8

const (
	opRead opKind = iota
	opInsert
)

// buildOpProgram implements Phase B: a sequence of exactly 100 entries —
// mix.Read copies of Read followed by mix.Insert copies of Insert —
// shuffled uniformly with the run RNG (Fisher-Yates), then frozen as
// read-only. The shuffle is driven by the run's own PRNG rather than the
// math/rand/v2 package-level shuffle so that the whole run, including the
// op program, is reproducible from the run's seed.
func buildOpProgram(mix Mix, rng *runRNG) []opKind {
	program := make([]opKind, 0, 100)
	for i := uint8(0); i < mix.Read; i++ {
		program = append(program, opRead)
	}
	for i := uint8(0); i < mix.Insert; i++ {
		program = append(program, opInsert)
	}

	for i := len(program) - 1; i > 0; i-- {
		j := int(rng.Uint64() % uint64(i+1))
		program[i], program[j] = program[j], program[i]
	}
	return program
}

// generateKeyBuffer implements one generator worker of Phase C: it locally
// seeds a fast PRNG from the given 32-byte seed and produces n keys by
// drawing 64-bit values and mapping each through keyFromUint64.
func generateKeyBuffer[K any](seed [32]byte, n uint64, keyFromUint64 KeyFromUint64[K]) []K {
	local := newRunRNG(seed)
	keys := make([]K, n)
	for i := range keys {
		keys[i] = keyFromUint64(local.Uint64())
	}
	return keys
}

// generateAllKeyBuffers implements the fan-out of Phase C: for each of the
// threads workers, draw a fresh seed from the run RNG (in thread-index
// order, so the whole run stays reproducible), then spawn a generator
// worker building that thread's private key buffer.
func generateAllKeyBuffers[K any](ctx context.Context, rng *runRNG, threads int, n uint64, keyFromUint64 KeyFromUint64[K]) ([][]K, error) {
	seeds := make([][32]byte, threads)
	for i := 0; i < threads; i++ {
		seeds[i] = rng.nextSeed()
	}

	buffers := make([][]K, threads)
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		i := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = classifyPanic(i, r)
				}
			}()
			buffers[i] = generateKeyBuffer(seeds[i], n, keyFromUint64)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &ResourceFailure{Stage: "key generation", Cause: err}
	}
	return buffers, nil
}
