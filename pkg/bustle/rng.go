package bustle

import (
	"io"
	"math/rand/v2"

	prngchacha "github.com/sixafter/prng-chacha"
)

// deriveSeed implements Phase A: if the caller supplied a seed, use it
// verbatim; otherwise draw 32 random bytes from a non-deterministic
// source. prng-chacha seeds itself from crypto/rand internally and gives
// the caller no way to pin its output, which is exactly why it is used
// only here and never for the deterministic generation phases below.
func deriveSeed(seed *[32]byte) ([32]byte, error) {
	if seed != nil {
		return *seed, nil
	}

	var s [32]byte
	if _, err := io.ReadFull(prngchacha.Reader, s[:]); err != nil {
		return s, &ResourceFailure{Stage: "seed derivation", Cause: err}
	}
	return s, nil
}

// runRNG wraps the deterministic PCG generator used for everything after
// the initial seed draw: the op-mix shuffle and the per-thread seeds
// handed to generator workers. Consuming it in a fixed order is what makes
// the whole run reproducible given a seed.
type runRNG struct {
	*rand.Rand
}

// newRunRNG builds the run's deterministic PRNG from a 32-byte seed. PCG
// takes two uint64 half-seeds; the 32 bytes are read as four big-endian
// uint64 words, and words 0 and 2 are XORed into the first half-seed and
// words 1 and 3 into the second, which is enough entropy spread for a
// non-cryptographic generator.
func newRunRNG(seed [32]byte) *runRNG {
	seed1 := beUint64(seed[0:8]) ^ beUint64(seed[16:24])
	seed2 := beUint64(seed[8:16]) ^ beUint64(seed[24:32])
	return &runRNG{Rand: rand.New(rand.NewPCG(seed1, seed2))}
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// nextSeed draws a fresh 32-byte seed from the run RNG, for handing to a
// per-thread generator worker.
func (r *runRNG) nextSeed() [32]byte {
	var s [32]byte
	for i := 0; i < 32; i += 8 {
		v := r.Uint64()
		s[i] = byte(v >> 56)
		s[i+1] = byte(v >> 48)
		s[i+2] = byte(v >> 40)
		s[i+3] = byte(v >> 32)
		s[i+4] = byte(v >> 24)
		s[i+5] = byte(v >> 16)
		s[i+6] = byte(v >> 8)
		s[i+7] = byte(v)
	}
	return s
}
