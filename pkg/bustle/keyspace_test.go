package bustle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildOpProgramHasExactMixCounts(t *testing.T) {
	rng := newRunRNG([32]byte{1, 2, 3})
	program := buildOpProgram(Mix{Read: 37, Insert: 63}, rng)

	require.Len(t, program, 100)

	var reads, inserts int
	for _, op := range program {
		switch op {
		case opRead:
			reads++
		case opInsert:
			inserts++
		}
	}
	require.Equal(t, 37, reads)
	require.Equal(t, 63, inserts)
}

func TestBuildOpProgramIsDeterministicForSameSeed(t *testing.T) {
	seed := [32]byte{9, 9, 9}
	p1 := buildOpProgram(Mix{Read: 50, Insert: 50}, newRunRNG(seed))
	p2 := buildOpProgram(Mix{Read: 50, Insert: 50}, newRunRNG(seed))
	require.Equal(t, p1, p2)
}

func TestGenerateAllKeyBuffersProducesDistinctKeysAcrossThreads(t *testing.T) {
	rng := newRunRNG([32]byte{5})
	buffers, err := generateAllKeyBuffers(context.Background(), rng, 4, 8, identityKey)
	require.NoError(t, err)
	require.Len(t, buffers, 4)
	seen := make(map[uint64]bool)
	for _, b := range buffers {
		require.Len(t, b, 8)
		for _, k := range b {
			require.False(t, seen[k], "key %d appears more than once", k)
			seen[k] = true
		}
	}
}

func TestGenerateAllKeyBuffersIsDeterministicForSameSeed(t *testing.T) {
	seed := [32]byte{7, 7}
	b1, err := generateAllKeyBuffers(context.Background(), newRunRNG(seed), 3, 8, identityKey)
	require.NoError(t, err)
	b2, err := generateAllKeyBuffers(context.Background(), newRunRNG(seed), 3, 8, identityKey)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}
