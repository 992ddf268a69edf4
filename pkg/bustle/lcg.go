package bustle

// lcgNext advances the per-worker find_seq cursor using the linear
// congruential recurrence find_seq <- (a*find_seq + c) mod n, with
// a = n/2+1, c = n/4-1, and the modulus taken via bitmask n-1. n must be a
// power of two strictly greater than 4, which workload validation
// enforces for insert_keys_per_thread; under that condition gcd(a, n) = 1
// and the recurrence has full period, visiting every value in [0, n)
// exactly once before repeating.
func lcgNext(x, n uint64) uint64 {
	a := n/2 + 1
	c := n/4 - 1
	mask := n - 1
	return (a*x + c) & mask
}
