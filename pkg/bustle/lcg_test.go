package bustle

import "testing"

func TestLCGFullPeriod(t *testing.T) {
	for log2 := 3; log2 <= 16; log2++ {
		n := uint64(1) << uint(log2)
		if n <= 4 {
			continue
		}
		t.Run("", func(t *testing.T) {
			seen := make(map[uint64]bool, n)
			x := uint64(0)
			for i := uint64(0); i < n; i++ {
				if seen[x] {
					t.Fatalf("n=%d: value %d repeated after %d steps, expected full period %d", n, x, i, n)
				}
				seen[x] = true
				x = lcgNext(x, n)
			}
			if len(seen) != int(n) {
				t.Fatalf("n=%d: visited %d distinct values, want %d", n, len(seen), n)
			}
			if x != 0 {
				t.Fatalf("n=%d: sequence did not return to 0 after n steps, got %d", n, x)
			}
		})
	}
}
