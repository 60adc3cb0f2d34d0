package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// mustNewCache builds a cache or fails the test.
func mustNewCache(t *testing.T, size, assoc uint64, repl ReplacementPolicy, wp WritePolicy) *Cache {
	t.Helper()
	c, err := NewCache(CacheConfig{
		TotalSizeBytes: size,
		Associativity:  assoc,
		Replacement:    repl,
		WritePolicy:    wp,
	})
	require.NoError(t, err)
	return c
}

// replay applies accesses in order and returns the outcomes.
func replay(c *Cache, accesses ...Access) []Outcome {
	outcomes := make([]Outcome, 0, len(accesses))
	for _, a := range accesses {
		outcomes = append(outcomes, c.Access(a.Op, a.Addr))
	}
	return outcomes
}

func r(addr uint64) Access { return Access{Op: OpRead, Addr: addr} }
func w(addr uint64) Access { return Access{Op: OpWrite, Addr: addr} }

// randomAccesses generates a reproducible mixed trace over a bounded address span
// so that capacity misses and reuse both occur.
func randomAccesses(seed int64, n int, span uint64, writeFrac float64) []Access {
	rng := rand.New(rand.NewSource(seed))
	accesses := make([]Access, n)
	for i := range accesses {
		op := OpRead
		if rng.Float64() < writeFrac {
			op = OpWrite
		}
		accesses[i] = Access{Op: op, Addr: uint64(rng.Int63n(int64(span)))}
	}
	return accesses
}

// countWrites returns the number of write operations in accesses.
func countWrites(accesses []Access) uint64 {
	var n uint64
	for _, a := range accesses {
		if a.Op == OpWrite {
			n++
		}
	}
	return n
}
