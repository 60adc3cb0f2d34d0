// Package testutil provides shared test infrastructure for the cache simulator.
// It consolidates trace-file fixtures used across sim/ sub-package tests.
package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTraceFile writes lines (one record each) to a file in a fresh temp
// directory and returns its path.
func WriteTraceFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.txt")
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write trace file: %v", err)
	}
	return path
}

// RandomTraceLines generates n reproducible records over addresses in [0, span),
// mixing operation case and the optional 0x prefix. It also returns the number
// of write records.
func RandomTraceLines(seed int64, n int, span uint64, writeFrac float64) (lines []string, writes int) {
	rng := rand.New(rand.NewSource(seed))
	lines = make([]string, n)
	for i := range lines {
		op := "R"
		if rng.Float64() < writeFrac {
			op = "W"
			writes++
		}
		if rng.Intn(2) == 0 {
			op = strings.ToLower(op)
		}
		addr := uint64(rng.Int63n(int64(span)))
		if rng.Intn(2) == 0 {
			lines[i] = fmt.Sprintf("%s 0x%x", op, addr)
		} else {
			lines[i] = fmt.Sprintf("%s %x", op, addr)
		}
	}
	return lines, writes
}
