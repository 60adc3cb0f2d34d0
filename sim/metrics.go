// Tracks replay-wide cache statistics such as hits, misses and memory traffic.

package sim

import (
	"fmt"
	"io"
)

// Metrics aggregates statistics about the replay for final reporting.
type Metrics struct {
	Hits      uint64 // accesses that found their block resident
	Misses    uint64 // accesses that did not
	MemReads  uint64 // blocks fetched from memory
	MemWrites uint64 // writes that reached memory (write-through writes and dirty flushes)

	Evictions      uint64 // valid lines replaced
	DirtyEvictions uint64 // evictions that flushed a dirty line
}

// Accesses returns the number of accesses processed so far.
func (m *Metrics) Accesses() uint64 {
	return m.Hits + m.Misses
}

// MissRatio returns misses over total accesses, or 0 when nothing was accessed.
func (m *Metrics) MissRatio() float64 {
	total := m.Accesses()
	if total == 0 {
		return 0.0
	}
	return float64(m.Misses) / float64(total)
}

// Print writes the three-line result report.
func (m *Metrics) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Miss ratio %f\nwrite %d\nread %d\n", m.MissRatio(), m.MemWrites, m.MemReads)
	return err
}
