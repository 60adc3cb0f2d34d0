// Package trace provides replacement-decision recording for cache replay analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EvictionRecord captures a single replacement of a valid line.
type EvictionRecord struct {
	Clock       uint64 // global access counter value of the fill that displaced the line
	SetIndex    uint64
	Way         int
	EvictedTag  uint64
	IncomingTag uint64
	Dirty       bool   // true if the evicted line was flushed to memory
	Reason      string // replacement policy that chose the victim ("lru" or "fifo")
}
