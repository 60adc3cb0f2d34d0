// Package sim provides the set-associative cache model and the trace replay loop.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - config.go: CacheConfig, geometry validation, replacement and write policies
//   - cache.go: address decomposition, hit detection, victim selection, fills
//   - simulator.go: the replay loop that feeds trace events into the cache
//
// # Architecture
//
// The sim package owns the model; collaborators live in sub-packages:
//   - sim/workload/: trace file reading (implements AccessSource)
//   - sim/trace/: eviction decision recording and summaries
//
// All state (sets, counters, the logical clock) is owned by a Cache value, so
// independent caches can run side by side in one process.
//
// # Key Interfaces
//
//   - AccessSource: a lazy, finite stream of (operation, address) events
package sim
