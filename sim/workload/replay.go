package workload

import (
	"github.com/inference-sim/cachesim/sim"
	"github.com/inference-sim/cachesim/sim/trace"
)

// ReplayResult holds the outcome of replaying one trace against one cache.
type ReplayResult struct {
	Config    sim.CacheConfig
	Metrics   sim.Metrics
	Records   int   // well-formed records replayed
	Truncated error // non-nil if replay stopped at a malformed record
}

// ReplayFile builds a cache for cfg, then replays the trace at path through it.
// The cache is built first so that configuration errors win over open errors.
// st may be nil; when set it is attached to the cache for eviction recording.
func ReplayFile(cfg sim.CacheConfig, path string, st *trace.SimulationTrace) (*ReplayResult, error) {
	cache, err := sim.NewCache(cfg)
	if err != nil {
		return nil, err
	}
	cache.Trace = st

	reader, err := OpenTrace(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	s := &sim.Simulator{Cache: cache, Source: reader}
	s.Run()

	return &ReplayResult{
		Config:    cfg,
		Metrics:   cache.Metrics,
		Records:   reader.Records(),
		Truncated: reader.Err(),
	}, nil
}
