// sim/simulator.go
package sim

import (
	"github.com/sirupsen/logrus"
)

// AccessSource is a lazy, finite, non-restartable stream of trace events.
// Next returns false once the stream is exhausted or has stopped early.
type AccessSource interface {
	Next() (Access, bool)
}

// SliceSource replays a fixed list of accesses. Useful for tests and
// programmatically built traces.
type SliceSource struct {
	accesses []Access
	pos      int
}

// NewSliceSource returns a source over accesses, in order.
func NewSliceSource(accesses []Access) *SliceSource {
	return &SliceSource{accesses: accesses}
}

// Next returns the next access, or false when all have been returned.
func (s *SliceSource) Next() (Access, bool) {
	if s.pos >= len(s.accesses) {
		return Access{}, false
	}
	a := s.accesses[s.pos]
	s.pos++
	return a, true
}

// Simulator drives one cache with one access stream.
type Simulator struct {
	Cache    *Cache
	Source   AccessSource
	Replayed uint64 // events fed to the cache so far
}

// NewSimulator builds the cache for cfg and binds it to source.
func NewSimulator(cfg CacheConfig, source AccessSource) (*Simulator, error) {
	cache, err := NewCache(cfg)
	if err != nil {
		return nil, err
	}
	return &Simulator{Cache: cache, Source: source}, nil
}

// Run replays the source to exhaustion, one event at a time and in order,
// and returns the number of events replayed.
func (s *Simulator) Run() uint64 {
	for {
		access, ok := s.Source.Next()
		if !ok {
			break
		}
		s.Cache.Access(access.Op, access.Addr)
		s.Replayed++
	}
	logrus.Debugf("Replay finished after %d accesses (hits=%d, misses=%d)",
		s.Replayed, s.Cache.Metrics.Hits, s.Cache.Metrics.Misses)
	return s.Replayed
}

// Metrics returns the cache's counters.
func (s *Simulator) Metrics() *Metrics {
	return &s.Cache.Metrics
}
