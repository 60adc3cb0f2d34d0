// sim/cache.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/cachesim/sim/trace"
)

// Operation is the kind of memory access in a trace event.
type Operation int

const (
	OpRead Operation = iota
	OpWrite
)

func (op Operation) String() string {
	switch op {
	case OpRead:
		return "R"
	case OpWrite:
		return "W"
	default:
		return fmt.Sprintf("Operation(%d)", int(op))
	}
}

// Access is one trace event.
type Access struct {
	Op   Operation
	Addr uint64
}

// Outcome is the result of a single cache access.
type Outcome int

const (
	Miss Outcome = iota
	Hit
)

func (o Outcome) String() string {
	if o == Hit {
		return "hit"
	}
	return "miss"
}

// Line is one storage slot of a set.
// A line is created invalid and is only ever overwritten in place.
type Line struct {
	Valid          bool   // true if a block is resident
	Dirty          bool   // modified but not yet written to memory (write-back only)
	Tag            uint64 // identifies the resident block among those mapping to this set
	RecencyStamp   uint64 // clock value of the last use (LRU)
	InsertionStamp uint64 // clock value of the fill (FIFO)
}

// Set holds exactly Associativity lines, ordered by way index.
type Set struct {
	Lines []Line
}

// Cache is a single set-associative cache instance.
// All counters and the logical clock are per-instance.
type Cache struct {
	Config  CacheConfig
	NumSets uint64
	Sets    []Set
	Clock   uint64 // global access counter; the only source of recency and insertion order
	Metrics Metrics

	// Trace receives eviction records when its level enables them. May be nil.
	Trace *trace.SimulationTrace
}

// NewCache builds a cache with every line invalid and every counter at zero.
func NewCache(cfg CacheConfig) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	numSets := cfg.NumSets()
	sets := make([]Set, numSets)
	for i := range sets {
		sets[i].Lines = make([]Line, cfg.Associativity)
	}
	logrus.Debugf("Cache geometry: size=%dB block=%dB assoc=%d sets=%d replacement=%s write=%s",
		cfg.TotalSizeBytes, BlockSize, cfg.Associativity, numSets, cfg.Replacement, cfg.WritePolicy)
	return &Cache{
		Config:  cfg,
		NumSets: numSets,
		Sets:    sets,
	}, nil
}

// Decompose splits an address into its set index and tag.
// Two addresses share a line iff their block numbers differ by a multiple of NumSets.
func (c *Cache) Decompose(addr uint64) (setIndex uint64, tag uint64) {
	block := addr / BlockSize
	return block % c.NumSets, block / c.NumSets
}

// IsWriteBack reports whether the cache uses the write-back, write-allocate policy.
func (c *Cache) IsWriteBack() bool {
	return c.Config.WritePolicy == WriteBack
}

// Contains reports whether the block holding addr is resident. It does not touch any stamp.
func (c *Cache) Contains(addr uint64) bool {
	setIndex, tag := c.Decompose(addr)
	_, ok := c.lookup(&c.Sets[setIndex], tag)
	return ok
}

// Access applies one trace event to the cache and updates the counters.
func (c *Cache) Access(op Operation, addr uint64) Outcome {
	setIndex, tag := c.Decompose(addr)
	set := &c.Sets[setIndex]

	if way, ok := c.lookup(set, tag); ok {
		c.Metrics.Hits++
		line := &set.Lines[way]
		if c.Config.Replacement == LRU {
			c.Clock++
			line.RecencyStamp = c.Clock
		}
		if op == OpWrite {
			if c.IsWriteBack() {
				line.Dirty = true
			} else {
				c.Metrics.MemWrites++
			}
		}
		return Hit
	}

	c.Metrics.Misses++
	switch {
	case op == OpRead:
		c.allocate(setIndex, tag, false)
	case c.IsWriteBack():
		// write-allocate: fetch the block, then modify it in the cache
		c.allocate(setIndex, tag, true)
	default:
		// no-write-allocate: the set is left untouched
		c.Metrics.MemWrites++
	}
	return Miss
}

// lookup returns the way holding tag, if any.
func (c *Cache) lookup(set *Set, tag uint64) (int, bool) {
	for way := range set.Lines {
		if set.Lines[way].Valid && set.Lines[way].Tag == tag {
			return way, true
		}
	}
	return 0, false
}

// allocate brings a block into the set: pick a victim, flush it if needed,
// fetch the block from memory and fill the line.
func (c *Cache) allocate(setIndex, tag uint64, dirty bool) {
	set := &c.Sets[setIndex]
	way := c.selectVictim(set)
	victim := set.Lines[way]

	flushed := c.evictIfNeeded(&set.Lines[way])
	c.Metrics.MemReads++
	c.fill(&set.Lines[way], tag, dirty)

	if !victim.Valid {
		return
	}
	c.Metrics.Evictions++
	if c.Trace.Enabled() {
		c.Trace.RecordEviction(trace.EvictionRecord{
			Clock:       c.Clock,
			SetIndex:    setIndex,
			Way:         way,
			EvictedTag:  victim.Tag,
			IncomingTag: tag,
			Dirty:       flushed,
			Reason:      c.Config.Replacement.String(),
		})
	}
}

// selectVictim picks the way to fill. An invalid line is always preferred;
// otherwise the smallest stamp for the policy wins, ties going to the lowest way.
func (c *Cache) selectVictim(set *Set) int {
	for way := range set.Lines {
		if !set.Lines[way].Valid {
			return way
		}
	}

	victim := 0
	best := c.stamp(&set.Lines[0])
	for way := 1; way < len(set.Lines); way++ {
		if s := c.stamp(&set.Lines[way]); s < best {
			best = s
			victim = way
		}
	}
	return victim
}

// stamp returns the ordering key the replacement policy compares.
func (c *Cache) stamp(line *Line) uint64 {
	if c.Config.Replacement == FIFO {
		return line.InsertionStamp
	}
	return line.RecencyStamp
}

// evictIfNeeded flushes a valid dirty line under write-back and reports whether it did.
func (c *Cache) evictIfNeeded(line *Line) bool {
	if line.Valid && line.Dirty && c.IsWriteBack() {
		c.Metrics.MemWrites++
		c.Metrics.DirtyEvictions++
		return true
	}
	return false
}

// fill installs tag into line. A fill is always the newest and most recently used
// entry, so both stamps are refreshed regardless of policy.
func (c *Cache) fill(line *Line, tag uint64, dirty bool) {
	c.Clock++
	line.Valid = true
	line.Tag = tag
	line.Dirty = dirty
	line.RecencyStamp = c.Clock
	line.InsertionStamp = c.Clock
}
