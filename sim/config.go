package sim

import (
	"fmt"
	"strings"
)

// BlockSize is the fixed cache block size in bytes.
const BlockSize uint64 = 64

// MaxLines caps the line count of a single cache (4 GiB of 64-byte blocks).
const MaxLines uint64 = 1 << 26

// ReplacementPolicy selects the victim among the valid lines of a full set.
type ReplacementPolicy int

const (
	LRU  ReplacementPolicy = iota // evict the line with the oldest recency stamp
	FIFO                          // evict the line with the oldest insertion stamp
)

func (p ReplacementPolicy) String() string {
	switch p {
	case LRU:
		return "lru"
	case FIFO:
		return "fifo"
	default:
		return fmt.Sprintf("ReplacementPolicy(%d)", int(p))
	}
}

// ParseReplacementPolicy accepts "lru" or "fifo" (case-insensitive).
func ParseReplacementPolicy(name string) (ReplacementPolicy, error) {
	switch strings.ToLower(name) {
	case "lru":
		return LRU, nil
	case "fifo":
		return FIFO, nil
	}
	return 0, fmt.Errorf("unknown replacement policy %q; valid: lru, fifo", name)
}

// WritePolicy couples the hit-side write policy with the miss-side allocate policy.
type WritePolicy int

const (
	WriteThrough WritePolicy = iota // write-through, no-write-allocate
	WriteBack                       // write-back, write-allocate
)

func (p WritePolicy) String() string {
	switch p {
	case WriteThrough:
		return "write-through"
	case WriteBack:
		return "write-back"
	default:
		return fmt.Sprintf("WritePolicy(%d)", int(p))
	}
}

// ParseWritePolicy accepts "write-through" / "wt" or "write-back" / "wb" (case-insensitive).
func ParseWritePolicy(name string) (WritePolicy, error) {
	switch strings.ToLower(name) {
	case "write-through", "wt":
		return WriteThrough, nil
	case "write-back", "wb":
		return WriteBack, nil
	}
	return 0, fmt.Errorf("unknown write policy %q; valid: write-through, write-back", name)
}

// CacheConfig groups the geometry and policy parameters for NewCache.
type CacheConfig struct {
	TotalSizeBytes uint64            // TotalSizeBytes/BlockSize lines; a partial trailing block is ignored
	Associativity  uint64            // lines per set (must be > 0)
	Replacement    ReplacementPolicy // LRU or FIFO
	WritePolicy    WritePolicy       // WriteThrough or WriteBack
}

// ConfigError reports a configuration that cannot be realized as a cache.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid cache config: %s: %s", e.Field, e.Reason)
}

// NumLines returns the total number of lines the cache holds.
func (c CacheConfig) NumLines() uint64 {
	return c.TotalSizeBytes / BlockSize
}

// NumSets returns the number of sets. Only meaningful for a valid config.
func (c CacheConfig) NumSets() uint64 {
	if c.Associativity == 0 {
		return 0
	}
	return c.NumLines() / c.Associativity
}

// Validate checks that the geometry can be realized and the policies are known.
func (c CacheConfig) Validate() error {
	if c.Associativity == 0 {
		return &ConfigError{Field: "associativity", Reason: "must be positive"}
	}
	lines := c.NumLines()
	if lines == 0 {
		return &ConfigError{Field: "size", Reason: fmt.Sprintf("%d bytes holds no %d-byte block", c.TotalSizeBytes, BlockSize)}
	}
	if lines > MaxLines {
		return &ConfigError{Field: "size", Reason: fmt.Sprintf("%d lines exceed the limit of %d", lines, MaxLines)}
	}
	if lines%c.Associativity != 0 {
		return &ConfigError{Field: "associativity", Reason: fmt.Sprintf("%d lines do not divide into sets of %d", lines, c.Associativity)}
	}
	if c.Replacement != LRU && c.Replacement != FIFO {
		return &ConfigError{Field: "replacement", Reason: fmt.Sprintf("unknown policy %d", int(c.Replacement))}
	}
	if c.WritePolicy != WriteThrough && c.WritePolicy != WriteBack {
		return &ConfigError{Field: "write policy", Reason: fmt.Sprintf("unknown policy %d", int(c.WritePolicy))}
	}
	return nil
}
