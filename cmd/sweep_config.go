package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/cachesim/sim"
	"github.com/inference-sim/cachesim/sim/workload"
)

// SweepConfig describes a parameter sweep over cache configurations.
// All top-level keys must be listed to satisfy KnownFields(true) strict parsing.
type SweepConfig struct {
	Trace           string   `yaml:"trace"`
	Sizes           []uint64 `yaml:"sizes"`           // bytes
	Associativities []uint64 `yaml:"associativities"` // lines per set
	Replacement     []string `yaml:"replacement"`     // "lru", "fifo"; empty = both
	WritePolicies   []string `yaml:"write_policies"`  // "write-through", "write-back"; empty = both
}

// LoadSweepConfig parses a sweep YAML file. Unknown keys (typos) are rejected.
func LoadSweepConfig(path string) (*SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep config: %w", err)
	}
	var cfg SweepConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing sweep config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the sweep has something to run.
func (c *SweepConfig) Validate() error {
	if c.Trace == "" {
		return fmt.Errorf("trace path is required")
	}
	if c.Trace == workload.StdinPath {
		return fmt.Errorf("a sweep replays the trace once per configuration; stdin cannot be reopened")
	}
	if len(c.Sizes) == 0 {
		return fmt.Errorf("at least one size is required")
	}
	if len(c.Associativities) == 0 {
		return fmt.Errorf("at least one associativity is required")
	}
	for i, s := range c.Sizes {
		if s == 0 {
			return fmt.Errorf("sizes[%d] must be positive", i)
		}
	}
	for i, a := range c.Associativities {
		if a == 0 {
			return fmt.Errorf("associativities[%d] must be positive", i)
		}
	}
	return nil
}

// Grid expands the sweep into cache configurations, ordered by size, then
// associativity, then replacement policy, then write policy.
func (c *SweepConfig) Grid() ([]sim.CacheConfig, error) {
	replacement := []sim.ReplacementPolicy{sim.LRU, sim.FIFO}
	if len(c.Replacement) > 0 {
		replacement = replacement[:0]
		for _, name := range c.Replacement {
			p, err := sim.ParseReplacementPolicy(name)
			if err != nil {
				return nil, err
			}
			replacement = append(replacement, p)
		}
	}
	writePolicies := []sim.WritePolicy{sim.WriteThrough, sim.WriteBack}
	if len(c.WritePolicies) > 0 {
		writePolicies = writePolicies[:0]
		for _, name := range c.WritePolicies {
			p, err := sim.ParseWritePolicy(name)
			if err != nil {
				return nil, err
			}
			writePolicies = append(writePolicies, p)
		}
	}

	grid := make([]sim.CacheConfig, 0, len(c.Sizes)*len(c.Associativities)*len(replacement)*len(writePolicies))
	for _, size := range c.Sizes {
		for _, assoc := range c.Associativities {
			for _, rp := range replacement {
				for _, wp := range writePolicies {
					grid = append(grid, sim.CacheConfig{
						TotalSizeBytes: size,
						Associativity:  assoc,
						Replacement:    rp,
						WritePolicy:    wp,
					})
				}
			}
		}
	}
	return grid, nil
}
