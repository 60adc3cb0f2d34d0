package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/cachesim/sim/workload"
)

var (
	sweepConfigPath string
	sweepTracePath  string
	sweepWorkers    int
)

// CSV column headers for sweep output.
var sweepColumns = []string{
	"cache_size", "associativity", "replacement", "write_policy",
	"hits", "misses", "miss_ratio", "mem_writes", "mem_reads",
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Replay one trace against a grid of cache configurations",
	Long:  "Replay one trace against every configuration of a sweep YAML file and write one CSV row per configuration to stdout. Configurations whose geometry cannot be realized are skipped.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := LoadSweepConfig(sweepConfigPath)
		if err != nil {
			logrus.Fatalf("Failed to load sweep config %s: %v", sweepConfigPath, err)
		}
		if cmd.Flags().Changed("trace") {
			cfg.Trace = sweepTracePath
		}
		if err := runSweep(cfg, sweepWorkers, os.Stdout); err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
	},
}

// runSweep replays the sweep's trace once per valid configuration, at most
// workers at a time, and writes rows in grid order.
func runSweep(cfg *SweepConfig, workers int, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", workers)
	}
	grid, err := cfg.Grid()
	if err != nil {
		return err
	}
	logrus.Infof("Sweeping %d configurations over %s with %d workers", len(grid), cfg.Trace, workers)

	results := make([]*workload.ReplayResult, len(grid))
	errs := make([]error, len(grid))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, cc := range grid {
		if err := cc.Validate(); err != nil {
			logrus.Warnf("Skipping size=%d assoc=%d: %v", cc.TotalSizeBytes, cc.Associativity, err)
			continue
		}
		i, cc := i, cc
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = workload.ReplayFile(cc, cfg.Trace, nil)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(sweepColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		m := res.Metrics
		row := []string{
			strconv.FormatUint(res.Config.TotalSizeBytes, 10),
			strconv.FormatUint(res.Config.Associativity, 10),
			res.Config.Replacement.String(),
			res.Config.WritePolicy.String(),
			strconv.FormatUint(m.Hits, 10),
			strconv.FormatUint(m.Misses, 10),
			strconv.FormatFloat(m.MissRatio(), 'f', 6, 64),
			strconv.FormatUint(m.MemWrites, 10),
			strconv.FormatUint(m.MemReads, 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func init() {
	sweepCmd.Flags().StringVar(&sweepConfigPath, "config", "", "Path to sweep YAML config")
	sweepCmd.Flags().StringVar(&sweepTracePath, "trace", "", "Trace file path (overrides the config's trace)")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", runtime.NumCPU(), "Maximum configurations replayed at once")
	_ = sweepCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(sweepCmd)
}
