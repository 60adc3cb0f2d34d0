package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/cachesim/sim"
	"github.com/inference-sim/cachesim/sim/trace"
	"github.com/inference-sim/cachesim/sim/workload"
)

var (
	logLevel       string // Log verbosity level
	traceLevel     string // Eviction trace level
	summarizeTrace bool   // Print an eviction summary to stderr
	traceOutput    string // CSV path for eviction records
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "Trace-driven set-associative cache simulator",
}

// runOptions carries the optional tracing behavior of a single run.
type runOptions struct {
	TraceLevel     string
	SummarizeTrace bool
	TraceOutput    string
}

// runCmd replays one trace against one cache configuration
var runCmd = &cobra.Command{
	Use:   "run CACHE_SIZE ASSOC REPLACEMENT WB TRACE_FILE",
	Short: "Replay a memory trace against one cache configuration",
	Long: `Replay a memory trace against one cache configuration.

  CACHE_SIZE   total cache size in bytes (block size is fixed at 64 bytes)
  ASSOC        lines per set
  REPLACEMENT  0 = LRU, 1 = FIFO
  WB           0 = write-through (no-write-allocate), 1 = write-back (write-allocate)
  TRACE_FILE   trace of "R|W <hex address>" records, or - for stdin`,
	Args: cobra.ExactArgs(5),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := parseRunArgs(args)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		opts := runOptions{
			TraceLevel:     traceLevel,
			SummarizeTrace: summarizeTrace,
			TraceOutput:    traceOutput,
		}
		if err := runSimulation(cfg, args[4], opts, os.Stdout, os.Stderr); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// setupLogging applies the --log level.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// parseRunArgs turns the first four positional arguments into a cache configuration.
// Geometry divisibility is left to sim.NewCache.
func parseRunArgs(args []string) (sim.CacheConfig, error) {
	size, sizeErr := strconv.ParseUint(args[0], 10, 64)
	assoc, assocErr := strconv.ParseUint(args[1], 10, 64)
	if sizeErr != nil || assocErr != nil || size == 0 || assoc == 0 {
		return sim.CacheConfig{}, fmt.Errorf("invalid cache size or associativity: %q, %q", args[0], args[1])
	}

	replacement, err := parseSelector(args[2], "replacement")
	if err != nil {
		return sim.CacheConfig{}, err
	}
	writeBack, err := parseSelector(args[3], "write policy")
	if err != nil {
		return sim.CacheConfig{}, err
	}

	cfg := sim.CacheConfig{
		TotalSizeBytes: size,
		Associativity:  assoc,
		Replacement:    sim.LRU,
		WritePolicy:    sim.WriteThrough,
	}
	if replacement == 1 {
		cfg.Replacement = sim.FIFO
	}
	if writeBack == 1 {
		cfg.WritePolicy = sim.WriteBack
	}
	return cfg, nil
}

// parseSelector accepts "0" or "1".
func parseSelector(arg, name string) (int, error) {
	switch arg {
	case "0":
		return 0, nil
	case "1":
		return 1, nil
	}
	return 0, fmt.Errorf("invalid %s selector %q; valid: 0, 1", name, arg)
}

// runSimulation replays the trace at path and prints the report to out.
// Tracing output (summary) goes to errOut so that out holds only the report.
func runSimulation(cfg sim.CacheConfig, path string, opts runOptions, out, errOut io.Writer) error {
	if !trace.IsValidTraceLevel(opts.TraceLevel) {
		return fmt.Errorf("unknown trace level %q; valid: none, evictions", opts.TraceLevel)
	}

	level := trace.TraceLevel(opts.TraceLevel)
	if (opts.SummarizeTrace || opts.TraceOutput != "") && level != trace.TraceLevelEvictions {
		logrus.Warnf("eviction summary/export requested with trace level %q; recording evictions anyway", level)
		level = trace.TraceLevelEvictions
	}
	var st *trace.SimulationTrace
	if level == trace.TraceLevelEvictions {
		st = trace.NewSimulationTrace(trace.TraceConfig{Level: level})
	}

	logrus.Infof("Starting replay: size=%dB assoc=%d replacement=%s write=%s trace=%s",
		cfg.TotalSizeBytes, cfg.Associativity, cfg.Replacement, cfg.WritePolicy, path)

	res, err := workload.ReplayFile(cfg, path, st)
	if err != nil {
		return err
	}
	if res.Truncated != nil {
		_, _ = fmt.Fprintf(errOut, "warning: trace truncated after %d records: %v\n", res.Records, res.Truncated)
	}

	if opts.SummarizeTrace {
		printTraceSummary(errOut, trace.Summarize(st))
	}
	if opts.TraceOutput != "" {
		if err := trace.ExportEvictions(st, opts.TraceOutput); err != nil {
			return fmt.Errorf("exporting eviction trace: %w", err)
		}
	}

	if err := res.Metrics.Print(out); err != nil {
		return fmt.Errorf("printing results: %w", err)
	}
	logrus.Info("Simulation complete.")
	return nil
}

// printTraceSummary writes the eviction summary block.
func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	_, _ = fmt.Fprintln(w, "=== Eviction Trace Summary ===")
	_, _ = fmt.Fprintf(w, "Evictions       : %d\n", s.TotalEvictions)
	_, _ = fmt.Fprintf(w, "Dirty Evictions : %d\n", s.DirtyEvictions)
	_, _ = fmt.Fprintf(w, "Clean Evictions : %d\n", s.CleanEvictions)
	_, _ = fmt.Fprintf(w, "Sets Touched    : %d\n", s.UniqueSets)
	if s.TotalEvictions > 0 {
		_, _ = fmt.Fprintf(w, "Hottest Set     : %d (%d evictions)\n", s.HottestSet, s.HottestSetCount)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Eviction trace level (none, evictions)")
	runCmd.Flags().BoolVar(&summarizeTrace, "summarize-trace", false, "Print an eviction trace summary to stderr")
	runCmd.Flags().StringVar(&traceOutput, "trace-output", "", "Write eviction records as CSV to this path")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
