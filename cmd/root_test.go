package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/cachesim/sim"
	"github.com/inference-sim/cachesim/sim/workload"
)

func TestParseRunArgs_Valid(t *testing.T) {
	cfg, err := parseRunArgs([]string{"32768", "8", "1", "0", "trace.txt"})

	require.NoError(t, err)
	assert.Equal(t, sim.CacheConfig{
		TotalSizeBytes: 32768,
		Associativity:  8,
		Replacement:    sim.FIFO,
		WritePolicy:    sim.WriteThrough,
	}, cfg)

	cfg, err = parseRunArgs([]string{"1024", "2", "0", "1", "-"})
	require.NoError(t, err)
	assert.Equal(t, sim.LRU, cfg.Replacement)
	assert.Equal(t, sim.WriteBack, cfg.WritePolicy)
}

func TestParseRunArgs_Rejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero size", []string{"0", "2", "0", "0", "t"}, "invalid cache size or associativity"},
		{"zero associativity", []string{"1024", "0", "0", "0", "t"}, "invalid cache size or associativity"},
		{"negative size", []string{"-1024", "2", "0", "0", "t"}, "invalid cache size or associativity"},
		{"non-numeric associativity", []string{"1024", "two", "0", "0", "t"}, "invalid cache size or associativity"},
		{"replacement selector", []string{"1024", "2", "2", "0", "t"}, "replacement selector"},
		{"write policy selector", []string{"1024", "2", "0", "wb", "t"}, "write policy selector"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseRunArgs(tc.args)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestRunSimulation_PrintsThreeLineReport(t *testing.T) {
	// GIVEN the one-set, two-way LRU write-back scenario
	path := writeTrace(t, "R 0x0", "R 0x40", "R 0x0", "W 0x80")
	cfg := sim.CacheConfig{TotalSizeBytes: 128, Associativity: 2, Replacement: sim.LRU, WritePolicy: sim.WriteBack}

	// WHEN the simulation runs
	var out, errOut bytes.Buffer
	err := runSimulation(cfg, path, runOptions{TraceLevel: "none"}, &out, &errOut)

	// THEN stdout holds exactly the report
	require.NoError(t, err)
	assert.Equal(t, "Miss ratio 0.750000\nwrite 0\nread 3\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunSimulation_TruncatedTrace_StillReports(t *testing.T) {
	path := writeTrace(t, "R 0", "W 0", "oops", "R 40")
	cfg := sim.CacheConfig{TotalSizeBytes: 128, Associativity: 2, Replacement: sim.LRU, WritePolicy: sim.WriteThrough}

	// GIVEN the default log level, which hides library warnings
	logLevel = "error"
	setupLogging()

	// WHEN the simulation runs over a trace with a malformed third record
	var out, errOut bytes.Buffer
	err := runSimulation(cfg, path, runOptions{}, &out, &errOut)

	// THEN the prefix is reported and the truncation is still announced on stderr
	require.NoError(t, err)
	assert.Equal(t, "Miss ratio 0.500000\nwrite 1\nread 1\n", out.String())
	assert.Contains(t, errOut.String(), "warning: trace truncated after 2 records")
	assert.Contains(t, errOut.String(), "trace record 3")
}

func TestRunSimulation_InvalidGeometry_NoReport(t *testing.T) {
	path := writeTrace(t, "R 0")
	cfg := sim.CacheConfig{TotalSizeBytes: 192, Associativity: 2}

	var out bytes.Buffer
	err := runSimulation(cfg, path, runOptions{}, &out, io.Discard)

	var cfgErr *sim.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, out.String())
}

func TestRunSimulation_MissingTrace_NoReport(t *testing.T) {
	cfg := sim.CacheConfig{TotalSizeBytes: 128, Associativity: 2}

	var out bytes.Buffer
	err := runSimulation(cfg, filepath.Join(t.TempDir(), "absent"), runOptions{}, &out, io.Discard)

	var openErr *workload.TraceOpenError
	assert.ErrorAs(t, err, &openErr)
	assert.Empty(t, out.String())
}

func TestRunSimulation_UnknownTraceLevel(t *testing.T) {
	path := writeTrace(t, "R 0")
	cfg := sim.CacheConfig{TotalSizeBytes: 128, Associativity: 2}

	err := runSimulation(cfg, path, runOptions{TraceLevel: "everything"}, io.Discard, io.Discard)

	assert.ErrorContains(t, err, "unknown trace level")
}

func TestRunSimulation_SummaryAndExport(t *testing.T) {
	// GIVEN a trace that evicts one dirty line
	path := writeTrace(t, "W 0", "R 40", "R 80")
	cfg := sim.CacheConfig{TotalSizeBytes: 128, Associativity: 2, Replacement: sim.LRU, WritePolicy: sim.WriteBack}
	exportPath := filepath.Join(t.TempDir(), "evictions.csv")

	// WHEN summary and export are requested without an explicit trace level
	var out, errOut bytes.Buffer
	err := runSimulation(cfg, path, runOptions{SummarizeTrace: true, TraceOutput: exportPath}, &out, &errOut)

	// THEN the summary goes to stderr, the report to stdout, and the CSV is written
	require.NoError(t, err)
	assert.Equal(t, "Miss ratio 1.000000\nwrite 1\nread 3\n", out.String())
	assert.Contains(t, errOut.String(), "Evictions       : 1")
	assert.Contains(t, errOut.String(), "Dirty Evictions : 1")
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "3,0,0,0,2,true,lru")
}

func TestRunCmd_WrongArgCount_Rejected(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	for _, args := range [][]string{
		{"run", "1024", "2", "0", "1"},
		{"run", "1024", "2", "0", "1", "trace.txt", "extra"},
	} {
		rootCmd.SetArgs(args)
		assert.Error(t, rootCmd.Execute(), "args %v", args)
	}
}
