package trace

// TraceLevel selects which replacement events a replay records.
type TraceLevel string

const (
	// TraceLevelNone records nothing; the cache skips record construction.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvictions records every replacement of a valid line.
	TraceLevelEvictions TraceLevel = "evictions"
)

// IsValidTraceLevel reports whether level names a recording mode.
// The empty string is accepted and means none.
func IsValidTraceLevel(level string) bool {
	switch TraceLevel(level) {
	case "", TraceLevelNone, TraceLevelEvictions:
		return true
	}
	return false
}

// TraceConfig holds the eviction recording settings of one replay.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects replacement records during a replay.
type SimulationTrace struct {
	Config    TraceConfig
	Evictions []EvictionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:    config,
		Evictions: make([]EvictionRecord, 0),
	}
}

// Enabled reports whether records should be collected.
// Safe to call on a nil trace.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelEvictions
}

// RecordEviction appends an eviction record.
func (st *SimulationTrace) RecordEviction(record EvictionRecord) {
	st.Evictions = append(st.Evictions, record)
}
