package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvictions  int
	DirtyEvictions  int
	CleanEvictions  int
	UniqueSets      int
	HottestSet      uint64         // set with the most evictions; lowest index wins ties
	HottestSetCount int
	SetDistribution map[uint64]int // set index → count of evictions
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		SetDistribution: make(map[uint64]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalEvictions = len(st.Evictions)
	for _, e := range st.Evictions {
		if e.Dirty {
			summary.DirtyEvictions++
		} else {
			summary.CleanEvictions++
		}
		summary.SetDistribution[e.SetIndex]++
	}

	for set, count := range summary.SetDistribution {
		if count > summary.HottestSetCount || (count == summary.HottestSetCount && set < summary.HottestSet) {
			summary.HottestSet = set
			summary.HottestSetCount = count
		}
	}

	summary.UniqueSets = len(summary.SetDistribution)

	return summary
}
