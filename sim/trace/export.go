package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// CSV column headers for eviction export.
var evictionColumns = []string{
	"clock", "set_index", "way", "evicted_tag", "incoming_tag", "dirty", "reason",
}

// WriteEvictionsCSV writes eviction records as CSV with a header row.
// Tags are written in hexadecimal to match trace addresses.
func WriteEvictionsCSV(w io.Writer, records []EvictionRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(evictionColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range records {
		row := []string{
			strconv.FormatUint(r.Clock, 10),
			strconv.FormatUint(r.SetIndex, 10),
			strconv.Itoa(r.Way),
			strconv.FormatUint(r.EvictedTag, 16),
			strconv.FormatUint(r.IncomingTag, 16),
			strconv.FormatBool(r.Dirty),
			r.Reason,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportEvictions writes the trace's eviction records to a CSV file at path.
func ExportEvictions(st *SimulationTrace, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating eviction trace file: %w", err)
	}

	var records []EvictionRecord
	if st != nil {
		records = st.Evictions
	}
	return writeAndClose(file, records)
}

// writeAndClose writes records to f and closes it. A close failure is
// reported when the write itself succeeded.
func writeAndClose(f io.WriteCloser, records []EvictionRecord) (err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing eviction trace file: %w", cerr)
		}
	}()
	return WriteEvictionsCSV(f, records)
}
