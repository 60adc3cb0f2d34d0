// Package workload reads memory-access traces and turns them into the
// (operation, address) stream replayed by sim.Simulator.
package workload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/cachesim/sim"
)

// StdinPath is the trace path that reads from standard input.
const StdinPath = "-"

// TraceOpenError reports a trace file that could not be opened.
type TraceOpenError struct {
	Path string
	Err  error
}

func (e *TraceOpenError) Error() string {
	return fmt.Sprintf("could not open the trace file %s: %v", e.Path, e.Err)
}

func (e *TraceOpenError) Unwrap() error { return e.Err }

// TraceFormatError reports the first malformed record of a trace.
// Replay stops at that record; nothing after it is read.
type TraceFormatError struct {
	Record int // 1-based index of the malformed record
	Reason string
}

func (e *TraceFormatError) Error() string {
	return fmt.Sprintf("trace record %d: %s", e.Record, e.Reason)
}

// TraceReader lazily parses whitespace-separated trace records.
// Each record is one operation character (R/r or W/w) followed by a
// hexadecimal address with an optional 0x prefix. It implements sim.AccessSource.
type TraceReader struct {
	r       *bufio.Reader
	closer  io.Closer
	records int
	err     error
	done    bool
}

// NewTraceReader wraps a stream of trace records.
func NewTraceReader(r io.Reader) *TraceReader {
	return &TraceReader{r: bufio.NewReader(r)}
}

// OpenTrace opens the trace at path, or standard input for StdinPath.
func OpenTrace(path string) (*TraceReader, error) {
	if path == StdinPath {
		return NewTraceReader(os.Stdin), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, &TraceOpenError{Path: path, Err: err}
	}
	tr := NewTraceReader(file)
	tr.closer = file
	return tr, nil
}

// Close releases the underlying file, if the reader opened one.
func (tr *TraceReader) Close() error {
	if tr.closer == nil {
		return nil
	}
	err := tr.closer.Close()
	tr.closer = nil
	return err
}

// Records returns the number of well-formed records returned so far.
func (tr *TraceReader) Records() int {
	return tr.records
}

// Err returns the reason the stream stopped early, or nil after a clean end of input.
func (tr *TraceReader) Err() error {
	return tr.err
}

// Next returns the next access. It returns false at end of input and at the
// first malformed record, after which it keeps returning false.
func (tr *TraceReader) Next() (sim.Access, bool) {
	if tr.done {
		return sim.Access{}, false
	}
	access, err := tr.parseRecord()
	if err != nil {
		tr.done = true
		if !errors.Is(err, io.EOF) {
			tr.err = err
			logrus.Warnf("Trace replay truncated after %d records: %v", tr.records, err)
		}
		return sim.Access{}, false
	}
	tr.records++
	return access, true
}

// parseRecord reads one record. A clean end of input before the operation
// character yields io.EOF; every other failure is a *TraceFormatError or a read error.
func (tr *TraceReader) parseRecord() (sim.Access, error) {
	record := tr.records + 1

	c, err := tr.skipSpace()
	if err != nil {
		return sim.Access{}, tr.readErr(record, err, io.EOF)
	}
	var op sim.Operation
	switch c {
	case 'R', 'r':
		op = sim.OpRead
	case 'W', 'w':
		op = sim.OpWrite
	default:
		return sim.Access{}, &TraceFormatError{Record: record, Reason: fmt.Sprintf("unknown operation %q", c)}
	}

	c, err = tr.skipSpace()
	if err != nil {
		return sim.Access{}, tr.readErr(record, err, &TraceFormatError{Record: record, Reason: "missing address"})
	}
	addr, err := tr.parseHex(c, record)
	if err != nil {
		return sim.Access{}, err
	}
	return sim.Access{Op: op, Addr: addr}, nil
}

// readErr maps io.EOF to eofErr and wraps any other read failure.
func (tr *TraceReader) readErr(record int, err error, eofErr error) error {
	if errors.Is(err, io.EOF) {
		return eofErr
	}
	return fmt.Errorf("reading trace record %d: %w", record, err)
}

// skipSpace returns the first non-space byte.
func (tr *TraceReader) skipSpace() (byte, error) {
	for {
		c, err := tr.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if !isSpace(c) {
			return c, nil
		}
	}
}

// parseHex reads a hexadecimal number whose first byte is first. The number ends
// at the first non-hex byte, which is left unread.
func (tr *TraceReader) parseHex(first byte, record int) (uint64, error) {
	c := first
	if c == '0' {
		next, err := tr.r.ReadByte()
		switch {
		case err == nil && (next == 'x' || next == 'X'):
			c, err = tr.r.ReadByte()
			if err != nil || hexValue(c) < 0 {
				return 0, tr.hexErr(record, err, "no hex digits after 0x prefix")
			}
		case err == nil:
			_ = tr.r.UnreadByte()
		case !errors.Is(err, io.EOF):
			return 0, fmt.Errorf("reading trace record %d: %w", record, err)
		}
	}

	if hexValue(c) < 0 {
		return 0, &TraceFormatError{Record: record, Reason: fmt.Sprintf("invalid address character %q", c)}
	}

	var addr uint64
	for {
		d := hexValue(c)
		if d < 0 {
			_ = tr.r.UnreadByte()
			return addr, nil
		}
		if addr > (math.MaxUint64-uint64(d))/16 {
			return 0, &TraceFormatError{Record: record, Reason: "address overflows 64 bits"}
		}
		addr = addr*16 + uint64(d)

		var err error
		c, err = tr.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return addr, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reading trace record %d: %w", record, err)
		}
	}
}

func (tr *TraceReader) hexErr(record int, err error, reason string) error {
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading trace record %d: %w", record, err)
	}
	return &TraceFormatError{Record: record, Reason: reason}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
