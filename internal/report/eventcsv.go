package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"trafficsim/internal/events"
	"trafficsim/internal/plan"
)

// DefaultChunkSize is the number of buffered records a CSVChunkWriter
// flushes at once when the caller never overrides it.
const DefaultChunkSize = 1000

// CSVChunkWriter serializes a simulation's event log as
// {time, agent, kind, aux, asset, min_duration} rows, appending to path in
// chunksize-row batches rather than writing every record as it arrives.
type CSVChunkWriter struct {
	path      string
	chunkSize int

	buf     []events.Record
	written int
}

// NewCSVChunkWriter returns a writer for path with the given chunk size; a
// non-positive chunkSize falls back to DefaultChunkSize.
func NewCSVChunkWriter(path string, chunkSize int) *CSVChunkWriter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &CSVChunkWriter{path: path, chunkSize: chunkSize}
}

// Add buffers records, flushing once the buffer exceeds the chunk size.
func (w *CSVChunkWriter) Add(records []events.Record) error {
	w.buf = append(w.buf, records...)
	if len(w.buf) > w.chunkSize {
		return w.Flush()
	}
	return nil
}

// Flush writes the buffered records to disk and clears the buffer. The
// first flush creates path (with a header row); subsequent flushes append
// without repeating the header, matching the collaborator's append mode.
func (w *CSVChunkWriter) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	flags := os.O_CREATE | os.O_WRONLY
	if w.written == 0 {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(w.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("report: open %s: %w", w.path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if w.written == 0 {
		if err := cw.Write([]string{"time", "agent", "kind", "aux", "asset", "min_duration"}); err != nil {
			return err
		}
	}
	for _, rec := range w.buf {
		if err := cw.Write(eventRow(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	w.written += len(w.buf)
	w.buf = nil
	return nil
}

// Len returns the total number of records written plus currently buffered.
func (w *CSVChunkWriter) Len() int {
	return w.written + len(w.buf)
}

func eventRow(rec events.Record) []string {
	instr := rec.Instruction
	asset := ""
	switch instr.Kind {
	case plan.EnterActivity, plan.ExitActivity:
		asset = string(instr.Node)
	case plan.EnterLink, plan.ExitLink:
		asset = fmt.Sprintf("%s>%s", instr.Edge.From, instr.Edge.To)
	}
	return []string{
		fmt.Sprintf("%d", rec.Time),
		rec.AgentID,
		instr.Kind.String(),
		string(instr.Aux),
		asset,
		fmt.Sprintf("%d", instr.MinDuration),
	}
}
