package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"trafficsim/internal/optimizer"
)

// CSVGenerator renders a Data document's iterations as a flat CSV table.
type CSVGenerator struct {
	BaseGenerator
}

func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// csvWriter tracks the first Write error so callers can check it once
// after a block of unconditional writes, rather than after every call.
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (g *CSVGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write([]string{"# " + g.GetTitle(data)})
	cw.Write([]string{"run_id", data.RunID})
	cw.Write([]string{""})
	cw.Write([]string{"iteration", "agent_count", "mean_trip_duration", "mean_trip_length", "mean_link_duration", "dropped_agent_count"})

	for _, it := range data.Iterations {
		dropped := it.DroppedAgentCount
		if !g.IncludeDropped(data) {
			dropped = 0
		}
		cw.Write([]string{
			fmt.Sprintf("%d", it.Iteration),
			fmt.Sprintf("%d", it.AgentCount),
			g.FormatFloat(it.MeanTripDuration, 4),
			g.FormatFloat(it.MeanTripLength, 4),
			g.FormatFloat(it.MeanLinkDuration, 4),
			fmt.Sprintf("%d", dropped),
		})
	}

	cw.w.Flush()
	if cw.err == nil {
		cw.err = cw.w.Error()
	}
	if cw.err != nil {
		return nil, fmt.Errorf("csv write error: %w", cw.err)
	}

	return buf.Bytes(), nil
}
