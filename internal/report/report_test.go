package report

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficsim/internal/optimizer"
)

func sampleData() *Data {
	return &Data{
		RunID: "run-1",
		Options: &Options{
			Title:          "S3 Grid Equilibrium",
			Author:         "tester",
			IncludeDropped: true,
		},
		Iterations: []optimizer.Report{
			{Iteration: 0, AgentCount: 20, MeanTripDuration: 320.0, MeanTripLength: 1200.0, MeanLinkDuration: 12.0},
			{Iteration: 1, AgentCount: 20, MeanTripDuration: 290.0, MeanTripLength: 1200.0, MeanLinkDuration: 11.0, DroppedAgentCount: 1},
		},
	}
}

func TestFactoryReturnsEachRegisteredFormat(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatJSON, FormatMarkdown, FormatExcel, FormatPDF} {
		g, err := New(f)
		require.NoError(t, err)
		assert.Equal(t, f, g.Format())
	}
}

func TestFactoryRejectsUnknownFormat(t *testing.T) {
	_, err := New(Format("yaml"))
	assert.Error(t, err)
}

func TestCSVGeneratorIncludesIterationRows(t *testing.T) {
	g := NewCSVGenerator()
	out, err := g.Generate(context.Background(), sampleData())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "run_id,run-1")
	assert.Contains(t, s, "iteration,agent_count")
	assert.Contains(t, s, "1,20,290.0000,1200.0000,11.0000,1")
}

func TestCSVGeneratorOmitsDroppedWhenExcluded(t *testing.T) {
	data := sampleData()
	data.Options.IncludeDropped = false

	g := NewCSVGenerator()
	out, err := g.Generate(context.Background(), data)
	require.NoError(t, err)
	assert.NotContains(t, string(out), ",1\n")
}

func TestJSONGeneratorRoundTripsIterationCount(t *testing.T) {
	g := NewJSONGenerator()
	out, err := g.Generate(context.Background(), sampleData())
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.Contains(s, `"runId": "run-1"`))
	assert.True(t, strings.Contains(s, `"meanTripDuration": 290`))
}

func TestMarkdownGeneratorRendersTable(t *testing.T) {
	g := NewMarkdownGenerator()
	out, err := g.Generate(context.Background(), sampleData())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "# S3 Grid Equilibrium")
	assert.Contains(t, s, "| Iteration | Agents |")
	assert.Contains(t, s, "| 1 | 20 |")
}

func TestMarkdownGeneratorHandlesEmptyIterations(t *testing.T) {
	g := NewMarkdownGenerator()
	out, err := g.Generate(context.Background(), &Data{RunID: "empty-run"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No iterations recorded")
}

func TestExcelGeneratorProducesValidWorkbookBytes(t *testing.T) {
	g := NewExcelGenerator()
	out, err := g.Generate(context.Background(), sampleData())
	require.NoError(t, err)
	// XLSX files are zip archives; the first two bytes are the local file header magic.
	require.True(t, len(out) > 4)
	assert.Equal(t, []byte{'P', 'K'}, out[:2])
}

func TestPDFGeneratorProducesNonEmptyDocument(t *testing.T) {
	g := NewPDFGenerator()
	out, err := g.Generate(context.Background(), sampleData())
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
