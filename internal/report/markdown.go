package report

import (
	"bytes"
	"context"
	"fmt"
	"time"
)

// MarkdownGenerator renders a Data document as a Markdown document with a
// metadata list followed by a per-iteration table.
type MarkdownGenerator struct {
	BaseGenerator
}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (g *MarkdownGenerator) Format() Format {
	return FormatMarkdown
}

func (g *MarkdownGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", g.GetTitle(data)))
	buf.WriteString(fmt.Sprintf("- **Generated:** %s\n", time.Now().Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("- **Author:** %s\n", g.GetAuthor(data)))
	buf.WriteString(fmt.Sprintf("- **Run:** %s\n", data.RunID))
	if desc := g.GetDescription(data); desc != "" {
		buf.WriteString(fmt.Sprintf("- **Description:** %s\n", desc))
	}
	buf.WriteString("\n---\n\n")

	buf.WriteString("## Iterations\n\n")
	if len(data.Iterations) == 0 {
		buf.WriteString("No iterations recorded.\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| Iteration | Agents | Mean Trip Duration | Mean Trip Length | Mean Link Duration | Dropped |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, it := range data.Iterations {
		dropped := it.DroppedAgentCount
		if !g.IncludeDropped(data) {
			dropped = 0
		}
		buf.WriteString(fmt.Sprintf("| %d | %d | %s | %s | %s | %d |\n",
			it.Iteration, it.AgentCount,
			g.FormatFloat(it.MeanTripDuration, 2),
			g.FormatFloat(it.MeanTripLength, 2),
			g.FormatFloat(it.MeanLinkDuration, 2),
			dropped,
		))
	}

	return buf.Bytes(), nil
}
