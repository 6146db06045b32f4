package report

import (
	"context"
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// PDFGenerator renders a Data document as a one-page PDF summary.
type PDFGenerator struct {
	BaseGenerator
}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

var (
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141}
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241}

	titleStyle = props.Text{Size: 24, Style: fontstyle.Bold, Align: align.Center, Color: headerBgColor}
	smallStyle = props.Text{Size: 8, Color: darkGrayColor}

	tableHeaderStyle     = &props.Cell{BackgroundColor: headerBgColor}
	tableHeaderTextStyle = props.Text{Size: 9, Style: fontstyle.Bold, Color: &props.Color{Red: 255, Green: 255, Blue: 255}, Align: align.Center}
	tableCellStyle       = &props.Cell{BorderType: border.Bottom, BorderColor: lightGrayColor}
	tableCellTextStyle   = props.Text{Size: 9, Align: align.Center}
)

func (g *PDFGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	g.addHeader(m, data)
	g.addIterationsTable(m, data)
	g.addFooter(m)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("report: generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *Data) {
	m.AddRow(15, text.NewCol(12, g.GetTitle(data), titleStyle))
	m.AddRow(5, line.NewCol(12))
	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Author: %s", g.GetAuthor(data)), smallStyle),
		text.NewCol(6, fmt.Sprintf("Run: %s", data.RunID), props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)
	if desc := g.GetDescription(data); desc != "" {
		m.AddRow(5, text.NewCol(12, desc, smallStyle))
	}
	m.AddRow(8)
}

func (g *PDFGenerator) addIterationsTable(m core.Maroto, data *Data) {
	m.AddRow(8,
		text.NewCol(2, "Iter", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Agents", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "Trip Duration", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Trip Length", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Link Duration", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(1, "Dropped", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	const maxRows = 40
	for i, it := range data.Iterations {
		if i >= maxRows {
			m.AddRow(6, text.NewCol(12, fmt.Sprintf("... and %d more iterations", len(data.Iterations)-maxRows), smallStyle))
			break
		}
		dropped := it.DroppedAgentCount
		if !g.IncludeDropped(data) {
			dropped = 0
		}
		m.AddRow(6,
			text.NewCol(2, fmt.Sprintf("%d", it.Iteration), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%d", it.AgentCount), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, g.FormatFloat(it.MeanTripDuration, 2), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatFloat(it.MeanTripLength, 2), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatFloat(it.MeanLinkDuration, 2), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(1, fmt.Sprintf("%d", dropped), tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
}

func (g *PDFGenerator) addFooter(m core.Maroto) {
	m.AddRow(10)
	m.AddRow(2, line.NewCol(12, props.Line{Color: lightGrayColor}))
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04:05")),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
