package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelGenerator renders a Data document as a single-sheet workbook.
type ExcelGenerator struct {
	BaseGenerator
}

func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

func (g *ExcelGenerator) Format() Format {
	return FormatExcel
}

func (g *ExcelGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Iterations"
	f.NewSheet(sheet)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	row := 1
	f.SetCellValue(sheet, cellAddr("A", row), g.GetTitle(data))
	f.MergeCell(sheet, cellAddr("A", row), cellAddr("F", row))
	row++
	f.SetCellValue(sheet, cellAddr("A", row), "Run")
	f.SetCellValue(sheet, cellAddr("B", row), data.RunID)
	row += 2

	headers := []string{"Iteration", "Agents", "Mean Trip Duration", "Mean Trip Length", "Mean Link Duration", "Dropped"}
	cols := []string{"A", "B", "C", "D", "E", "F"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellAddr(cols[i], row), h)
	}
	f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("F", row), headerStyle)
	row++

	for _, it := range data.Iterations {
		dropped := it.DroppedAgentCount
		if !g.IncludeDropped(data) {
			dropped = 0
		}
		f.SetCellValue(sheet, cellAddr("A", row), it.Iteration)
		f.SetCellValue(sheet, cellAddr("B", row), it.AgentCount)
		f.SetCellValue(sheet, cellAddr("C", row), it.MeanTripDuration)
		f.SetCellValue(sheet, cellAddr("D", row), it.MeanTripLength)
		f.SetCellValue(sheet, cellAddr("E", row), it.MeanLinkDuration)
		f.SetCellValue(sheet, cellAddr("F", row), dropped)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
