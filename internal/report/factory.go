package report

import "fmt"

// New returns the Generator registered for format.
func New(format Format) (Generator, error) {
	switch format {
	case FormatCSV:
		return NewCSVGenerator(), nil
	case FormatJSON:
		return NewJSONGenerator(), nil
	case FormatMarkdown:
		return NewMarkdownGenerator(), nil
	case FormatExcel:
		return NewExcelGenerator(), nil
	case FormatPDF:
		return NewPDFGenerator(), nil
	default:
		return nil, fmt.Errorf("report: unknown format %q", format)
	}
}
