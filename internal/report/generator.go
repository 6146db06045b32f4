package report

import (
	"context"
	"fmt"
	"time"
)

// Format names a renderable report output format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatExcel    Format = "excel"
	FormatPDF      Format = "pdf"
)

// Generator renders a Data document into one output format's bytes.
type Generator interface {
	Generate(ctx context.Context, data *Data) ([]byte, error)
	Format() Format
}

// BaseGenerator holds the field-formatting helpers every format-specific
// generator shares.
type BaseGenerator struct{}

func (b *BaseGenerator) GetTitle(data *Data) string {
	if data.Options != nil && data.Options.Title != "" {
		return data.Options.Title
	}
	return "Replanning Iteration Report"
}

func (b *BaseGenerator) GetAuthor(data *Data) string {
	if data.Options != nil && data.Options.Author != "" {
		return data.Options.Author
	}
	return "trafficsim"
}

func (b *BaseGenerator) GetDescription(data *Data) string {
	if data.Options != nil {
		return data.Options.Description
	}
	return ""
}

func (b *BaseGenerator) IncludeDropped(data *Data) bool {
	return data.Options == nil || data.Options.IncludeDropped
}

func (b *BaseGenerator) FormatFloat(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

func (b *BaseGenerator) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
