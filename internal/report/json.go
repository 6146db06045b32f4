package report

import (
	"context"
	"encoding/json"
	"time"
)

// JSONGenerator renders a Data document as indented JSON.
type JSONGenerator struct {
	BaseGenerator
}

func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

func (g *JSONGenerator) Format() Format {
	return FormatJSON
}

type jsonReport struct {
	Metadata   jsonMetadata    `json:"metadata"`
	RunID      string          `json:"runId"`
	Iterations []jsonIteration `json:"iterations"`
}

type jsonMetadata struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	GeneratedAt string `json:"generatedAt"`
}

type jsonIteration struct {
	Iteration         int     `json:"iteration"`
	AgentCount        int     `json:"agentCount"`
	MeanTripDuration  float64 `json:"meanTripDuration"`
	MeanTripLength    float64 `json:"meanTripLength"`
	MeanLinkDuration  float64 `json:"meanLinkDuration"`
	DroppedAgentCount int     `json:"droppedAgentCount,omitempty"`
}

func (g *JSONGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	out := jsonReport{
		Metadata: jsonMetadata{
			Title:       g.GetTitle(data),
			Author:      g.GetAuthor(data),
			Description: g.GetDescription(data),
			GeneratedAt: time.Now().Format(time.RFC3339),
		},
		RunID: data.RunID,
	}

	for _, it := range data.Iterations {
		dropped := it.DroppedAgentCount
		if !g.IncludeDropped(data) {
			dropped = 0
		}
		out.Iterations = append(out.Iterations, jsonIteration{
			Iteration:         it.Iteration,
			AgentCount:        it.AgentCount,
			MeanTripDuration:  it.MeanTripDuration,
			MeanTripLength:    it.MeanTripLength,
			MeanLinkDuration:  it.MeanLinkDuration,
			DroppedAgentCount: dropped,
		})
	}

	return json.MarshalIndent(out, "", "  ")
}
