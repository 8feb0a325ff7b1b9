package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkorolev/insight-router/internal/core/domain"
	"github.com/mkorolev/insight-router/internal/core/ports"
)

const (
	defaultChartKind  = "bar"
	defaultChartTitle = "Data Visualization"
)

type chartParams struct {
	ChartKind       string `json:"chartKind"`
	Title           string `json:"title"`
	DataDescription string `json:"dataDescription"`
}

// VisualizationHandler turns a query into a display-ready chart. Parameter
// extraction is best-effort: any failure there falls back to defaults and is
// never reported as an error.
type VisualizationHandler struct {
	completer ports.Completer
	charts    ports.ChartGenerator
}

func NewVisualizationHandler(completer ports.Completer, charts ports.ChartGenerator) *VisualizationHandler {
	return &VisualizationHandler{
		completer: completer,
		charts:    charts,
	}
}

func (h *VisualizationHandler) Generate(ctx context.Context, query string) (outcome domain.VisualizationOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = domain.VisualizationOutcome{
				ErrorDetail: fmt.Sprintf("chart generation: %v", r),
			}
		}
	}()

	params := h.extractParams(ctx, query)

	spec := h.charts.Generate(params.ChartKind, params.DataDescription)
	spec.Options.Plugins.Title = domain.ChartTitle{
		Display: true,
		Text:    params.Title,
	}

	return domain.VisualizationOutcome{
		OK:      true,
		Chart:   &spec,
		Message: fmt.Sprintf("Generated %s chart for: %s", spec.Type, params.Title),
	}
}

func (h *VisualizationHandler) extractParams(ctx context.Context, query string) chartParams {
	fallback := chartParams{
		ChartKind:       defaultChartKind,
		Title:           defaultChartTitle,
		DataDescription: query,
	}

	raw, err := h.completer.GenerateJSON(ctx, buildExtractionPrompt(query))
	if err != nil {
		return fallback
	}

	var params chartParams
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &params); err != nil {
		return fallback
	}

	params.ChartKind = strings.ToLower(strings.TrimSpace(params.ChartKind))
	if params.ChartKind == "" {
		params.ChartKind = defaultChartKind
	}
	params.Title = strings.TrimSpace(params.Title)
	if params.Title == "" {
		params.Title = defaultChartTitle
	}
	params.DataDescription = strings.TrimSpace(params.DataDescription)
	if params.DataDescription == "" {
		params.DataDescription = query
	}
	return params
}

// extractJSONObject trims any prose the model wrapped around the JSON body.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
