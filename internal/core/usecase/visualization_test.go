package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mkorolev/insight-router/internal/core/domain"
)

type chartGenFake struct {
	kind        string
	description string
	panicWith   string
}

func (f *chartGenFake) Generate(kind, description string) domain.ChartSpec {
	if f.panicWith != "" {
		panic(f.panicWith)
	}
	f.kind = kind
	f.description = description
	return domain.ChartSpec{
		Type: kind,
		Data: domain.ChartData{
			Labels:   []string{"A", "B"},
			Datasets: []domain.ChartDataset{{Label: description, Data: []float64{1, 2}}},
		},
		Options: domain.ChartOptions{Responsive: true},
	}
}

func TestVisualizationUsesExtractedParams(t *testing.T) {
	completer := &completerFake{
		jsonResponse: `{"chartKind":"pie","title":"Quarterly Sales","dataDescription":"sales by quarter"}`,
	}
	generator := &chartGenFake{}
	h := NewVisualizationHandler(completer, generator)

	outcome := h.Generate(context.Background(), "show me sales as a pie")
	if !outcome.OK {
		t.Fatalf("expected ok outcome, got %+v", outcome)
	}
	if generator.kind != "pie" || generator.description != "sales by quarter" {
		t.Fatalf("generator got kind=%q description=%q", generator.kind, generator.description)
	}
	if outcome.Message != "Generated pie chart for: Quarterly Sales" {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
	if outcome.Chart.Options.Plugins.Title.Text != "Quarterly Sales" {
		t.Fatalf("title not applied: %+v", outcome.Chart.Options.Plugins.Title)
	}
}

func TestVisualizationDefaultsOnExtractionError(t *testing.T) {
	completer := &completerFake{jsonErr: errors.New("llm down")}
	generator := &chartGenFake{}
	h := NewVisualizationHandler(completer, generator)

	outcome := h.Generate(context.Background(), "chart my numbers")
	if !outcome.OK {
		t.Fatalf("extraction failure must not fail the handler: %+v", outcome)
	}
	if generator.kind != "bar" {
		t.Fatalf("expected default bar kind, got %q", generator.kind)
	}
	if generator.description != "chart my numbers" {
		t.Fatalf("expected query as description, got %q", generator.description)
	}
	if outcome.Message != "Generated bar chart for: Data Visualization" {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
}

func TestVisualizationDefaultsOnMalformedJSON(t *testing.T) {
	completer := &completerFake{jsonResponse: "certainly! here is your chart:"}
	generator := &chartGenFake{}
	h := NewVisualizationHandler(completer, generator)

	outcome := h.Generate(context.Background(), "chart my numbers")
	if !outcome.OK || generator.kind != "bar" {
		t.Fatalf("malformed extraction must fall back to defaults, got %+v", outcome)
	}
}

func TestVisualizationParsesWrappedJSON(t *testing.T) {
	completer := &completerFake{
		jsonResponse: "Sure thing: {\"chartKind\":\"radar\",\"title\":\"KPIs\",\"dataDescription\":\"kpi spread\"} hope it helps",
	}
	generator := &chartGenFake{}
	h := NewVisualizationHandler(completer, generator)

	outcome := h.Generate(context.Background(), "radar of KPIs")
	if !outcome.OK || generator.kind != "radar" {
		t.Fatalf("wrapped JSON should still parse, got kind=%q outcome=%+v", generator.kind, outcome)
	}
}

func TestVisualizationConvertsGeneratorPanicToOutcome(t *testing.T) {
	completer := &completerFake{jsonResponse: `{"chartKind":"bar","title":"T","dataDescription":"d"}`}
	h := NewVisualizationHandler(completer, &chartGenFake{panicWith: "boom"})

	outcome := h.Generate(context.Background(), "chart this")
	if outcome.OK {
		t.Fatalf("expected failure outcome")
	}
	if outcome.Chart != nil {
		t.Fatalf("failed generation must not carry a chart")
	}
	if outcome.ErrorDetail == "" {
		t.Fatalf("expected error detail")
	}
}
