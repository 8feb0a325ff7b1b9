package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mkorolev/insight-router/internal/core/ports"
)

type recorderFake struct {
	decisions []string
	tiers     []string
	charts    []string
}

func (r *recorderFake) RecordDecision(decision string)   { r.decisions = append(r.decisions, decision) }
func (r *recorderFake) RecordRetrievalTier(tier string)  { r.tiers = append(r.tiers, tier) }
func (r *recorderFake) RecordChartGenerated(kind string) { r.charts = append(r.charts, kind) }

func newOrchestratorForTest(completer *completerFake, index *indexFake, generator *chartGenFake, recorder ports.RoutingRecorder) *Orchestrator {
	retrieval := NewRetrievalHandler(&embedderFake{}, index, completer, 3)
	viz := NewVisualizationHandler(completer, generator)
	return NewOrchestrator(completer, retrieval, viz, recorder)
}

func TestProcessQueryClassificationFallbackToRAG(t *testing.T) {
	completer := &completerFake{textResponses: []string{"definitely a chart!", "grounded answer"}}
	index := &indexFake{searchEntries: someEntries()}
	recorder := &recorderFake{}
	o := newOrchestratorForTest(completer, index, &chartGenFake{}, recorder)

	resp := o.ProcessQuery(context.Background(), "tell me about churn")
	if resp.Answer != "grounded answer" {
		t.Fatalf("unexpected answer: %q", resp.Answer)
	}
	if !reflect.DeepEqual(recorder.decisions, []string{"rag"}) {
		t.Fatalf("unrecognized token must resolve to rag, got %v", recorder.decisions)
	}
	if resp.References[referenceKindRAGSources] == nil {
		t.Fatalf("rag response must reference its sources")
	}
}

func TestProcessQueryClassificationErrorFallsBackToRAG(t *testing.T) {
	completer := &completerFake{
		textErrs:      []error{errors.New("llm down")},
		textResponses: []string{"", "grounded answer"},
	}
	index := &indexFake{searchEntries: someEntries()}
	recorder := &recorderFake{}
	o := newOrchestratorForTest(completer, index, &chartGenFake{}, recorder)

	o.ProcessQuery(context.Background(), "tell me about churn")
	if !reflect.DeepEqual(recorder.decisions, []string{"rag"}) {
		t.Fatalf("classification error must resolve to rag, got %v", recorder.decisions)
	}
}

func TestProcessQueryDirectScenario(t *testing.T) {
	completer := &completerFake{textResponses: []string{"direct", "Hi! I'm doing well."}}
	o := newOrchestratorForTest(completer, &indexFake{}, &chartGenFake{}, nil)

	resp := o.ProcessQuery(context.Background(), "Hello, how are you?")
	if resp.Answer != "Hi! I'm doing well." {
		t.Fatalf("unexpected answer: %q", resp.Answer)
	}
	if resp.ChartConfig != nil {
		t.Fatalf("direct reply must not carry a chart")
	}
	if len(resp.FileIDs) != 0 || len(resp.References) != 0 {
		t.Fatalf("direct reply must not carry sources: %+v", resp)
	}
}

func TestProcessQueryChartOnlyScenario(t *testing.T) {
	completer := &completerFake{
		textResponses: []string{"chart"},
		jsonResponse:  `{"chartKind":"bar","title":"Q1 Sales","dataDescription":"sales for Q1"}`,
	}
	recorder := &recorderFake{}
	o := newOrchestratorForTest(completer, &indexFake{}, &chartGenFake{}, recorder)

	resp := o.ProcessQuery(context.Background(), "Create a bar chart showing sales data for Q1")
	if resp.ChartConfig == nil || resp.ChartConfig.Type != "bar" {
		t.Fatalf("expected a bar chart, got %+v", resp.ChartConfig)
	}
	if resp.Answer != "Generated bar chart for: Q1 Sales" {
		t.Fatalf("unexpected answer: %q", resp.Answer)
	}
	if len(resp.FileIDs) != 0 {
		t.Fatalf("chart-only response must not carry file ids")
	}
	if !reflect.DeepEqual(recorder.charts, []string{"bar"}) {
		t.Fatalf("chart generation not recorded: %v", recorder.charts)
	}
}

func TestProcessQueryBothRunsEachHandlerOnce(t *testing.T) {
	completer := &completerFake{
		textResponses: []string{"both", "grounded answer", "combined answer with chart"},
		jsonResponse:  `{"chartKind":"line","title":"Trend","dataDescription":"monthly trend"}`,
	}
	index := &indexFake{searchEntries: someEntries()}
	recorder := &recorderFake{}
	o := newOrchestratorForTest(completer, index, &chartGenFake{}, recorder)

	resp := o.ProcessQuery(context.Background(), "explain the trend and chart it")
	if resp.Answer != "combined answer with chart" {
		t.Fatalf("synthesis must replace partial answers, got %q", resp.Answer)
	}
	if resp.ChartConfig == nil || resp.ChartConfig.Type != "line" {
		t.Fatalf("expected line chart, got %+v", resp.ChartConfig)
	}
	if !reflect.DeepEqual(resp.FileIDs, []string{"kb-1", "kb-2"}) {
		t.Fatalf("unexpected file ids: %v", resp.FileIDs)
	}
	if index.searchCalls != 1 {
		t.Fatalf("retrieval must run exactly once, ran %d times", index.searchCalls)
	}
	if completer.jsonCalls != 1 {
		t.Fatalf("visualization extraction must run exactly once, ran %d times", completer.jsonCalls)
	}
	if len(recorder.tiers) != 1 {
		t.Fatalf("expected one retrieval dispatch, got %v", recorder.tiers)
	}
}

func TestProcessQueryCombinedPartialFailureUsesVisualizationMessage(t *testing.T) {
	completer := &completerFake{
		textResponses: []string{"both"},
		textErrs:      []error{nil, errors.New("llm quota exceeded")},
		jsonResponse:  `{"chartKind":"pie","title":"Split","dataDescription":"category split"}`,
	}
	index := &indexFake{searchEntries: someEntries()}
	o := newOrchestratorForTest(completer, index, &chartGenFake{}, nil)

	resp := o.ProcessQuery(context.Background(), "explain the split and chart it")
	if resp.Answer != "Generated pie chart for: Split" {
		t.Fatalf("expected the visualization message, got %q", resp.Answer)
	}
	if resp.ChartConfig == nil {
		t.Fatalf("chart must survive a retrieval failure")
	}
	if len(resp.FileIDs) != 0 || len(resp.References) != 0 {
		t.Fatalf("failed retrieval must not contribute sources: %+v", resp)
	}
}

func TestProcessQueryRAGSoftMissSurfacesExplanation(t *testing.T) {
	completer := &completerFake{textResponses: []string{"rag"}}
	o := newOrchestratorForTest(completer, &indexFake{}, &chartGenFake{}, nil)

	resp := o.ProcessQuery(context.Background(), "anything indexed about this?")
	if resp.Answer != answerNotFound {
		t.Fatalf("unexpected answer: %q", resp.Answer)
	}
	if len(resp.References) != 0 {
		t.Fatalf("soft miss must not reference sources")
	}
}

func TestProcessQueryNeitherHandlerSucceeded(t *testing.T) {
	completer := &completerFake{
		textResponses: []string{"both"},
		textErrs:      []error{nil, errors.New("llm quota exceeded")},
		jsonResponse:  `{"chartKind":"bar","title":"T","dataDescription":"d"}`,
	}
	index := &indexFake{searchEntries: someEntries()}
	o := newOrchestratorForTest(completer, index, &chartGenFake{panicWith: "styling table corrupt"}, nil)

	resp := o.ProcessQuery(context.Background(), "explain and chart")
	if resp.Answer != answerProcessingError {
		t.Fatalf("unexpected answer: %q", resp.Answer)
	}
	if resp.ChartConfig != nil {
		t.Fatalf("failed visualization must not carry a chart")
	}
}

func TestProcessQueryCombinedSynthesisErrorIsGenericFailure(t *testing.T) {
	completer := &completerFake{
		textResponses: []string{"both", "grounded answer"},
		textErrs:      []error{nil, nil, errors.New("llm quota exceeded")},
		jsonResponse:  `{"chartKind":"bar","title":"T","dataDescription":"d"}`,
	}
	index := &indexFake{searchEntries: someEntries()}
	o := newOrchestratorForTest(completer, index, &chartGenFake{}, nil)

	resp := o.ProcessQuery(context.Background(), "explain and chart")
	if resp.Answer != answerCombinationFailed {
		t.Fatalf("unexpected answer: %q", resp.Answer)
	}
	if resp.ChartConfig != nil || len(resp.FileIDs) != 0 {
		t.Fatalf("combination failure must return the bare terminal response: %+v", resp)
	}
}

func TestProcessQueryNeverPanics(t *testing.T) {
	completer := &completerFake{panicMessage: "transport exploded"}
	o := newOrchestratorForTest(completer, &indexFake{}, &chartGenFake{}, nil)

	resp := o.ProcessQuery(context.Background(), "anything")
	if resp == nil {
		t.Fatalf("expected a response")
	}
	if resp.Answer != answerCombinationFailed {
		t.Fatalf("unexpected answer: %q", resp.Answer)
	}
}
