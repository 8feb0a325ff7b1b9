package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkorolev/insight-router/internal/core/domain"
	"github.com/mkorolev/insight-router/internal/core/ports"
)

const (
	answerProcessingError   = "I encountered an error processing your request."
	answerCombinationFailed = "I encountered an error while processing your request."

	referenceKindRAGSources = "ragSources"
)

// Orchestrator classifies an incoming query, routes it to the visualization
// and/or retrieval handler, and combines their outcomes into one response.
// ProcessQuery never fails its caller.
type Orchestrator struct {
	completer ports.Completer
	retrieval *RetrievalHandler
	viz       *VisualizationHandler
	recorder  ports.RoutingRecorder
}

func NewOrchestrator(
	completer ports.Completer,
	retrieval *RetrievalHandler,
	viz *VisualizationHandler,
	recorder ports.RoutingRecorder,
) *Orchestrator {
	return &Orchestrator{
		completer: completer,
		retrieval: retrieval,
		viz:       viz,
		recorder:  recorder,
	}
}

func (o *Orchestrator) ProcessQuery(ctx context.Context, query string) (final *domain.FinalResponse) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("orchestration_panic", "panic", fmt.Sprint(r))
			final = combinationFailureResponse()
		}
	}()

	state := domain.NewRoutingState(query)
	state = o.classify(ctx, state)
	if o.recorder != nil {
		o.recorder.RecordDecision(string(state.Decision))
	}

	switch state.Decision {
	case domain.DecisionChart, domain.DecisionBoth:
		state = o.runVisualization(ctx, state)
	case domain.DecisionRAG:
		state = o.runRetrieval(ctx, state)
	case domain.DecisionDirect:
		return o.directReply(ctx, state)
	default:
		// Unreachable given the classification fallback.
		return o.directReply(ctx, state)
	}

	return o.combine(ctx, state)
}

// classify resolves the routing decision with a single completion call.
// Anything the backend returns outside the four-token vocabulary, including
// an outright error, resolves to rag: an unclassifiable request is treated
// as an information request, not a failure.
func (o *Orchestrator) classify(ctx context.Context, state domain.RoutingState) domain.RoutingState {
	decision := domain.DecisionRAG
	raw, err := o.completer.GenerateText(ctx, buildClassificationPrompt(state.Query))
	if err == nil {
		if parsed, ok := domain.ParseDecision(raw); ok {
			decision = parsed
		}
	}
	state.Decision = decision
	return state.WithTrace("classify:" + string(decision))
}

func (o *Orchestrator) runVisualization(ctx context.Context, state domain.RoutingState) domain.RoutingState {
	if state.Visualization != nil {
		return state
	}
	outcome := o.viz.Generate(ctx, state.Query)
	if outcome.OK && o.recorder != nil {
		o.recorder.RecordChartGenerated(outcome.Chart.Type)
	}
	state.Visualization = &outcome
	return state.WithTrace("visualization")
}

func (o *Orchestrator) runRetrieval(ctx context.Context, state domain.RoutingState) domain.RoutingState {
	if state.Retrieval != nil {
		return state
	}
	outcome, tier := o.retrieval.Retrieve(ctx, state.Query)
	if o.recorder != nil {
		o.recorder.RecordRetrievalTier(tier)
	}
	state.Retrieval = &outcome
	return state.WithTrace("retrieval")
}

// combine merges handler outcomes into the terminal response. For the "both"
// decision the retrieval dispatch was deferred during routing and is executed
// here, before merging. Nothing escapes this step: any failure becomes the
// generic terminal response.
func (o *Orchestrator) combine(ctx context.Context, state domain.RoutingState) (final *domain.FinalResponse) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("combination_panic", "panic", fmt.Sprint(r))
			final = combinationFailureResponse()
		}
	}()

	if state.Decision == domain.DecisionBoth && state.Retrieval == nil {
		state = o.runRetrieval(ctx, state)
	}
	state = state.WithTrace("combine")

	viz := state.Visualization
	ret := state.Retrieval

	var answer string
	switch {
	case viz != nil && viz.OK && ret != nil && ret.OK:
		combined, err := o.completer.GenerateText(ctx, buildCombinedSynthesisPrompt(ret.AnswerText, summarizeChart(viz)))
		if err != nil {
			return combinationFailureResponse()
		}
		answer = combined
	case ret != nil && ret.OK:
		answer = ret.AnswerText
	case viz != nil && viz.OK:
		answer = viz.Message
	case ret != nil && ret.AnswerText != "":
		// Soft retrieval miss: surface its explanation instead of the
		// generic failure string.
		answer = ret.AnswerText
	default:
		answer = answerProcessingError
	}

	references := map[string]any{}
	fileIDs := []string{}
	if ret != nil && ret.OK {
		references[referenceKindRAGSources] = ret.SourceIDs
		fileIDs = ret.SourceIDs
	}

	var chartConfig *domain.ChartSpec
	if viz != nil && viz.OK {
		chartConfig = viz.Chart
	}

	final = &domain.FinalResponse{
		Answer:      answer,
		References:  references,
		FileIDs:     fileIDs,
		ChartConfig: chartConfig,
	}
	state.Final = final
	o.logOutcome(state)
	return final
}

func (o *Orchestrator) directReply(ctx context.Context, state domain.RoutingState) *domain.FinalResponse {
	state = state.WithTrace("direct")

	answer, err := o.completer.GenerateText(ctx, buildDirectReplyPrompt(state.Query))
	if err != nil {
		answer = answerProcessingError
	}

	final := &domain.FinalResponse{
		Answer:     answer,
		References: map[string]any{},
		FileIDs:    []string{},
	}
	state.Final = final
	o.logOutcome(state)
	return final
}

func (o *Orchestrator) logOutcome(state domain.RoutingState) {
	slog.Info("query_routed",
		"decision", string(state.Decision),
		"trace", state.Trace,
		"sources", len(state.Final.FileIDs),
		"has_chart", state.Final.ChartConfig != nil,
	)
}

func summarizeChart(viz *domain.VisualizationOutcome) string {
	if viz == nil || viz.Chart == nil {
		return "no chart was generated"
	}
	return fmt.Sprintf("%s chart %q with %d labels",
		viz.Chart.Type,
		viz.Chart.Options.Plugins.Title.Text,
		len(viz.Chart.Data.Labels),
	)
}

func combinationFailureResponse() *domain.FinalResponse {
	return &domain.FinalResponse{
		Answer:     answerCombinationFailed,
		References: map[string]any{},
		FileIDs:    []string{},
	}
}
