package domain

import "strings"

// Decision is the routing target resolved by intent classification.
type Decision string

const (
	DecisionChart  Decision = "chart"
	DecisionRAG    Decision = "rag"
	DecisionBoth   Decision = "both"
	DecisionDirect Decision = "direct"
)

// ParseDecision matches a completion response against the closed decision
// vocabulary. The raw text is lower-cased and trimmed before comparison.
func ParseDecision(raw string) (Decision, bool) {
	switch Decision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionChart:
		return DecisionChart, true
	case DecisionRAG:
		return DecisionRAG, true
	case DecisionBoth:
		return DecisionBoth, true
	case DecisionDirect:
		return DecisionDirect, true
	default:
		return "", false
	}
}

// RoutingState is the per-request record threaded through the orchestration
// pipeline. Query is set once at creation; Decision is written once by the
// classification step; each handler outcome is written at most once; Final is
// written exactly once by the terminal step. Trace is append-only.
type RoutingState struct {
	Query         string
	Decision      Decision
	Visualization *VisualizationOutcome
	Retrieval     *RetrievalOutcome
	Final         *FinalResponse
	Trace         []string
}

func NewRoutingState(query string) RoutingState {
	return RoutingState{Query: query}
}

// WithTrace returns a copy of the state with one more step label appended.
func (s RoutingState) WithTrace(label string) RoutingState {
	trace := make([]string, 0, len(s.Trace)+1)
	trace = append(trace, s.Trace...)
	trace = append(trace, label)
	s.Trace = trace
	return s
}

// VisualizationOutcome is the visualization handler result. The handler never
// fails its caller; failures are carried in ErrorDetail with OK=false.
type VisualizationOutcome struct {
	OK          bool
	Chart       *ChartSpec
	Message     string
	ErrorDetail string
}

// RetrievalOutcome is the retrieval handler result. A zero-hit search is a
// soft miss (OK=false with an explanatory AnswerText), not an error.
type RetrievalOutcome struct {
	OK          bool
	AnswerText  string
	SourceIDs   []string
	ErrorDetail string
}

// FinalResponse is the terminal response handed to the transport layer.
// Field names are a wire contract consumed by existing callers.
type FinalResponse struct {
	Answer      string         `json:"answer"`
	References  map[string]any `json:"references"`
	FileIDs     []string       `json:"fileIds"`
	ChartConfig *ChartSpec     `json:"chartConfig"`
}
