package usecase

import (
	"context"
	"fmt"

	"github.com/mkorolev/insight-router/internal/core/domain"
	"github.com/mkorolev/insight-router/internal/core/ports"
)

const answerNotFound = "I could not find relevant information in the database."

const (
	tierSimilarity = "similarity"
	tierKeyword    = "keyword"
	tierFetchAll   = "fetch_all"
)

// RetrievalHandler produces a sourced answer from the knowledge index. It
// never fails its caller: collaborator errors and empty result sets are both
// folded into the returned outcome.
type RetrievalHandler struct {
	embedder  ports.Embedder
	index     ports.RetrievalIndex
	completer ports.Completer
	limit     int
}

func NewRetrievalHandler(
	embedder ports.Embedder,
	index ports.RetrievalIndex,
	completer ports.Completer,
	limit int,
) *RetrievalHandler {
	if limit <= 0 {
		limit = 3
	}
	return &RetrievalHandler{
		embedder:  embedder,
		index:     index,
		completer: completer,
		limit:     limit,
	}
}

// Retrieve runs the fallback chain, builds a context block from the entries
// and asks the completion backend to synthesize an answer.
func (h *RetrievalHandler) Retrieve(ctx context.Context, query string) (domain.RetrievalOutcome, string) {
	entries, tier, err := h.fetchWithFallback(ctx, query)
	if err != nil {
		// Chain exhaustion degrades to a soft miss rather than an error.
		return domain.RetrievalOutcome{
			AnswerText:  answerNotFound,
			SourceIDs:   []string{},
			ErrorDetail: err.Error(),
		}, tier
	}
	if len(entries) == 0 {
		return domain.RetrievalOutcome{
			AnswerText: answerNotFound,
			SourceIDs:  []string{},
		}, tier
	}

	answerText, err := h.completer.GenerateText(ctx, buildAnswerSynthesisPrompt(entries, query))
	if err != nil {
		return domain.RetrievalOutcome{
			SourceIDs:   []string{},
			ErrorDetail: fmt.Sprintf("synthesize answer: %v", err),
		}, tier
	}

	sourceIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		sourceIDs = append(sourceIDs, entry.ID)
	}

	return domain.RetrievalOutcome{
		OK:         true,
		AnswerText: answerText,
		SourceIDs:  sourceIDs,
	}, tier
}

// fetchWithFallback degrades through three tiers in strict order. A lower
// tier runs only when the previous one returned an error; an empty but
// successful result set stops the chain.
func (h *RetrievalHandler) fetchWithFallback(ctx context.Context, query string) ([]domain.RetrievedEntry, string, error) {
	entries, simErr := h.similaritySearch(ctx, query)
	if simErr == nil {
		return entries, tierSimilarity, nil
	}

	keywords := extractKeywords(query)
	if len(keywords) > 0 {
		entries, kwErr := h.index.SearchKeywords(ctx, keywords, h.limit)
		if kwErr == nil {
			return entries, tierKeyword, nil
		}
	}

	entries, fetchErr := h.index.FetchAll(ctx, h.limit)
	if fetchErr != nil {
		return nil, tierFetchAll, fmt.Errorf("retrieval chain exhausted: %w", fetchErr)
	}
	return entries, tierFetchAll, nil
}

func (h *RetrievalHandler) similaritySearch(ctx context.Context, query string) ([]domain.RetrievedEntry, error) {
	queryVector, err := h.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	entries, err := h.index.Search(ctx, queryVector, h.limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return entries, nil
}
