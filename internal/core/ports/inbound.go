package ports

import (
	"context"

	"github.com/mkorolev/insight-router/internal/core/domain"
)

// QueryRouter is the inbound contract for routed query processing. It never
// fails: any internal error is converted into a best-effort FinalResponse.
type QueryRouter interface {
	ProcessQuery(ctx context.Context, query string) *domain.FinalResponse
}

// KnowledgeIngestor accepts new question/answer pairs for indexing.
type KnowledgeIngestor interface {
	Ingest(ctx context.Context, question, answer string) (*domain.KnowledgeEntry, error)
}

// KnowledgeReader is the inbound read model for entry state.
type KnowledgeReader interface {
	GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error)
}

// EntryProcessor is the inbound contract for asynchronous entry indexing.
type EntryProcessor interface {
	ProcessByID(ctx context.Context, entryID string) error
}
