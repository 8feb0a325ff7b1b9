package ports

import (
	"context"

	"github.com/mkorolev/insight-router/internal/core/domain"
)

// Completer sends a rendered prompt to the text-completion backend.
// GenerateJSON constrains the backend to emit a JSON object.
type Completer interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Embedder builds vectors for entry text and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// RetrievalIndex is the vector index over knowledge entries. Search ranks by
// semantic nearness, SearchKeywords filters by substring hits on question or
// answer, FetchAll returns entries with no filter at all.
type RetrievalIndex interface {
	IndexEntry(ctx context.Context, entry domain.KnowledgeEntry, vector []float32) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedEntry, error)
	SearchKeywords(ctx context.Context, keywords []string, limit int) ([]domain.RetrievedEntry, error)
	FetchAll(ctx context.Context, limit int) ([]domain.RetrievedEntry, error)
}

// ChartGenerator maps a chart kind and data description to a display-ready
// spec. It is pure and never fails; unknown kinds degrade to a default shape.
type ChartGenerator interface {
	Generate(kind, description string) domain.ChartSpec
}

// KnowledgeRepository persists knowledge entry state.
type KnowledgeRepository interface {
	Create(ctx context.Context, entry *domain.KnowledgeEntry) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error)
	UpdateStatus(ctx context.Context, id string, status domain.EntryStatus, errMessage string) error
}

// MessageQueue publishes/consumes entry indexing events.
type MessageQueue interface {
	PublishEntryIngested(ctx context.Context, entryID string) error
	SubscribeEntryIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// RoutingRecorder receives orchestration observations for metrics.
type RoutingRecorder interface {
	RecordDecision(decision string)
	RecordRetrievalTier(tier string)
	RecordChartGenerated(kind string)
}
