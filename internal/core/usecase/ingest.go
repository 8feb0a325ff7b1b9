package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkorolev/insight-router/internal/core/domain"
	"github.com/mkorolev/insight-router/internal/core/ports"
)

type IngestKnowledgeUseCase struct {
	repo  ports.KnowledgeRepository
	queue ports.MessageQueue
}

func NewIngestKnowledgeUseCase(
	repo ports.KnowledgeRepository,
	queue ports.MessageQueue,
) *IngestKnowledgeUseCase {
	return &IngestKnowledgeUseCase{
		repo:  repo,
		queue: queue,
	}
}

// Ingest records a question/answer pair and schedules it for indexing.
func (uc *IngestKnowledgeUseCase) Ingest(ctx context.Context, question, answer string) (*domain.KnowledgeEntry, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest entry", errors.New("question is required"))
	}
	if answer == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest entry", errors.New("answer is required"))
	}

	now := time.Now().UTC()
	entry := &domain.KnowledgeEntry{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		Status:    domain.EntryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create knowledge entry: %w", err)
	}

	if err := uc.queue.PublishEntryIngested(ctx, entry.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return entry, nil
}
