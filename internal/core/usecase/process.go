package usecase

import (
	"context"
	"fmt"

	"github.com/mkorolev/insight-router/internal/core/domain"
	"github.com/mkorolev/insight-router/internal/core/ports"
)

type ProcessEntryUseCase struct {
	repo     ports.KnowledgeRepository
	embedder ports.Embedder
	index    ports.RetrievalIndex
}

func NewProcessEntryUseCase(
	repo ports.KnowledgeRepository,
	embedder ports.Embedder,
	index ports.RetrievalIndex,
) *ProcessEntryUseCase {
	return &ProcessEntryUseCase{
		repo:     repo,
		embedder: embedder,
		index:    index,
	}
}

// ProcessByID embeds a pending entry and indexes it into the vector store.
func (uc *ProcessEntryUseCase) ProcessByID(ctx context.Context, entryID string) error {
	if err := uc.markStatus(ctx, entryID, domain.EntryStatusIndexing, ""); err != nil {
		return fmt.Errorf("set status=indexing: %w", err)
	}

	if err := uc.indexEntry(ctx, entryID); err != nil {
		if failErr := uc.markStatus(ctx, entryID, domain.EntryStatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, entryID, domain.EntryStatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessEntryUseCase) indexEntry(ctx context.Context, entryID string) error {
	entry, err := uc.repo.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("fetch entry by id: %w", err)
	}

	vector, err := uc.embedder.EmbedQuery(ctx, entry.Question+"\n"+entry.Answer)
	if err != nil {
		return fmt.Errorf("embed entry: %w", err)
	}

	if err := uc.index.IndexEntry(ctx, *entry, vector); err != nil {
		return fmt.Errorf("index entry: %w", err)
	}
	return nil
}

func (uc *ProcessEntryUseCase) markStatus(ctx context.Context, entryID string, status domain.EntryStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, entryID, status, errMessage)
}
