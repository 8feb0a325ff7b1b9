package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mkorolev/insight-router/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*KnowledgeRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &KnowledgeRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestCreateInsertsAllColumns(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	entry := &domain.KnowledgeEntry{
		ID:        "kb-1",
		Question:  "What drives revenue?",
		Answer:    "Mostly subscriptions.",
		Status:    domain.EntryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO knowledge_entries").
		WithArgs("kb-1", entry.Question, entry.Answer, "pending", "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, question, answer, status").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDScansEntry(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "question", "answer", "status", "error_message", "created_at", "updated_at",
	}).AddRow("kb-1", "q", "a", "ready", nil, now, now)

	mock.ExpectQuery("SELECT id, question, answer, status").
		WithArgs("kb-1").
		WillReturnRows(rows)

	entry, err := repo.GetByID(context.Background(), "kb-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if entry.Status != domain.EntryStatusReady {
		t.Fatalf("status = %q", entry.Status)
	}
	if entry.Error != "" {
		t.Fatalf("expected empty error message, got %q", entry.Error)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE knowledge_entries").
		WithArgs("missing", string(domain.EntryStatusIndexing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.EntryStatusIndexing, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
