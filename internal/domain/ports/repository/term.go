package repository

import (
	"context"

	"interview-ai-memo/internal/domain/model"
)

type TermOccurrenceRepository interface {
	CountByJob(ctx context.Context, tx Tx, jobID string) (int, error)
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.TermOccurrence, error)
	ListPending(ctx context.Context, tx Tx, jobID string) ([]*model.TermOccurrence, error)
	BulkInsert(ctx context.Context, tx Tx, occs []*model.TermOccurrence) error

	// SetStatus is scoped to the owning user so a handshake request can never
	// flip occurrences belonging to someone else's job.
	SetStatus(ctx context.Context, tx Tx, id, userID string, status model.TermStatus) error
}

type GlossaryRepository interface {
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.GlossaryTerm, error)
	Upsert(ctx context.Context, tx Tx, term *model.GlossaryTerm) error
	UpsertBatch(ctx context.Context, tx Tx, terms []*model.GlossaryTerm) error
}

type ConfirmationRepository interface {
	Insert(ctx context.Context, tx Tx, c *model.Confirmation) error
}
