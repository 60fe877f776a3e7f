package repository

import (
	"context"

	"interview-ai-memo/internal/domain/model"
)

type MemoRepository interface {
	// FindByJobID returns domain.ErrNotFound when no memo exists yet; the
	// pipeline uses that as the summarization-stage resumability signal.
	FindByJobID(ctx context.Context, tx Tx, jobID string) (*model.Memo, error)
	Insert(ctx context.Context, tx Tx, m *model.Memo) error
}
