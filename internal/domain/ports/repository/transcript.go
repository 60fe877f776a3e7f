package repository

import (
	"context"

	"interview-ai-memo/internal/domain/model"
)

type TranscriptRepository interface {
	// FindByJobID returns domain.ErrNotFound when the job has no transcript
	// yet; the pipeline uses that as the stage-1 resumability signal.
	FindByJobID(ctx context.Context, tx Tx, jobID string) (*model.Transcript, error)
	Insert(ctx context.Context, tx Tx, t *model.Transcript) error
}
