package repository

import (
	"context"

	"interview-ai-memo/internal/domain/model"
)

type JobRepository interface {
	Save(ctx context.Context, tx Tx, job *model.Job) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Job, error)

	// ListQueued returns up to limit jobs with status queued, oldest first.
	ListQueued(ctx context.Context, tx Tx, limit int) ([]*model.Job, error)

	SetStatus(ctx context.Context, tx Tx, id string, status model.JobStatus) error

	// AttachTranscript links the transcript and advances the status in one
	// update, matching the end of the transcription stage.
	AttachTranscript(ctx context.Context, tx Tx, id, transcriptID string, status model.JobStatus) error

	// AttachMemo links the memo and marks the job completed.
	AttachMemo(ctx context.Context, tx Tx, id, memoID string) error

	// SetNeedsReview updates the review flag together with the status.
	SetNeedsReview(ctx context.Context, tx Tx, id string, needs bool, status model.JobStatus) error

	// Enqueue flags the job for the next queue-runner pass and clears the
	// review flag.
	Enqueue(ctx context.Context, tx Tx, id string) error

	MarkFailed(ctx context.Context, tx Tx, id, message string) error
}
