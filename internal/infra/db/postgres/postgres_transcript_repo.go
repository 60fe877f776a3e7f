package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/repository"
)

var _ repository.TranscriptRepository = (*transcriptRepo)(nil)

type transcriptRepo struct {
	pool *pgxpool.Pool
}

func NewTranscriptRepo(pool *pgxpool.Pool) *transcriptRepo {
	return &transcriptRepo{pool: pool}
}

func (r *transcriptRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.Transcript, error) {
	const q = `
SELECT id, user_id, job_id, transcript_text, raw, created_at
  FROM transcripts WHERE job_id=$1;`

	row, err := pickRow(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return nil, err
	}
	var t model.Transcript
	if err := row.Scan(&t.ID, &t.UserID, &t.JobID, &t.TranscriptText, &t.Raw, &t.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *transcriptRepo) Insert(ctx context.Context, tx repository.Tx, t *model.Transcript) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := execSQL(ctx, r.pool, tx,
		`INSERT INTO transcripts (id, user_id, job_id, transcript_text, raw, created_at) VALUES ($1,$2,$3,$4,$5,$6);`,
		t.ID, t.UserID, t.JobID, t.TranscriptText, t.Raw, t.CreatedAt)
	return err
}
