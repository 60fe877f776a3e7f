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

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *jobRepo {
	return &jobRepo{pool: pool}
}

const jobColumns = `id, user_id, title, status, error_message, audio_asset_id, transcript_id, memo_id, needs_review, created_at, updated_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	var statusStr string
	err := row.Scan(
		&j.ID, &j.UserID, &j.Title, &statusStr, &j.ErrorMessage,
		&j.AudioAssetID, &j.TranscriptID, &j.MemoID, &j.NeedsReview,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	j.Status = model.JobStatus(statusStr)
	return &j, nil
}

func (r *jobRepo) Save(ctx context.Context, tx repository.Tx, job *model.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.UpdatedAt = time.Now()

	const q = `
INSERT INTO jobs (id, user_id, title, status, error_message, audio_asset_id, transcript_id, memo_id, needs_review, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  status = EXCLUDED.status,
  error_message = EXCLUDED.error_message,
  audio_asset_id = EXCLUDED.audio_asset_id,
  transcript_id = EXCLUDED.transcript_id,
  memo_id = EXCLUDED.memo_id,
  needs_review = EXCLUDED.needs_review,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.UserID, job.Title, string(job.Status), job.ErrorMessage,
		job.AudioAssetID, job.TranscriptID, job.MemoID, job.NeedsReview,
		job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+jobColumns+` FROM jobs WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *jobRepo) ListQueued(ctx context.Context, tx repository.Tx, limit int) ([]*model.Job, error) {
	const q = `
SELECT ` + jobColumns + `
  FROM jobs
 WHERE status = 'queued'
 ORDER BY created_at
 LIMIT $1;`

	rows, err := pickRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *jobRepo) SetStatus(ctx context.Context, tx repository.Tx, id string, status model.JobStatus) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE jobs SET status=$2, updated_at=now() WHERE id=$1;`, id, string(status))
	return err
}

func (r *jobRepo) AttachTranscript(ctx context.Context, tx repository.Tx, id, transcriptID string, status model.JobStatus) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE jobs SET transcript_id=$2, status=$3, updated_at=now() WHERE id=$1;`,
		id, transcriptID, string(status))
	return err
}

func (r *jobRepo) AttachMemo(ctx context.Context, tx repository.Tx, id, memoID string) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE jobs SET memo_id=$2, status='completed', updated_at=now() WHERE id=$1;`,
		id, memoID)
	return err
}

func (r *jobRepo) SetNeedsReview(ctx context.Context, tx repository.Tx, id string, needs bool, status model.JobStatus) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE jobs SET needs_review=$2, status=$3, updated_at=now() WHERE id=$1;`,
		id, needs, string(status))
	return err
}

func (r *jobRepo) Enqueue(ctx context.Context, tx repository.Tx, id string) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE jobs SET status='queued', needs_review=false, updated_at=now() WHERE id=$1;`, id)
	return err
}

func (r *jobRepo) MarkFailed(ctx context.Context, tx repository.Tx, id, message string) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE jobs SET status='failed', error_message=$2, updated_at=now() WHERE id=$1;`,
		id, message)
	return err
}
