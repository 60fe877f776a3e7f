package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/repository"
)

var _ repository.AudioAssetRepository = (*audioAssetRepo)(nil)

type audioAssetRepo struct {
	pool *pgxpool.Pool
}

func NewAudioAssetRepo(pool *pgxpool.Pool) *audioAssetRepo {
	return &audioAssetRepo{pool: pool}
}

func (r *audioAssetRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.AudioAsset, error) {
	const q = `
SELECT id, user_id, job_id, storage_path, file_name, file_size, mime_type, duration_seconds, created_at
  FROM audio_assets WHERE job_id=$1;`

	row, err := pickRow(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return nil, err
	}
	var a model.AudioAsset
	if err := row.Scan(&a.ID, &a.UserID, &a.JobID, &a.StoragePath, &a.FileName, &a.FileSize, &a.MimeType, &a.DurationSeconds, &a.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *audioAssetRepo) MarkDeleted(ctx context.Context, tx repository.Tx, id, tombstonePath string) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE audio_assets SET storage_path=$2 WHERE id=$1;`, id, tombstonePath)
	return err
}
