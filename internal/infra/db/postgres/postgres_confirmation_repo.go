package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/repository"
)

var _ repository.ConfirmationRepository = (*confirmationRepo)(nil)

type confirmationRepo struct {
	pool *pgxpool.Pool
}

func NewConfirmationRepo(pool *pgxpool.Pool) *confirmationRepo {
	return &confirmationRepo{pool: pool}
}

func (r *confirmationRepo) Insert(ctx context.Context, tx repository.Tx, c *model.Confirmation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := execSQL(ctx, r.pool, tx,
		`INSERT INTO term_confirmations (id, user_id, job_id, term_text, confirmed_text, action, context, source, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`,
		c.ID, c.UserID, c.JobID, c.TermText, c.ConfirmedText, c.Action, c.Context, c.Source, c.CreatedAt)
	return err
}
