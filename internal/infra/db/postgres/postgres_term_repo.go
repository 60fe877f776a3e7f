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

var _ repository.TermOccurrenceRepository = (*termOccurrenceRepo)(nil)

type termOccurrenceRepo struct {
	pool *pgxpool.Pool
}

func NewTermOccurrenceRepo(pool *pgxpool.Pool) *termOccurrenceRepo {
	return &termOccurrenceRepo{pool: pool}
}

const termOccurrenceColumns = `id, user_id, job_id, term_text, confidence, context, status, created_at, updated_at`

func scanTermOccurrence(row pgx.Row) (*model.TermOccurrence, error) {
	var o model.TermOccurrence
	err := row.Scan(&o.ID, &o.UserID, &o.JobID, &o.TermText, &o.Confidence, &o.Context, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *termOccurrenceRepo) CountByJob(ctx context.Context, tx repository.Tx, jobID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM term_occurrences WHERE job_id=$1;`, jobID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *termOccurrenceRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.TermOccurrence, error) {
	q := `SELECT ` + termOccurrenceColumns + ` FROM term_occurrences WHERE job_id=$1 ORDER BY created_at;`
	rows, err := pickRows(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.TermOccurrence
	for rows.Next() {
		o, err := scanTermOccurrence(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *termOccurrenceRepo) ListPending(ctx context.Context, tx repository.Tx, jobID string) ([]*model.TermOccurrence, error) {
	q := `SELECT ` + termOccurrenceColumns + ` FROM term_occurrences WHERE job_id=$1 AND status='pending' ORDER BY created_at;`
	rows, err := pickRows(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.TermOccurrence
	for rows.Next() {
		o, err := scanTermOccurrence(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *termOccurrenceRepo) BulkInsert(ctx context.Context, tx repository.Tx, occs []*model.TermOccurrence) error {
	now := time.Now()
	for _, o := range occs {
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		o.UpdatedAt = o.CreatedAt
		if o.Status == "" {
			o.Status = model.TermStatusPending
		}
		_, err := execSQL(ctx, r.pool, tx,
			`INSERT INTO term_occurrences (`+termOccurrenceColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`,
			o.ID, o.UserID, o.JobID, o.TermText, o.Confidence, o.Context, o.Status, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *termOccurrenceRepo) SetStatus(ctx context.Context, tx repository.Tx, id, userID string, status model.TermStatus) error {
	ct, err := execSQL(ctx, r.pool, tx,
		`UPDATE term_occurrences SET status=$1, updated_at=NOW() WHERE id=$2 AND user_id=$3;`,
		status, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
