package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/repository"
)

var _ repository.GlossaryRepository = (*glossaryRepo)(nil)

type glossaryRepo struct {
	pool *pgxpool.Pool
}

func NewGlossaryRepo(pool *pgxpool.Pool) *glossaryRepo {
	return &glossaryRepo{pool: pool}
}

const glossaryColumns = `id, user_id, term, normalized_term, source, created_at`

func (r *glossaryRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.GlossaryTerm, error) {
	q := `SELECT ` + glossaryColumns + ` FROM glossary_terms WHERE user_id=$1 ORDER BY term;`
	rows, err := pickRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.GlossaryTerm
	for rows.Next() {
		var g model.GlossaryTerm
		if err := rows.Scan(&g.ID, &g.UserID, &g.Term, &g.NormalizedTerm, &g.Source, &g.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

func (r *glossaryRepo) Upsert(ctx context.Context, tx repository.Tx, term *model.GlossaryTerm) error {
	if term.ID == "" {
		term.ID = uuid.NewString()
	}
	if term.NormalizedTerm == "" {
		term.NormalizedTerm = strings.ToLower(strings.TrimSpace(term.Term))
	}
	if term.CreatedAt.IsZero() {
		term.CreatedAt = time.Now()
	}
	// A confirmed entry outranks a seed one; never downgrade the source.
	const q = `
INSERT INTO glossary_terms (id, user_id, term, normalized_term, source, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, term) DO UPDATE SET
  normalized_term = EXCLUDED.normalized_term,
  source = CASE WHEN glossary_terms.source = 'confirmed' THEN glossary_terms.source ELSE EXCLUDED.source END;`
	_, err := execSQL(ctx, r.pool, tx, q, term.ID, term.UserID, term.Term, term.NormalizedTerm, term.Source, term.CreatedAt)
	return err
}

func (r *glossaryRepo) UpsertBatch(ctx context.Context, tx repository.Tx, terms []*model.GlossaryTerm) error {
	for _, t := range terms {
		if err := r.Upsert(ctx, tx, t); err != nil {
			return err
		}
	}
	return nil
}
