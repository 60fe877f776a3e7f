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

var _ repository.MemoRepository = (*memoRepo)(nil)

type memoRepo struct {
	pool *pgxpool.Pool
}

func NewMemoRepo(pool *pgxpool.Pool) *memoRepo {
	return &memoRepo{pool: pool}
}

func (r *memoRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.Memo, error) {
	const q = `
SELECT id, user_id, job_id, ic_qa_text, wechat_article_text, created_at
  FROM memos WHERE job_id=$1;`

	row, err := pickRow(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return nil, err
	}
	var m model.Memo
	if err := row.Scan(&m.ID, &m.UserID, &m.JobID, &m.IcQaText, &m.WeChatArticleText, &m.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *memoRepo) Insert(ctx context.Context, tx repository.Tx, m *model.Memo) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	_, err := execSQL(ctx, r.pool, tx,
		`INSERT INTO memos (id, user_id, job_id, ic_qa_text, wechat_article_text, created_at) VALUES ($1,$2,$3,$4,$5,$6);`,
		m.ID, m.UserID, m.JobID, m.IcQaText, m.WeChatArticleText, m.CreatedAt)
	return err
}
