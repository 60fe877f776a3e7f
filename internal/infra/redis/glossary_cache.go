package redis

import (
	"context"
	"encoding/json"
	"time"

	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/repository"
)

var _ repository.GlossaryRepository = (*CachedGlossaryRepo)(nil)

// CachedGlossaryRepo layers a per-user read cache over the Postgres glossary
// repository. Every extraction run reads the full glossary, so the list is
// cached as one JSON blob and dropped on any write for that user.
type CachedGlossaryRepo struct {
	inner  repository.GlossaryRepository
	client RedisClient
	ttl    time.Duration
}

func NewCachedGlossaryRepo(inner repository.GlossaryRepository, client RedisClient, ttl time.Duration) *CachedGlossaryRepo {
	return &CachedGlossaryRepo{inner: inner, client: client, ttl: ttl}
}

func glossaryKey(userID string) string { return "glossary:" + userID }

func (r *CachedGlossaryRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.GlossaryTerm, error) {
	// Reads inside a transaction bypass the cache so the handshake sees
	// its own writes.
	if tx == nil {
		if data, err := r.client.Get(ctx, glossaryKey(userID)); err == nil {
			var terms []*model.GlossaryTerm
			if err := json.Unmarshal([]byte(data), &terms); err == nil {
				return terms, nil
			}
		}
	}

	terms, err := r.inner.ListByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		if data, err := json.Marshal(terms); err == nil {
			_ = r.client.Set(ctx, glossaryKey(userID), data, r.ttl)
		}
	}
	return terms, nil
}

func (r *CachedGlossaryRepo) Upsert(ctx context.Context, tx repository.Tx, term *model.GlossaryTerm) error {
	if err := r.inner.Upsert(ctx, tx, term); err != nil {
		return err
	}
	_ = r.client.Del(ctx, glossaryKey(term.UserID))
	return nil
}

func (r *CachedGlossaryRepo) UpsertBatch(ctx context.Context, tx repository.Tx, terms []*model.GlossaryTerm) error {
	if err := r.inner.UpsertBatch(ctx, tx, terms); err != nil {
		return err
	}
	for _, t := range terms {
		_ = r.client.Del(ctx, glossaryKey(t.UserID))
	}
	return nil
}
