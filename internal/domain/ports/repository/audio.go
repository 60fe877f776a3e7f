package repository

import (
	"context"

	"interview-ai-memo/internal/domain/model"
)

type AudioAssetRepository interface {
	FindByJobID(ctx context.Context, tx Tx, jobID string) (*model.AudioAsset, error)

	// MarkDeleted rewrites the storage path to its tombstone form after the
	// object has been removed from the store.
	MarkDeleted(ctx context.Context, tx Tx, id, tombstonePath string) error
}
