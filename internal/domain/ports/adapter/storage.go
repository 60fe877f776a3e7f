package adapter

import (
	"context"
	"time"
)

// ObjectStore is the minimal surface the pipeline needs from the audio
// object store: a time-bounded signed URL for the transcription vendor and
// best-effort removal once the audio has been consumed.
type ObjectStore interface {
	SignedURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, storagePath string) error
}
