package model

import (
	"strings"
	"time"
)

// DeletedPathPrefix marks an audio object that has been removed from the
// object store after transcription. The row keeps the original path behind
// the marker for audit purposes; the object itself is gone.
const DeletedPathPrefix = "deleted:"

type AudioAsset struct {
	ID              string
	UserID          string
	JobID           string
	StoragePath     string
	FileName        string
	FileSize        int64
	MimeType        string
	DurationSeconds int
	CreatedAt       time.Time
}

func (a *AudioAsset) Deleted() bool {
	return strings.HasPrefix(a.StoragePath, DeletedPathPrefix)
}

// TombstonePath returns the storage path rewritten with the deleted marker.
func (a *AudioAsset) TombstonePath() string {
	if a.Deleted() {
		return a.StoragePath
	}
	return DeletedPathPrefix + a.StoragePath
}
