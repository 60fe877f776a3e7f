package model

import "time"

type JobStatus string

const (
	JobStatusPending         JobStatus = "pending"
	JobStatusQueued          JobStatus = "queued"
	JobStatusTranscribing    JobStatus = "transcribing"
	JobStatusExtractingTerms JobStatus = "extracting_terms"
	JobStatusNeedsReview     JobStatus = "needs_review"
	JobStatusSummarizing     JobStatus = "summarizing"
	JobStatusCompleted       JobStatus = "completed"
	JobStatusFailed          JobStatus = "failed"
)

// Job is one end-to-end processing unit: uploaded interview audio in,
// generated memo out. Mutated by the pipeline and the term-confirmation
// handshake only; never deleted here.
type Job struct {
	ID           string
	UserID       string
	Title        string
	Status       JobStatus
	ErrorMessage string
	AudioAssetID string
	TranscriptID string
	MemoID       string
	NeedsReview  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Terminal reports whether no further pipeline work is possible.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
