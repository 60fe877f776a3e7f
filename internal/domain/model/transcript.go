package model

import "time"

// Transcript holds one plain-text transcription result plus the raw vendor
// payload. Created once at the end of the transcription stage and never
// updated; its presence is the stage's resumability signal.
type Transcript struct {
	ID             string
	UserID         string
	JobID          string
	TranscriptText string
	Raw            []byte // raw vendor payload, JSON
	CreatedAt      time.Time
}
