package model

import "time"

type TermStatus string

const (
	TermStatusPending   TermStatus = "pending"
	TermStatusConfirmed TermStatus = "confirmed"
	TermStatusRejected  TermStatus = "rejected"
)

// TermOccurrence is one candidate domain term found in a transcript.
// Rows are bulk-inserted by the extraction stage with status pending and
// mutated only by the confirmation handshake afterwards.
type TermOccurrence struct {
	ID         string
	UserID     string
	JobID      string
	TermText   string
	Confidence float64
	Context    string
	Status     TermStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type GlossarySource string

const (
	GlossarySourceSeed      GlossarySource = "seed"
	GlossarySourceConfirmed GlossarySource = "confirmed"
)

// GlossaryTerm is a user-scoped vocabulary entry. (user_id, term) is unique;
// writes go through upsert-on-conflict.
type GlossaryTerm struct {
	ID             string
	UserID         string
	Term           string
	NormalizedTerm string
	Source         GlossarySource
	CreatedAt      time.Time
}

type ConfirmAction string

const (
	ConfirmActionAccept ConfirmAction = "accept"
	ConfirmActionEdit   ConfirmAction = "edit"
	ConfirmActionReject ConfirmAction = "reject"
)

// Confirmation records one user decision about a term occurrence.
type Confirmation struct {
	ID            string
	UserID        string
	JobID         string
	TermText      string
	ConfirmedText string
	Action        ConfirmAction
	Context       string
	Source        string
	CreatedAt     time.Time
}
