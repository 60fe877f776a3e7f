package model

import "time"

// Memo holds the two generated artifacts for one job. Created once at the
// end of the summarization stage; its presence is the stage's resumability
// signal.
type Memo struct {
	ID                string
	UserID            string
	JobID             string
	IcQaText          string
	WeChatArticleText string
	CreatedAt         time.Time
}
