package adapter

import "context"

type ASRTaskStatus string

const (
	ASRTaskRunning   ASRTaskStatus = "running"
	ASRTaskCompleted ASRTaskStatus = "completed"
	ASRTaskFailed    ASRTaskStatus = "failed"
)

// ASRPollResult is the normalized form of one vendor poll response.
// TranscriptText and Raw are set only when Status is completed; ErrorMessage
// carries the vendor's own message when Status is failed.
type ASRPollResult struct {
	Status         ASRTaskStatus
	TranscriptText string
	Raw            []byte
	ErrorMessage   string
}

// TranscriptionAdapter wraps an asynchronous, poll-based speech-to-text API.
//
// Submit fails when credentials are missing, the vendor rejects the request,
// or the response lacks a task identifier. Poll returns a failed result (not
// an error) when the vendor reports a terminal failure; transport errors are
// returned as errors.
type TranscriptionAdapter interface {
	Submit(ctx context.Context, audioURL, language string) (vendorTaskID string, err error)
	Poll(ctx context.Context, vendorTaskID string) (ASRPollResult, error)
}
