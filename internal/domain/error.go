package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow  = errors.New("failed to read database row")

	// Pipeline preconditions
	ErrAudioAssetMissing = errors.New("audio asset not found for job")

	// Vendor failures. ErrVendorRejected covers bad requests, auth failures
	// and responses missing required fields. ErrVendorTaskFailed is an
	// explicit vendor-reported task failure. ErrPollTimeout means the
	// attempt cap was exhausted while the vendor still reported in-progress.
	ErrVendorRejected   = errors.New("vendor rejected request")
	ErrVendorTaskFailed = errors.New("vendor reported task failure")
	ErrPollTimeout      = errors.New("polling timed out before vendor task completed")

	// ErrPipelineLocked means another invocation currently holds the
	// single-flight lock for the job.
	ErrPipelineLocked = errors.New("pipeline already running for job")
)
