package errors

import "errors"

// Domain errors
var (
	// Target errors
	ErrEmptyTarget   = errors.New("target cannot be empty")
	ErrInvalidTarget = errors.New("invalid target")
	ErrInvalidScheme = errors.New("target scheme must be http or https")

	// Scan errors
	ErrScanNotFound         = errors.New("scan not found")
	ErrScanAlreadyStarted   = errors.New("scan already started")
	ErrScanNotStarted       = errors.New("scan not started")
	ErrScanAlreadyCompleted = errors.New("scan already completed")
	ErrInvalidScanStatus    = errors.New("invalid scan status")

	// Repository errors
	ErrRepositoryOperation   = errors.New("repository operation failed")
	ErrInvalidData           = errors.New("invalid data")
	ErrSerializationFailed   = errors.New("serialization failed")
	ErrDeserializationFailed = errors.New("deserialization failed")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
)
