package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no project root is specified.
	ErrNoTarget = errors.New("no target specified: provide one or more project root paths")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent scans at all.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxFileSize is returned when the max file size is negative.
	// Use 0 to apply the default limit.
	ErrInvalidMaxFileSize = errors.New("invalid max file size: must be non-negative")

	// ErrInvalidFailOn is returned when --fail-on names an unknown severity.
	ErrInvalidFailOn = errors.New("invalid fail-on level: must be one of info, low, medium, high, critical")
)
