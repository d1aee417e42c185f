package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances in Validate(). This allows callers to use errors.Is()
// for programmatic error handling while still providing human-readable
// messages.
var (
	// ErrNoRoot is returned when no scan root is specified.
	ErrNoRoot = errors.New("no root specified: provide one or more directories or files to scan")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidSimilarity is returned when the similarity threshold is
	// outside [0, 1].
	ErrInvalidSimilarity = errors.New("invalid similarity: must be between 0 and 1")

	// ErrInvalidMinSectionBytes is returned when the section size filter is
	// negative.
	ErrInvalidMinSectionBytes = errors.New("invalid min section bytes: must be non-negative")

	// ErrInvalidMaxFileSize is returned when the file size limit is not
	// positive.
	ErrInvalidMaxFileSize = errors.New("invalid max file size: must be positive")
)
