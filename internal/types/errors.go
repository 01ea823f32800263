package types

import "errors"

// Sentinel errors forming the ingest error taxonomy. Callers classify
// failures with errors.Is; wrapped messages carry the offending path.
var (
	// ErrNotFound reports a missing input root. Fatal, nothing is written.
	ErrNotFound = errors.New("input path does not exist")
	// ErrInvalidPath reports an input root that is neither a regular file nor a directory.
	ErrInvalidPath = errors.New("input path is neither a file nor a directory")
	// ErrEmptySelection reports that the configured filters matched zero files.
	// Fatal but distinct from ErrNotFound so callers can suggest loosening
	// filters instead of implying a missing path.
	ErrEmptySelection = errors.New("no files matched the configured filters")
)
