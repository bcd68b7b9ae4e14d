package catalog

import "errors"

// Common catalog errors.
var (
	// ErrIndexNotFound is returned when no index file exists at the store
	// path. Callers that only need lookups should treat this as an empty
	// index rather than a failure.
	ErrIndexNotFound = errors.New("skill index not found")

	// ErrNoSources is returned by discovery when none of the configured
	// skill sources exist on disk.
	ErrNoSources = errors.New("no skill sources found")
)
