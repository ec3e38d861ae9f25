package config

import "errors"

// Configuration validation errors.
//
// Design decision: package-level sentinel errors rather than new error
// instances in Validate(), so callers can use errors.Is() while still
// getting human-readable messages.
var (
	// ErrNoInput is returned when neither positional inputs nor a stream
	// source (stdin, clipboard) is given.
	ErrNoInput = errors.New("no input specified: provide a path, URL, identifier, or alias")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	ErrInvalidDepth = errors.New("invalid crawl depth: must be zero or positive")

	// ErrInvalidMaxPages is returned when the page cap is negative.
	// Zero disables the cap.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be zero or positive")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Zero uses the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoOutputFile is returned when the output path is empty.
	ErrNoOutputFile = errors.New("no output file specified")
)
