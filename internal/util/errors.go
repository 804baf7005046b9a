package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrUnsupported indicates a format or operation is not supported
	ErrUnsupported = errors.New("unsupported")

	// ErrCorrupt indicates stored data could not be decoded
	ErrCorrupt = errors.New("corrupt data")

	// ErrNotFound indicates a required record was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a create or update request failed validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoSelection indicates an operation needs a selected parent record
	ErrNoSelection = errors.New("nothing selected")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)
