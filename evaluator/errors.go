package evaluator

import "errors"

// Input channel faults. These are never folded into an UNKNOWN verdict.
var (
	// ErrInputNotFound is returned when the snapshot file does not exist.
	ErrInputNotFound = errors.New("facility file not found")

	// ErrMalformedInput is returned when the snapshot cannot be parsed.
	ErrMalformedInput = errors.New("malformed facility input")

	// ErrUnsupportedFormat is returned when no decoder handles the file extension.
	ErrUnsupportedFormat = errors.New("unsupported facility file format")
)
