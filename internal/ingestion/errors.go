package ingestion

import "errors"

var (
	// ErrInputNotFound is returned when the input file does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrInvalidInputSchema is returned when the input is not a non-empty
	// array of transaction objects.
	ErrInvalidInputSchema = errors.New("invalid input schema: expected non-empty array of objects")
)
