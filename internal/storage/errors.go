package storage

import "errors"

// Errors shared by the run-keyed stores.
var (
	// ErrNotFound is returned when a run or wallet is not stored.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a run id already has rows, or when one
	// batch repeats a wallet or model. Runs are written once and never updated.
	ErrDuplicateKey = errors.New("duplicate key: run already stored")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
