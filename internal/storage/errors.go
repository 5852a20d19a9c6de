package storage

import "errors"

// Sentinel errors shared by the observation and spike indicator stores.
// Stored rows are never updated, so re-inserting a key is an error.
var (
	// ErrNotFound is returned when a run or series has no stored rows.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a (series, date) observation or a
	// (run, date) indicator row is already stored. The whole batch is rejected.
	ErrDuplicateKey = errors.New("duplicate key: row already stored")

	// ErrInvalidInput is returned for nil rows or rows missing their key fields.
	ErrInvalidInput = errors.New("invalid input")
)
