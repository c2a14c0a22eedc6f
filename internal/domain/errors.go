package domain

import "errors"

var (
	// ErrImageryUnavailable means the imagery provider had no usable scenes or failed.
	ErrImageryUnavailable = errors.New("imagery unavailable")

	// ErrNoHistoricalMatch means no historical record matched crop and date window.
	ErrNoHistoricalMatch = errors.New("no historical match")

	// ErrInvalidInput marks caller mistakes; it is the only error surfaced to callers.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelSchemaMismatch means a trained model does not match the live feature set.
	ErrModelSchemaMismatch = errors.New("model schema mismatch")
)
