package model

import "errors"

var (
	// ErrEmptySeries is returned when a series has no bars.
	ErrEmptySeries = errors.New("empty price series")
	// ErrInsufficientData is returned when an operation needs more bars than exist.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrFetchFailure wraps any market-data retrieval problem.
	ErrFetchFailure = errors.New("fetch failure")
)
