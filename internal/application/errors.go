package application

import "errors"

var (
	// ErrRateNotFound means no tier could produce a value for the pair.
	ErrRateNotFound = errors.New("rate not found")
	// ErrSourceUnavailable marks an external source failure; recovered
	// internally by falling through to the next tier.
	ErrSourceUnavailable = errors.New("rate source unavailable")
)
