package domain

import "errors"

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrInvalidCode     = errors.New("invalid currency code")
)
