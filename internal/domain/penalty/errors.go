package penalty

import "errors"

var (
	ErrPenaltyNotFound = errors.New("penalty not found")
	ErrInvalidSeverity = errors.New("invalid penalty severity")
)
