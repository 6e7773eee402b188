package world

import "errors"

var (
	// ErrUnregisteredReference: a person or family without an ID was used
	// where a registered one is required.
	ErrUnregisteredReference = errors.New("unregistered reference")
	// ErrInvariantViolation: an operation was called out of lifecycle order.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrInvalidFamily: the family failed the optional strict composition check.
	ErrInvalidFamily = errors.New("invalid family")
)
