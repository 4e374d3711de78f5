package models

import "errors"

var (
	// ErrValidation is returned when geometry is incomplete for the requested operation.
	ErrValidation = errors.New("validation failed")

	// ErrIO wraps search, load and save failures.
	ErrIO = errors.New("io failure")

	// ErrCapabilityUnavailable is returned when a camera or location capability is missing,
	// denied or unable to answer.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
)
