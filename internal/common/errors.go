// Package common defines shared constants and sentinel errors used across
// PDFSmaller components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Boundary validation errors.
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported option value")
	ErrTooLarge     = errors.New("file too large")

	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Policy errors.
	ErrEntitlementDenied = errors.New("entitlement denied")
	ErrServiceBusy       = errors.New("service busy")

	// Run lifecycle errors.
	ErrTimeout       = errors.New("timeout")
	ErrRemoteFailure = errors.New("remote failure")
	ErrCancelled     = errors.New("cancelled")

	// Anything unexpected. Logged and surfaced as a user-visible failure.
	ErrInternal = errors.New("internal error")
)
