package fpshamir

import "errors"

// Parameter and input errors
var (
	// ErrInvalidParameters is returned when n < 2, t < 2 or t > n.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrSecretExceedsFieldCapacity is returned when the integer value of a
	// secret is not smaller than the field prime.
	ErrSecretExceedsFieldCapacity = errors.New("secret exceeds field capacity")

	// ErrInvalidField is returned when a modulus is not an odd prime.
	ErrInvalidField = errors.New("invalid field")
)

// Reconstruction errors
var (
	// ErrInsufficientShares is returned when fewer than threshold shares are
	// supplied.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrDuplicateXCoordinate is returned when two shares have the same x.
	ErrDuplicateXCoordinate = errors.New("duplicate x coordinate")

	// ErrInvalidShare is returned for shares with x < 1 or y outside the field.
	ErrInvalidShare = errors.New("invalid share")

	// ErrInconsistentShares is returned when a share beyond the threshold does
	// not lie on the polynomial interpolated from the first threshold shares.
	ErrInconsistentShares = errors.New("inconsistent shares")

	// ErrLengthMismatch is returned when a reconstructed value does not fit
	// into the recorded secret length.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrShareSetMismatch is returned when records from different share sets
	// are merged.
	ErrShareSetMismatch = errors.New("share set mismatch")
)

// ErrNoInverseExists is returned by Field.Inv for elements without a
// multiplicative inverse. With a prime modulus this only happens for zero and
// indicates an internal consistency fault.
var ErrNoInverseExists = errors.New("no inverse exists")
