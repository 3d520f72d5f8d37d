package ir

import "errors"

// Construction errors. Constructors return these before any resolution is
// attempted; nothing is coerced.
var (
	ErrNilRef        = errors.New("ir: nil ref")
	ErrNilSelector   = errors.New("ir: nil selector")
	ErrNilCommand    = errors.New("ir: nil command")
	ErrNoBounds      = errors.New("ir: range selector needs a min or a max")
	ErrUnknownOp     = errors.New("ir: unknown operator")
	ErrEmptyTag      = errors.New("ir: empty tag name")
	ErrReservedLabel = errors.New("ir: label -1 is reserved for the cleared pointer")
)

// ErrAddressRange is returned when a memory address does not fit the
// four hex digit literal form.
var ErrAddressRange = errors.New("ir: memory address out of range")

// Must returns v or panics on err. It is meant for statically known IR
// built in tests and package internals.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Int returns a pointer to n, for optional bounds.
func Int(n int) *int {
	return &n
}
