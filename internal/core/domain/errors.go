package domain

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrDenied = errors.New("capability denied")
var ErrOutOfRange = errors.New("value out of range")
var ErrInvalidValue = errors.New("invalid value")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAccountExists = errors.New("account already exists")
var ErrAccountNotFound = errors.New("account not found")
var ErrSessionNotFound = errors.New("session not found")
var ErrStrategyNotFound = errors.New("strategy not found")
var ErrUnknownTarget = errors.New("unknown emission target")

// DeniedError reports the capability a tier is missing. Callers decide whether
// to surface it (prompt for upgrade) or treat it as a silent no-op.
type DeniedError struct {
	Capability Capability
	Tier       AccessTier
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: tier %q lacks %q", ErrDenied, e.Tier, e.Capability)
}

func (e *DeniedError) Is(target error) bool { return target == ErrDenied }

// OutOfRangeError is returned by numeric setters instead of clamping.
type OutOfRangeError struct {
	Field string
	Value float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: %s=%s", ErrOutOfRange, e.Field, strconv.FormatFloat(e.Value, 'g', -1, 64))
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// InvalidValueError is returned when an enumerated field receives an unknown value.
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %s=%q", ErrInvalidValue, e.Field, e.Value)
}

func (e *InvalidValueError) Is(target error) bool { return target == ErrInvalidValue }
