package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrDeviceNotFound and ErrUserNotFound tell the handler which lookup failed.
// Both still match ErrNotFound with errors.Is.
var (
	ErrDeviceNotFound = fmt.Errorf("device %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
)

// ErrUnavailable is returned when a booking or return is attempted against
// the device's current state: booking a booked device, or returning one that
// is not booked. Handlers should map this to HTTP 400.
var ErrUnavailable = errors.New("device unavailable")

// ErrValidation is returned when input fails a rule checked before any
// booking decision (e.g. closing a booking without a return time).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")
