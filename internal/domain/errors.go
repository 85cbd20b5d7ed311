// Package domain holds the reservation core: flights with seat inventory,
// customers with booking ledgers, bookings, principals and the failure
// taxonomy shared by every layer above it.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Higher layers match on these with errors.Is and decide
// how to surface each class of failure to the caller.
var (
	// ErrInvalidRequest marks malformed input. Caller error, never retried.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound marks a missing flight, customer or booking.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks a flight that is sold out or already departed.
	ErrUnavailable = errors.New("flight unavailable")

	// ErrInsufficientSeats marks a reservation for more seats than remain.
	ErrInsufficientSeats = errors.New("insufficient seats")

	// ErrIneligible marks a customer that may not book (under age).
	ErrIneligible = errors.New("customer not eligible to book")

	// ErrLimitExceeded marks a customer at the booking-count limit.
	ErrLimitExceeded = errors.New("booking limit exceeded")

	// ErrInvalidCredentials marks a failed authentication attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict marks an operation blocked by dependent state, such as
	// deleting a flight that still has active bookings.
	ErrConflict = errors.New("conflict")

	// ErrPaymentDeclined is the match target for PaymentDeclinedError.
	ErrPaymentDeclined = errors.New("payment declined")
)

// PaymentDeclinedError carries the gateway's reason verbatim. It matches
// ErrPaymentDeclined under errors.Is.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}

func (e *PaymentDeclinedError) Is(target error) bool {
	return target == ErrPaymentDeclined
}
