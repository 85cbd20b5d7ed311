package domain

import "time"

// Booking ties one flight manifest entry to one customer ledger entry. It is
// created by the reservation orchestrator, never mutated afterwards, and
// removed from both sides only by cancellation.
type Booking struct {
	ID           string
	FlightNumber FlightNumber
	CustomerID   CustomerID
	Seats        int
	AmountCents  int64
	CreatedAt    time.Time
}
