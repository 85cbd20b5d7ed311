package domain

import "fmt"

// CommitBooking applies a booking to the flight manifest and the customer
// ledger as one critical section. Both entity locks are taken in a fixed
// global order, flight before customer, so two commits touching overlapping
// entities cannot deadlock. If the ledger rejects the booking after seats
// were reserved, the reservation is rolled back before returning.
func CommitBooking(f *Flight, c *Customer, b *Booking) (*ManifestEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := f.reserveLocked(b.ID, b.CustomerID, b.Seats)
	if err != nil {
		return nil, err
	}
	if err := c.recordLocked(b); err != nil {
		if rbErr := f.releaseLocked(b.ID); rbErr != nil {
			return nil, fmt.Errorf("rollback seats for %s: %w", b.ID, rbErr)
		}
		return nil, err
	}
	return entry, nil
}

// CancelBooking removes a booking from both the flight manifest and the
// customer ledger, or from neither. Cancellation on a departed flight is
// refused. Lock order matches CommitBooking.
func CancelBooking(f *Flight, c *Customer, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.departed() {
		return fmt.Errorf("%w: %s already departed", ErrUnavailable, f.Number)
	}
	if _, ok := f.byBooking[bookingID]; !ok {
		return fmt.Errorf("%w: booking %s not on manifest of %s", ErrNotFound, bookingID, f.Number)
	}
	if _, ok := c.byID[bookingID]; !ok {
		return fmt.Errorf("%w: booking %s not in ledger of %s", ErrNotFound, bookingID, c.ID)
	}
	if err := f.releaseLocked(bookingID); err != nil {
		return err
	}
	return c.removeLocked(bookingID)
}
