package domain

import (
	"fmt"
	"strings"
	"sync"
)

const (
	// MaxBookingsPerCustomer caps the booking ledger size.
	MaxBookingsPerCustomer = 10
	// MinBookingAge is the minimum age allowed to book a flight.
	MinBookingAge = 18
	// MaxCustomerAge bounds the age field.
	MaxCustomerAge = 120
)

// Customer owns its booking ledger. Identity fields are immutable; contact
// info and the ledger are guarded by mu.
type Customer struct {
	ID           CustomerID
	Email        Email
	PasswordHash string
	Age          int

	mu       sync.Mutex
	name     string
	phone    Phone
	bookings []*Booking
	byID     map[string]*Booking
}

func NewCustomer(id CustomerID, name string, email Email, phone Phone, age int, passwordHash string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if age < 0 || age > MaxCustomerAge {
		return nil, fmt.Errorf("%w: age must be between 0 and %d", ErrInvalidRequest, MaxCustomerAge)
	}
	return &Customer{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Age:          age,
		name:         name,
		phone:        phone,
		byID:         make(map[string]*Booking),
	}, nil
}

// CanBook reports whether the customer is of age and under the ledger limit.
func (c *Customer) CanBook() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canBookLocked()
}

func (c *Customer) canBookLocked() bool {
	return c.Age >= MinBookingAge && len(c.bookings) < MaxBookingsPerCustomer
}

// RecordBooking appends to the ledger. Eligibility is re-checked at call
// time, never cached.
func (c *Customer) RecordBooking(b *Booking) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordLocked(b)
}

func (c *Customer) recordLocked(b *Booking) error {
	if c.Age < MinBookingAge {
		return fmt.Errorf("%w: customer %s is under %d", ErrIneligible, c.ID, MinBookingAge)
	}
	if len(c.bookings) >= MaxBookingsPerCustomer {
		return fmt.Errorf("%w: customer %s already holds %d bookings", ErrLimitExceeded, c.ID, MaxBookingsPerCustomer)
	}
	c.bookings = append(c.bookings, b)
	c.byID[b.ID] = b
	return nil
}

func (c *Customer) RemoveBooking(bookingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(bookingID)
}

func (c *Customer) removeLocked(bookingID string) error {
	if _, ok := c.byID[bookingID]; !ok {
		return fmt.Errorf("%w: booking %s not in ledger of %s", ErrNotFound, bookingID, c.ID)
	}
	delete(c.byID, bookingID)
	for i, b := range c.bookings {
		if b.ID == bookingID {
			c.bookings = append(c.bookings[:i], c.bookings[i+1:]...)
			break
		}
	}
	return nil
}

// Booking returns the ledger entry with the given id.
func (c *Customer) Booking(bookingID string) (*Booking, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.byID[bookingID]
	return b, ok
}

// Bookings returns a copy of the ledger in booking order.
func (c *Customer) Bookings() []Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Booking, len(c.bookings))
	for i, b := range c.bookings {
		out[i] = *b
	}
	return out
}

// BookingForFlight finds the most recent ledger entry for a flight.
func (c *Customer) BookingForFlight(number FlightNumber) (*Booking, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.bookings) - 1; i >= 0; i-- {
		if c.bookings[i].FlightNumber == number {
			return c.bookings[i], true
		}
	}
	return nil, false
}

// TotalTicketsBooked sums seats across the ledger. Pure query.
func (c *Customer) TotalTicketsBooked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, b := range c.bookings {
		total += b.Seats
	}
	return total
}

func (c *Customer) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *Customer) Phone() Phone {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phone
}

// UpdateContact replaces the mutable contact fields. Empty arguments keep
// the current value.
func (c *Customer) UpdateContact(name string, phone Phone) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(name) != "" {
		c.name = strings.TrimSpace(name)
	}
	if phone != "" {
		c.phone = phone
	}
}
