package domain

import (
	"fmt"
	"sync"
	"time"
)

const (
	MinFlightSeats = 50
	MaxFlightSeats = 500
)

// Airport is a city with coordinates used for distance calculation.
type Airport struct {
	City      string
	Latitude  float64
	Longitude float64
}

// ManifestEntry records seats booked on a flight under one booking.
type ManifestEntry struct {
	BookingID  string
	CustomerID CustomerID
	Seats      int
}

// Flight owns its seat inventory. Identity fields are immutable after
// construction; the manifest and the seat counter are guarded by mu so that
// reservations against one flight are serialized while other flights proceed
// independently.
type Flight struct {
	Number      FlightNumber
	Origin      Airport
	Destination Airport
	Departure   time.Time
	Arrival     time.Time
	Gate        string
	TotalSeats  int
	PriceCents  int64
	CreatedAt   time.Time

	mu        sync.Mutex
	available int
	manifest  []*ManifestEntry
	byBooking map[string]*ManifestEntry
}

func NewFlight(number FlightNumber, origin, destination Airport, departure, arrival time.Time, gate string, totalSeats int, priceCents int64) (*Flight, error) {
	if number.IsZero() {
		return nil, fmt.Errorf("%w: flight number is required", ErrInvalidRequest)
	}
	if origin.City == destination.City {
		return nil, fmt.Errorf("%w: origin and destination must differ", ErrInvalidRequest)
	}
	if totalSeats < MinFlightSeats || totalSeats > MaxFlightSeats {
		return nil, fmt.Errorf("%w: total seats must be between %d and %d", ErrInvalidRequest, MinFlightSeats, MaxFlightSeats)
	}
	if !arrival.After(departure) {
		return nil, fmt.Errorf("%w: arrival must be after departure", ErrInvalidRequest)
	}
	if priceCents <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
	}
	return &Flight{
		Number:      number,
		Origin:      origin,
		Destination: destination,
		Departure:   departure,
		Arrival:     arrival,
		Gate:        gate,
		TotalSeats:  totalSeats,
		PriceCents:  priceCents,
		CreatedAt:   time.Now(),
		available:   totalSeats,
		byBooking:   make(map[string]*ManifestEntry),
	}, nil
}

// IsAvailable reports whether the flight still has seats and has not departed.
func (f *Flight) IsAvailable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.availableLocked()
}

func (f *Flight) availableLocked() bool {
	return f.available > 0 && !f.departed()
}

func (f *Flight) departed() bool {
	return !time.Now().Before(f.Departure)
}

// Departed reports whether the scheduled departure time has passed.
func (f *Flight) Departed() bool {
	return f.departed()
}

func (f *Flight) AvailableSeats() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

// ReserveSeats atomically appends a manifest entry and decrements the seat
// counter. Two concurrent reservations can never jointly overcommit.
func (f *Flight) ReserveSeats(bookingID string, customerID CustomerID, seats int) (*ManifestEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reserveLocked(bookingID, customerID, seats)
}

func (f *Flight) reserveLocked(bookingID string, customerID CustomerID, seats int) (*ManifestEntry, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("%w: seat count must be positive", ErrInvalidRequest)
	}
	if !f.availableLocked() {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, f.Number)
	}
	if seats > f.available {
		return nil, fmt.Errorf("%w: requested %d, %d left on %s", ErrInsufficientSeats, seats, f.available, f.Number)
	}
	entry := &ManifestEntry{BookingID: bookingID, CustomerID: customerID, Seats: seats}
	f.manifest = append(f.manifest, entry)
	f.byBooking[bookingID] = entry
	f.available -= seats
	return entry, nil
}

// ReleaseSeats reverses a prior reservation. Releasing a booking that is no
// longer on the manifest fails with ErrNotFound, which guards against a
// double release inflating the seat counter.
func (f *Flight) ReleaseSeats(bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releaseLocked(bookingID)
}

func (f *Flight) releaseLocked(bookingID string) error {
	entry, ok := f.byBooking[bookingID]
	if !ok {
		return fmt.Errorf("%w: booking %s not on manifest of %s", ErrNotFound, bookingID, f.Number)
	}
	delete(f.byBooking, bookingID)
	for i, e := range f.manifest {
		if e.BookingID == bookingID {
			f.manifest = append(f.manifest[:i], f.manifest[i+1:]...)
			break
		}
	}
	f.available += entry.Seats
	return nil
}

// Revenue is the base price times every seat on the manifest.
func (f *Flight) Revenue() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var seats int64
	for _, e := range f.manifest {
		seats += int64(e.Seats)
	}
	return f.PriceCents * seats
}

// Manifest returns a copy of the passenger manifest in booking order.
func (f *Flight) Manifest() []ManifestEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ManifestEntry, len(f.manifest))
	for i, e := range f.manifest {
		out[i] = *e
	}
	return out
}

// FlightSummary is an immutable snapshot of a flight, safe to serialize.
type FlightSummary struct {
	Number         string    `json:"number"`
	FromCity       string    `json:"from_city"`
	ToCity         string    `json:"to_city"`
	Departure      time.Time `json:"departure"`
	Arrival        time.Time `json:"arrival"`
	Gate           string    `json:"gate"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	PriceCents     int64     `json:"price_cents"`
	DistanceMiles  float64   `json:"distance_miles"`
}

func (f *Flight) Summary() FlightSummary {
	dist := GreatCircleDistance(f.Origin, f.Destination)
	f.mu.Lock()
	defer f.mu.Unlock()
	return FlightSummary{
		Number:         f.Number.String(),
		FromCity:       f.Origin.City,
		ToCity:         f.Destination.City,
		Departure:      f.Departure,
		Arrival:        f.Arrival,
		Gate:           f.Gate,
		TotalSeats:     f.TotalSeats,
		AvailableSeats: f.available,
		PriceCents:     f.PriceCents,
		DistanceMiles:  dist.Miles,
	}
}
