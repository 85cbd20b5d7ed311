package repository

import (
	"context"
	"time"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingLogEntry is one row of the booking audit trail.
type BookingLogEntry struct {
	BookingID    string
	FlightNumber string
	CustomerID   string
	Seats        int
	AmountCents  int64
	Status       string
	CreatedAt    time.Time
}

const (
	BookingLogStatusConfirmed = "CONFIRMED"
	BookingLogStatusCancelled = "CANCELLED"
)

// BookingLog records committed bookings and cancellations for reporting.
// Writes are best-effort from the orchestrator's point of view; a failed
// append never fails the booking itself.
type BookingLog interface {
	Append(ctx context.Context, entry BookingLogEntry) error
	ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]BookingLogEntry, error)
}

type PGBookingLog struct {
	db *pgxpool.Pool
}

func NewBookingLog(db *pgxpool.Pool) *PGBookingLog {
	return &PGBookingLog{db: db}
}

func (r *PGBookingLog) Append(ctx context.Context, entry BookingLogEntry) error {
	_, err := r.db.Exec(ctx, `INSERT INTO booking_log (booking_id, flight_number, customer_id, seats, amount_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.BookingID, entry.FlightNumber, entry.CustomerID, entry.Seats, entry.AmountCents, entry.Status, entry.CreatedAt)
	return err
}

func (r *PGBookingLog) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]BookingLogEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT booking_id, flight_number, customer_id, seats, amount_cents, status, created_at
		FROM booking_log WHERE customer_id=$1 ORDER BY created_at`, customerID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []BookingLogEntry
	for rows.Next() {
		var e BookingLogEntry
		if err := rows.Scan(&e.BookingID, &e.FlightNumber, &e.CustomerID, &e.Seats, &e.AmountCents, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ BookingLog = (*PGBookingLog)(nil)
