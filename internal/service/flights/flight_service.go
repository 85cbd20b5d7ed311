// Package flights manages the flight catalog: listing (optionally through
// the redis snapshot cache), creation, guarded deletion and the revenue
// report.
package flights

import (
	"context"
	"fmt"
	"time"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/aturgenev/skyreserve/internal/logger"
	"github.com/aturgenev/skyreserve/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.FlightSummary, error)
	Get(ctx context.Context, number domain.FlightNumber) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Delete(ctx context.Context, number domain.FlightNumber, force bool) error
	TotalRevenue(ctx context.Context) (int64, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.FlightSummary, error)
	SetFlights(ctx context.Context, flights []domain.FlightSummary) error
	InvalidateFlights(ctx context.Context) error
}

type CreateFlightInput struct {
	FlightNumber string
	FromCity     string
	FromLat      float64
	FromLon      float64
	ToCity       string
	ToLat        float64
	ToLon        float64
	Departure    time.Time
	Arrival      time.Time
	Gate         string
	TotalSeats   int
	PriceCents   int64
}

type FlightService struct {
	repo      repository.FlightRepository
	customers repository.CustomerRepository
	cache     Cache
}

type FlightServiceOption func(*FlightService)

// WithCustomerLedger lets forced deletions remove the ledger entries of
// customers still booked on the deleted flight.
func WithCustomerLedger(customers repository.CustomerRepository) FlightServiceOption {
	return func(s *FlightService) { s.customers = customers }
}

func NewFlightService(repo repository.FlightRepository, cache Cache, opts ...FlightServiceOption) *FlightService {
	service := &FlightService{repo: repo, cache: cache}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *FlightService) List(ctx context.Context) ([]domain.FlightSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.FlightSummary, len(flights))
	for i, f := range flights {
		summaries[i] = f.Summary()
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, summaries); err != nil {
			logger.ErrorLogger.WithError(err).Error("cache flight catalog")
		}
	}
	return summaries, nil
}

func (s *FlightService) Get(ctx context.Context, number domain.FlightNumber) (*domain.Flight, error) {
	return s.repo.FindByNumber(ctx, number)
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	number, err := domain.ParseFlightNumber(input.FlightNumber)
	if err != nil {
		return nil, err
	}
	flight, err := domain.NewFlight(
		number,
		domain.Airport{City: input.FromCity, Latitude: input.FromLat, Longitude: input.FromLon},
		domain.Airport{City: input.ToCity, Latitude: input.ToLat, Longitude: input.ToLon},
		input.Departure,
		input.Arrival,
		input.Gate,
		input.TotalSeats,
		input.PriceCents,
	)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Add(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

// Delete removes a flight from the schedule. Departed flights and flights
// with active bookings are protected; the caller must pass force after an
// explicit confirmation to remove them.
func (s *FlightService) Delete(ctx context.Context, number domain.FlightNumber, force bool) error {
	flight, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return err
	}
	if !force {
		if flight.Departed() {
			return fmt.Errorf("%w: %s already departed", domain.ErrConflict, number)
		}
		if len(flight.Manifest()) > 0 {
			return fmt.Errorf("%w: %s has active bookings", domain.ErrConflict, number)
		}
	}
	if err := s.repo.Remove(ctx, number); err != nil {
		return err
	}
	s.releaseLedgerEntries(ctx, flight)
	s.invalidate(ctx)
	return nil
}

// releaseLedgerEntries removes ledger entries that referenced a deleted
// flight. Without this a forced delete would leave orphaned bookings
// counting against the customer limit with no way to cancel them.
func (s *FlightService) releaseLedgerEntries(ctx context.Context, flight *domain.Flight) {
	if s.customers == nil {
		return
	}
	for _, entry := range flight.Manifest() {
		customer, err := s.customers.FindByID(ctx, entry.CustomerID)
		if err != nil {
			logger.ErrorLogger.WithField("customer", entry.CustomerID.String()).WithError(err).Error("release ledger entry of deleted flight")
			continue
		}
		if err := customer.RemoveBooking(entry.BookingID); err != nil {
			logger.ErrorLogger.WithField("booking", entry.BookingID).WithError(err).Error("release ledger entry of deleted flight")
		}
	}
}

// TotalRevenue sums booked revenue across the catalog.
func (s *FlightService) TotalRevenue(ctx context.Context) (int64, error) {
	flights, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, f := range flights {
		total += f.Revenue()
	}
	return total, nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		logger.ErrorLogger.WithError(err).Error("invalidate flight cache")
	}
}

var _ FlightUseCase = (*FlightService)(nil)
