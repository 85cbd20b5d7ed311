// Package reservation implements the booking orchestrator. A booking
// attempt runs validate -> resolve -> eligibility -> charge -> commit; every
// failure path leaves flight and customer state untouched.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/aturgenev/skyreserve/internal/kafka"
	"github.com/aturgenev/skyreserve/internal/logger"
	"github.com/aturgenev/skyreserve/internal/payment"
	"github.com/aturgenev/skyreserve/internal/repository"
	"github.com/google/uuid"
)

type ReservationUseCase interface {
	Book(ctx context.Context, input BookingInput) (*domain.Booking, error)
	Cancel(ctx context.Context, customerID domain.CustomerID, number domain.FlightNumber) (*domain.Booking, error)
	BookingsFor(ctx context.Context, customerID domain.CustomerID) ([]domain.Booking, error)
	AuditTrail(ctx context.Context, customerID domain.CustomerID) ([]repository.BookingLogEntry, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

// BookingInput carries the raw booking request. Fields are validated and
// parsed by the service, not by the caller.
type BookingInput struct {
	FlightNumber string
	CustomerID   string
	Seats        int
	Method       string
}

type ReservationService struct {
	flights   repository.FlightRepository
	customers repository.CustomerRepository
	gateway   payment.Gateway

	cache              Cache
	producer           Producer
	auditLog           repository.BookingLog
	bookingTopic       string
	notificationsTopic string
}

type ReservationServiceOption func(*ReservationService)

func WithCache(cache Cache) ReservationServiceOption {
	return func(s *ReservationService) { s.cache = cache }
}

func WithProducer(producer Producer, bookingTopic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) { s.notificationsTopic = topic }
}

func WithAuditLog(log repository.BookingLog) ReservationServiceOption {
	return func(s *ReservationService) { s.auditLog = log }
}

func NewReservationService(
	flights repository.FlightRepository,
	customers repository.CustomerRepository,
	gateway payment.Gateway,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		flights:   flights,
		customers: customers,
		gateway:   gateway,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *ReservationService) Book(ctx context.Context, input BookingInput) (*domain.Booking, error) {
	// 1. validate request shape
	if input.Seats <= 0 {
		return nil, fmt.Errorf("%w: seat count must be positive", domain.ErrInvalidRequest)
	}
	number, err := domain.ParseFlightNumber(input.FlightNumber)
	if err != nil {
		return nil, err
	}
	customerID, err := domain.NewCustomerID(input.CustomerID)
	if err != nil {
		return nil, err
	}
	method, err := payment.ParseMethod(input.Method)
	if err != nil {
		return nil, err
	}

	// 2. resolve
	flight, err := s.flights.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	// 3. eligibility pre-checks. The commit re-checks under the entity
	// locks; failing early avoids charging a customer who cannot book.
	if customer.Age < domain.MinBookingAge {
		return nil, fmt.Errorf("%w: customer %s is under %d", domain.ErrIneligible, customer.ID, domain.MinBookingAge)
	}
	if !customer.CanBook() {
		return nil, fmt.Errorf("%w: customer %s already holds %d bookings", domain.ErrLimitExceeded, customer.ID, domain.MaxBookingsPerCustomer)
	}
	if !flight.IsAvailable() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnavailable, flight.Number)
	}
	if input.Seats > flight.AvailableSeats() {
		return nil, fmt.Errorf("%w: requested %d, %d left on %s", domain.ErrInsufficientSeats, input.Seats, flight.AvailableSeats(), flight.Number)
	}

	// 4. charge before any inventory mutation and outside the entity locks,
	// so a slow gateway cannot block unrelated bookings.
	amount := flight.PriceCents * int64(input.Seats)
	result, err := s.gateway.Process(ctx, amount, method)
	if err != nil {
		return nil, &domain.PaymentDeclinedError{Reason: err.Error()}
	}
	if !result.Success {
		return nil, &domain.PaymentDeclinedError{Reason: result.Message}
	}

	// 5. commit both sides, compensating on partial failure
	booking := &domain.Booking{
		ID:           uuid.NewString(),
		FlightNumber: flight.Number,
		CustomerID:   customer.ID,
		Seats:        input.Seats,
		AmountCents:  amount,
		CreatedAt:    time.Now(),
	}
	if _, err := domain.CommitBooking(flight, customer, booking); err != nil {
		logger.ErrorLogger.
			WithField("booking", booking.ID).
			WithField("flight", flight.Number.String()).
			WithError(err).
			Error("commit failed after successful charge")
		return nil, err
	}

	s.afterCommit(ctx, "booking_created", booking, customer, repository.BookingLogStatusConfirmed)
	return booking, nil
}

func (s *ReservationService) Cancel(ctx context.Context, customerID domain.CustomerID, number domain.FlightNumber) (*domain.Booking, error) {
	flight, err := s.flights.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	booking, ok := customer.BookingForFlight(number)
	if !ok {
		return nil, fmt.Errorf("%w: no booking on %s for customer %s", domain.ErrNotFound, number, customerID)
	}

	if err := domain.CancelBooking(flight, customer, booking.ID); err != nil {
		return nil, err
	}

	s.afterCommit(ctx, "booking_cancelled", booking, customer, repository.BookingLogStatusCancelled)
	return booking, nil
}

func (s *ReservationService) BookingsFor(ctx context.Context, customerID domain.CustomerID) ([]domain.Booking, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return customer.Bookings(), nil
}

// AuditTrail returns the persisted booking history for one customer,
// cancellations included. Unlike BookingsFor it survives process restarts
// but needs the audit database to be configured.
func (s *ReservationService) AuditTrail(ctx context.Context, customerID domain.CustomerID) ([]repository.BookingLogEntry, error) {
	if s.auditLog == nil {
		return nil, fmt.Errorf("%w: booking audit log is not configured", domain.ErrUnavailable)
	}
	return s.auditLog.ListByCustomer(ctx, customerID)
}

// afterCommit runs the best-effort side effects: cache invalidation, event
// publication and the audit trail. None of them can fail the transaction.
func (s *ReservationService) afterCommit(ctx context.Context, eventType string, booking *domain.Booking, customer *domain.Customer, status string) {
	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			logger.ErrorLogger.WithError(err).Error("invalidate flight cache")
		}
	}
	if err := s.publish(ctx, eventType, booking, customer); err != nil {
		logger.ErrorLogger.WithField("booking", booking.ID).WithError(err).Error("publish booking event")
	}
	if s.auditLog != nil {
		entry := repository.BookingLogEntry{
			BookingID:    booking.ID,
			FlightNumber: booking.FlightNumber.String(),
			CustomerID:   booking.CustomerID.String(),
			Seats:        booking.Seats,
			AmountCents:  booking.AmountCents,
			Status:       status,
			CreatedAt:    time.Now(),
		}
		if err := s.auditLog.Append(ctx, entry); err != nil {
			logger.ErrorLogger.WithField("booking", booking.ID).WithError(err).Error("append booking audit log")
		}
	}
}

func (s *ReservationService) publish(ctx context.Context, eventType string, booking *domain.Booking, customer *domain.Customer) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		BookingID:    booking.ID,
		FlightNumber: booking.FlightNumber.String(),
		CustomerID:   booking.CustomerID.String(),
		Email:        customer.Email.String(),
		Seats:        booking.Seats,
		AmountCents:  booking.AmountCents,
		OccurredAt:   time.Now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event)
	}
	return nil
}

// IsRetryable reports whether the caller may retry the same request with an
// adjusted quantity. Business-rule violations and payment declines are
// terminal.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrInsufficientSeats) || errors.Is(err, domain.ErrUnavailable)
}

var _ ReservationUseCase = (*ReservationService)(nil)
