package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/aturgenev/skyreserve/internal/payment"
	"github.com/aturgenev/skyreserve/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Process(ctx context.Context, amountCents int64, method payment.Method) (payment.Result, error) {
	args := m.Called(ctx, amountCents, method)
	return args.Get(0).(payment.Result), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockBookingLog struct {
	mock.Mock
}

func (m *MockBookingLog) Append(ctx context.Context, entry repository.BookingLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBookingLog) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]repository.BookingLogEntry, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]repository.BookingLogEntry), args.Error(1)
}

type fixture struct {
	flights   *repository.MemFlightRepository
	customers *repository.MemCustomerRepository
	gateway   *MockGateway
	flight    *domain.Flight
	customer  *domain.Customer
}

func newFixture(t *testing.T, age int) *fixture {
	t.Helper()
	f := &fixture{
		flights:   repository.NewFlightRepository(),
		customers: repository.NewCustomerRepository(),
		gateway:   &MockGateway{},
	}

	number, err := domain.NewFlightNumber("BA", 1001)
	assert.NoError(t, err)
	f.flight, err = domain.NewFlight(
		number,
		domain.Airport{City: "London", Latitude: 51.5074, Longitude: -0.1278},
		domain.Airport{City: "New York", Latitude: 40.7128, Longitude: -74.0060},
		time.Now().Add(3*time.Hour),
		time.Now().Add(10*time.Hour),
		"A1",
		50,
		25000,
	)
	assert.NoError(t, err)
	assert.NoError(t, f.flights.Add(context.Background(), f.flight))

	id, _ := domain.NewCustomerID("200001")
	email, _ := domain.NewEmail("anna@example.com")
	phone, _ := domain.NewPhone("1234567890")
	f.customer, err = domain.NewCustomer(id, "Anna", email, phone, age, "hash")
	assert.NoError(t, err)
	assert.NoError(t, f.customers.Add(context.Background(), f.customer))

	return f
}

func (f *fixture) service(opts ...ReservationServiceOption) *ReservationService {
	return NewReservationService(f.flights, f.customers, f.gateway, opts...)
}

func TestBook_Success(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	f.gateway.On("Process", mock.Anything, int64(2*25000), payment.MethodCard).
		Return(payment.Result{Success: true, Message: "approved"}, nil)

	booking, err := service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001",
		CustomerID:   "200001",
		Seats:        2,
		Method:       "CARD",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, 2, booking.Seats)
	assert.Equal(t, int64(50000), booking.AmountCents)

	assert.Equal(t, 48, f.flight.AvailableSeats())
	assert.Len(t, f.customer.Bookings(), 1)
	assert.Equal(t, 2, f.customer.TotalTicketsBooked())

	f.gateway.AssertExpectations(t)
}

func TestBook_ExhaustsSeats(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	// leave exactly two seats on the flight
	_, err := f.flight.ReserveSeats("presold", "200009", 48)
	assert.NoError(t, err)

	f.gateway.On("Process", mock.Anything, mock.Anything, payment.MethodCard).
		Return(payment.Result{Success: true, Message: "approved"}, nil)

	_, err = service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "200001", Seats: 2, Method: "CARD",
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, f.flight.AvailableSeats())

	_, err = service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "200001", Seats: 1, Method: "CARD",
	})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientSeats) || errors.Is(err, domain.ErrUnavailable))
}

func TestBook_InvalidRequest(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	cases := []BookingInput{
		{FlightNumber: "", CustomerID: "200001", Seats: 1, Method: "CARD"},
		{FlightNumber: "BA-1001", CustomerID: "", Seats: 1, Method: "CARD"},
		{FlightNumber: "BA-1001", CustomerID: "200001", Seats: 0, Method: "CARD"},
		{FlightNumber: "BA-1001", CustomerID: "200001", Seats: -3, Method: "CARD"},
		{FlightNumber: "BA-1001", CustomerID: "200001", Seats: 1, Method: "CHEQUE"},
	}
	for _, input := range cases {
		_, err := service.Book(context.Background(), input)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, "input %+v", input)
	}

	assert.Equal(t, 50, f.flight.AvailableSeats())
	f.gateway.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_NotFound(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	_, err := service.Book(context.Background(), BookingInput{
		FlightNumber: "LH-9999", CustomerID: "200001", Seats: 1, Method: "CARD",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "999999", Seats: 1, Method: "CARD",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBook_UnderageCustomer(t *testing.T) {
	f := newFixture(t, 17)
	service := f.service()

	_, err := service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "200001", Seats: 1, Method: "CARD",
	})
	assert.ErrorIs(t, err, domain.ErrIneligible)
	assert.Equal(t, 50, f.flight.AvailableSeats())
	f.gateway.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_BookingLimit(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	for i := 0; i < domain.MaxBookingsPerCustomer; i++ {
		assert.NoError(t, f.customer.RecordBooking(&domain.Booking{
			ID: fmt.Sprintf("b-%d", i), FlightNumber: f.flight.Number, CustomerID: f.customer.ID, Seats: 1,
		}))
	}

	_, err := service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "200001", Seats: 1, Method: "CARD",
	})
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
	f.gateway.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_PaymentDeclined(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	f.gateway.On("Process", mock.Anything, mock.Anything, payment.MethodCard).
		Return(payment.Result{Success: false, Message: "card expired"}, nil)

	_, err := service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "200001", Seats: 2, Method: "CARD",
	})
	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)

	var declined *domain.PaymentDeclinedError
	assert.ErrorAs(t, err, &declined)
	assert.Equal(t, "card expired", declined.Reason)

	// no inventory mutation on decline
	assert.Equal(t, 50, f.flight.AvailableSeats())
	assert.Empty(t, f.flight.Manifest())
	assert.Empty(t, f.customer.Bookings())
}

func TestBook_GatewayError(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	f.gateway.On("Process", mock.Anything, mock.Anything, payment.MethodUPI).
		Return(payment.Result{}, errors.New("gateway timeout"))

	_, err := service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "200001", Seats: 1, Method: "UPI",
	})
	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)
	assert.Equal(t, 50, f.flight.AvailableSeats())
}

func TestBook_PublishesEvents(t *testing.T) {
	f := newFixture(t, 30)
	producer := &MockProducer{}
	cache := &MockCache{}
	service := f.service(
		WithProducer(producer, "booking-events"),
		WithNotificationsTopic("booking-notifications"),
		WithCache(cache),
	)

	f.gateway.On("Process", mock.Anything, mock.Anything, payment.MethodCard).
		Return(payment.Result{Success: true}, nil)
	producer.On("Publish", mock.Anything, "booking-events", mock.Anything, mock.Anything).Return(nil)
	producer.On("Publish", mock.Anything, "booking-notifications", mock.Anything, mock.Anything).Return(nil)
	cache.On("InvalidateFlights", mock.Anything).Return(nil)

	_, err := service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "200001", Seats: 1, Method: "CARD",
	})
	assert.NoError(t, err)

	producer.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestBook_AuditLogFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t, 30)
	auditLog := &MockBookingLog{}
	service := f.service(WithAuditLog(auditLog))

	f.gateway.On("Process", mock.Anything, mock.Anything, payment.MethodCard).
		Return(payment.Result{Success: true}, nil)
	auditLog.On("Append", mock.Anything, mock.Anything).Return(errors.New("db down"))

	booking, err := service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "200001", Seats: 1, Method: "CARD",
	})
	assert.NoError(t, err)
	assert.NotNil(t, booking)
	auditLog.AssertExpectations(t)
}

func TestAuditTrail(t *testing.T) {
	f := newFixture(t, 30)

	_, err := f.service().AuditTrail(context.Background(), f.customer.ID)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	auditLog := &MockBookingLog{}
	entries := []repository.BookingLogEntry{
		{BookingID: "b-1", Status: repository.BookingLogStatusConfirmed},
		{BookingID: "b-1", Status: repository.BookingLogStatusCancelled},
	}
	auditLog.On("ListByCustomer", mock.Anything, f.customer.ID).Return(entries, nil)

	got, err := f.service(WithAuditLog(auditLog)).AuditTrail(context.Background(), f.customer.ID)
	assert.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestCancel_RoundTrip(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	f.gateway.On("Process", mock.Anything, mock.Anything, payment.MethodCard).
		Return(payment.Result{Success: true}, nil)

	booked, err := service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "200001", Seats: 3, Method: "CARD",
	})
	assert.NoError(t, err)
	assert.Equal(t, 47, f.flight.AvailableSeats())

	cancelled, err := service.Cancel(context.Background(), f.customer.ID, f.flight.Number)
	assert.NoError(t, err)
	assert.Equal(t, booked.ID, cancelled.ID)

	// pre-booking state restored on both sides
	assert.Equal(t, 50, f.flight.AvailableSeats())
	assert.Empty(t, f.flight.Manifest())
	assert.Empty(t, f.customer.Bookings())

	_, err = service.Cancel(context.Background(), f.customer.ID, f.flight.Number)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancel_DepartedFlight(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	number, _ := domain.NewFlightNumber("LH", 2002)
	departed, err := domain.NewFlight(
		number,
		domain.Airport{City: "Berlin"},
		domain.Airport{City: "Madrid"},
		time.Now().Add(-2*time.Hour),
		time.Now().Add(time.Hour),
		"B4",
		100,
		9900,
	)
	assert.NoError(t, err)
	assert.NoError(t, f.flights.Add(context.Background(), departed))

	// ledger entry created before departure
	booking := &domain.Booking{ID: "b-old", FlightNumber: number, CustomerID: f.customer.ID, Seats: 1}
	_, err = domain.CommitBooking(departed, f.customer, booking)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	// seed manually to simulate a booking made pre-departure
	assert.NoError(t, f.customer.RecordBooking(booking))

	_, err = service.Cancel(context.Background(), f.customer.ID, number)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Len(t, f.customer.Bookings(), 1)
}

func TestBookingsFor(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	f.gateway.On("Process", mock.Anything, mock.Anything, payment.MethodCard).
		Return(payment.Result{Success: true}, nil)

	_, err := service.Book(context.Background(), BookingInput{
		FlightNumber: "BA-1001", CustomerID: "200001", Seats: 2, Method: "CARD",
	})
	assert.NoError(t, err)

	bookings, err := service.BookingsFor(context.Background(), f.customer.ID)
	assert.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.Equal(t, 2, bookings[0].Seats)

	_, err = service.BookingsFor(context.Background(), "999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBook_ConcurrentNoOversell(t *testing.T) {
	f := newFixture(t, 30)
	service := f.service()

	f.gateway.On("Process", mock.Anything, mock.Anything, payment.MethodCard).
		Return(payment.Result{Success: true}, nil)

	// many customers race for 50 seats in chunks of 10
	ctx := context.Background()
	var wg sync.WaitGroup
	var mu sync.Mutex
	booked := 0

	for i := 0; i < 20; i++ {
		id, _ := domain.NewCustomerID(fmt.Sprintf("3000%02d", i))
		email, _ := domain.NewEmail(fmt.Sprintf("c%d@example.com", i))
		phone, _ := domain.NewPhone("1234567890")
		c, err := domain.NewCustomer(id, "Racer", email, phone, 30, "hash")
		assert.NoError(t, err)
		assert.NoError(t, f.customers.Add(ctx, c))

		wg.Add(1)
		go func(cid string) {
			defer wg.Done()
			_, err := service.Book(ctx, BookingInput{
				FlightNumber: "BA-1001", CustomerID: cid, Seats: 10, Method: "CARD",
			})
			if err == nil {
				mu.Lock()
				booked += 10
				mu.Unlock()
			}
		}(id.String())
	}
	wg.Wait()

	assert.Equal(t, 50, booked)
	assert.Equal(t, 0, f.flight.AvailableSeats())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("wrap: %w", domain.ErrInsufficientSeats)))
	assert.True(t, IsRetryable(domain.ErrUnavailable))
	assert.False(t, IsRetryable(domain.ErrIneligible))
	assert.False(t, IsRetryable(&domain.PaymentDeclinedError{Reason: "declined"}))
}
