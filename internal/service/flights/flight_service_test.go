package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/aturgenev/skyreserve/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.FlightSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightSummary), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.FlightSummary) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func createInput(number string) CreateFlightInput {
	return CreateFlightInput{
		FlightNumber: number,
		FromCity:     "London", FromLat: 51.5074, FromLon: -0.1278,
		ToCity: "Paris", ToLat: 48.8566, ToLon: 2.3522,
		Departure:  time.Now().Add(5 * time.Hour),
		Arrival:    time.Now().Add(6 * time.Hour),
		Gate:       "D4",
		TotalSeats: 120,
		PriceCents: 14900,
	}
}

func TestFlightService_CreateAndList(t *testing.T) {
	repo := repository.NewFlightRepository()
	service := NewFlightService(repo, nil)
	ctx := context.Background()

	flight, err := service.Create(ctx, createInput("BA-1001"))
	assert.NoError(t, err)
	assert.Equal(t, "BA-1001", flight.Number.String())

	_, err = service.Create(ctx, createInput("BA-1001"))
	assert.ErrorIs(t, err, domain.ErrConflict)

	summaries, err := service.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, 120, summaries[0].AvailableSeats)
	assert.Greater(t, summaries[0].DistanceMiles, 100.0)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	repo := repository.NewFlightRepository()
	cache := &MockCache{}
	service := NewFlightService(repo, cache)
	ctx := context.Background()

	cached := []domain.FlightSummary{{Number: "BA-1001", AvailableSeats: 12}}
	cache.On("GetFlights", ctx).Return(cached, nil)

	got, err := service.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, cached, got)
	cache.AssertNotCalled(t, "SetFlights", mock.Anything, mock.Anything)
}

func TestFlightService_List_CacheMissPopulates(t *testing.T) {
	repo := repository.NewFlightRepository()
	cache := &MockCache{}
	service := NewFlightService(repo, cache)
	ctx := context.Background()

	cache.On("InvalidateFlights", ctx).Return(nil)
	_, err := service.Create(ctx, createInput("AF-2002"))
	assert.NoError(t, err)

	cache.On("GetFlights", ctx).Return(nil, errors.New("redis down"))
	cache.On("SetFlights", ctx, mock.Anything).Return(nil)

	got, err := service.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	cache.AssertExpectations(t)
}

func TestFlightService_Delete_Guarded(t *testing.T) {
	repo := repository.NewFlightRepository()
	service := NewFlightService(repo, nil)
	ctx := context.Background()

	flight, err := service.Create(ctx, createInput("BA-1001"))
	assert.NoError(t, err)

	// active booking blocks deletion
	_, err = flight.ReserveSeats("b-1", "200001", 2)
	assert.NoError(t, err)
	assert.ErrorIs(t, service.Delete(ctx, flight.Number, false), domain.ErrConflict)

	// force overrides after explicit confirmation
	assert.NoError(t, service.Delete(ctx, flight.Number, true))
	_, err = service.Get(ctx, flight.Number)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFlightService_ForceDeleteReleasesLedgerEntries(t *testing.T) {
	repo := repository.NewFlightRepository()
	customers := repository.NewCustomerRepository()
	service := NewFlightService(repo, nil, WithCustomerLedger(customers))
	ctx := context.Background()

	flight, err := service.Create(ctx, createInput("BA-1001"))
	assert.NoError(t, err)

	id, _ := domain.NewCustomerID("200001")
	email, _ := domain.NewEmail("anna@example.com")
	phone, _ := domain.NewPhone("1234567890")
	customer, err := domain.NewCustomer(id, "Anna", email, phone, 30, "hash")
	assert.NoError(t, err)
	assert.NoError(t, customers.Add(ctx, customer))

	booking := &domain.Booking{ID: "b-1", FlightNumber: flight.Number, CustomerID: id, Seats: 2}
	_, err = domain.CommitBooking(flight, customer, booking)
	assert.NoError(t, err)
	assert.Len(t, customer.Bookings(), 1)

	assert.NoError(t, service.Delete(ctx, flight.Number, true))

	// no orphaned entry counting against the booking limit
	assert.Empty(t, customer.Bookings())
	assert.True(t, customer.CanBook())
}

func TestFlightService_Delete_EmptyFlight(t *testing.T) {
	repo := repository.NewFlightRepository()
	service := NewFlightService(repo, nil)
	ctx := context.Background()

	flight, err := service.Create(ctx, createInput("DL-3003"))
	assert.NoError(t, err)
	assert.NoError(t, service.Delete(ctx, flight.Number, false))

	assert.ErrorIs(t, service.Delete(ctx, flight.Number, false), domain.ErrNotFound)
}

func TestFlightService_TotalRevenue(t *testing.T) {
	repo := repository.NewFlightRepository()
	service := NewFlightService(repo, nil)
	ctx := context.Background()

	f1, err := service.Create(ctx, createInput("BA-1001"))
	assert.NoError(t, err)
	f2, err := service.Create(ctx, createInput("AF-2002"))
	assert.NoError(t, err)

	_, err = f1.ReserveSeats("b-1", "200001", 2)
	assert.NoError(t, err)
	_, err = f2.ReserveSeats("b-2", "200002", 1)
	assert.NoError(t, err)

	total, err := service.TotalRevenue(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(3*14900), total)
}

type failingFlightRepo struct {
	repository.FlightRepository
	err error
}

func (r *failingFlightRepo) Add(ctx context.Context, f *domain.Flight) error { return r.err }

func TestScheduler_Populate_RepoFailure(t *testing.T) {
	scheduler := NewScheduler(7)
	repoErr := errors.New("store offline")

	// a non-conflict failure must surface, not trigger a re-roll
	err := scheduler.Populate(context.Background(), &failingFlightRepo{err: repoErr}, 3)
	assert.ErrorIs(t, err, repoErr)
}

func TestScheduler_Populate(t *testing.T) {
	repo := repository.NewFlightRepository()
	scheduler := NewScheduler(42)
	ctx := context.Background()

	assert.NoError(t, scheduler.Populate(ctx, repo, 20))

	flights, err := repo.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, flights, 20)

	seen := map[string]bool{}
	for _, f := range flights {
		assert.False(t, seen[f.Number.String()], "duplicate flight number %s", f.Number)
		seen[f.Number.String()] = true

		assert.NotEqual(t, f.Origin.City, f.Destination.City)
		assert.GreaterOrEqual(t, f.TotalSeats, domain.MinFlightSeats)
		assert.LessOrEqual(t, f.TotalSeats, domain.MaxFlightSeats)
		assert.True(t, f.Arrival.After(f.Departure))
		assert.Greater(t, f.PriceCents, int64(0))
	}
}
