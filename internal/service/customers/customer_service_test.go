package customers

import (
	"context"
	"testing"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/aturgenev/skyreserve/internal/repository"
	"github.com/aturgenev/skyreserve/internal/service/auth"
	"github.com/stretchr/testify/assert"
)

func newService() (*CustomerService, *repository.MemCustomerRepository) {
	repo := repository.NewCustomerRepository()
	return NewCustomerService(repo, 1), repo
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:     "Anna Schmidt",
		Email:    "anna@example.com",
		Phone:    "+4915112345678",
		Age:      28,
		Password: "secret123",
	}
}

func TestRegister(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	customer, err := service.Register(ctx, validInput())
	assert.NoError(t, err)
	assert.Len(t, customer.ID.String(), 6)
	assert.Equal(t, "Anna Schmidt", customer.Name())
	assert.True(t, auth.VerifyPassword(customer.PasswordHash, "secret123"))

	got, err := service.Get(ctx, customer.ID)
	assert.NoError(t, err)
	assert.Same(t, customer, got)
}

func TestRegister_Validation(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	bad := validInput()
	bad.Email = "nope"
	_, err := service.Register(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	bad = validInput()
	bad.Phone = "abc"
	_, err = service.Register(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	bad = validInput()
	bad.Password = "ab"
	_, err = service.Register(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	bad = validInput()
	bad.Name = ""
	_, err = service.Register(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	_, err := service.Register(ctx, validInput())
	assert.NoError(t, err)

	// a conflicting email is terminal, not retried as an id collision
	_, err = service.Register(ctx, validInput())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, repository.ErrCustomerIDTaken)
}

func TestUpdateContact(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	customer, err := service.Register(ctx, validInput())
	assert.NoError(t, err)

	assert.NoError(t, service.UpdateContact(ctx, customer.ID, "Anna S.", "+4915199999999"))
	assert.Equal(t, "Anna S.", customer.Name())
	assert.Equal(t, "+4915199999999", customer.Phone().String())

	assert.ErrorIs(t, service.UpdateContact(ctx, customer.ID, "", "bogus"), domain.ErrInvalidRequest)
	assert.ErrorIs(t, service.UpdateContact(ctx, "999999", "X", ""), domain.ErrNotFound)
}

func TestDelete_BlockedByActiveBookings(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	customer, err := service.Register(ctx, validInput())
	assert.NoError(t, err)

	number, _ := domain.NewFlightNumber("BA", 1001)
	assert.NoError(t, customer.RecordBooking(&domain.Booking{
		ID: "b-1", FlightNumber: number, CustomerID: customer.ID, Seats: 1,
	}))

	assert.ErrorIs(t, service.Delete(ctx, customer.ID), domain.ErrConflict)

	assert.NoError(t, customer.RemoveBooking("b-1"))
	assert.NoError(t, service.Delete(ctx, customer.ID))
	_, err = service.Get(ctx, customer.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
