package repository

import (
	"context"
	"testing"
	"time"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/stretchr/testify/assert"
)

func newTestFlight(t *testing.T, airline string, num int) *domain.Flight {
	t.Helper()
	number, err := domain.NewFlightNumber(airline, num)
	assert.NoError(t, err)
	f, err := domain.NewFlight(
		number,
		domain.Airport{City: "London"},
		domain.Airport{City: "Paris"},
		time.Now().Add(time.Hour),
		time.Now().Add(2*time.Hour),
		"C3",
		100,
		15000,
	)
	assert.NoError(t, err)
	return f
}

func newTestCustomer(t *testing.T, id, email string) *domain.Customer {
	t.Helper()
	cid, err := domain.NewCustomerID(id)
	assert.NoError(t, err)
	em, err := domain.NewEmail(email)
	assert.NoError(t, err)
	phone, err := domain.NewPhone("1234567890")
	assert.NoError(t, err)
	c, err := domain.NewCustomer(cid, "Test Customer", em, phone, 30, "hash")
	assert.NoError(t, err)
	return c
}

func TestMemFlightRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFlightRepository()

	f1 := newTestFlight(t, "BA", 1001)
	f2 := newTestFlight(t, "AF", 2002)

	assert.NoError(t, repo.Add(ctx, f1))
	assert.NoError(t, repo.Add(ctx, f2))
	assert.ErrorIs(t, repo.Add(ctx, f1), domain.ErrConflict)

	got, err := repo.FindByNumber(ctx, f1.Number)
	assert.NoError(t, err)
	assert.Same(t, f1, got)

	list, err := repo.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	// insertion order preserved
	assert.Same(t, f1, list[0])
	assert.Same(t, f2, list[1])

	assert.NoError(t, repo.Remove(ctx, f1.Number))
	assert.ErrorIs(t, repo.Remove(ctx, f1.Number), domain.ErrNotFound)

	_, err = repo.FindByNumber(ctx, f1.Number)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemCustomerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository()

	c1 := newTestCustomer(t, "200001", "one@example.com")
	c2 := newTestCustomer(t, "200002", "two@example.com")

	assert.NoError(t, repo.Add(ctx, c1))
	assert.NoError(t, repo.Add(ctx, c2))

	// an id collision is retryable, a conflicting email is not
	err := repo.Add(ctx, newTestCustomer(t, "200001", "three@example.com"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, ErrCustomerIDTaken)

	err = repo.Add(ctx, newTestCustomer(t, "200003", "one@example.com"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, ErrCustomerIDTaken)

	var got *domain.Customer
	got, err = repo.FindByID(ctx, c1.ID)
	assert.NoError(t, err)
	assert.Same(t, c1, got)

	got, err = repo.FindByEmail(ctx, c2.Email)
	assert.NoError(t, err)
	assert.Same(t, c2, got)

	list, err := repo.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Same(t, c1, list[0])

	assert.NoError(t, repo.Remove(ctx, c1.ID))
	_, err = repo.FindByEmail(ctx, c1.Email)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
