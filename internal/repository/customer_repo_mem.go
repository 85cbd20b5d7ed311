package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aturgenev/skyreserve/internal/domain"
)

// ErrCustomerIDTaken marks an id collision on Add, as opposed to a
// conflicting email. Registration re-rolls the id on this error and treats
// every other conflict as terminal.
var ErrCustomerIDTaken = errors.New("customer id already taken")

type CustomerRepository interface {
	List(ctx context.Context) ([]*domain.Customer, error)
	FindByID(ctx context.Context, id domain.CustomerID) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email domain.Email) (*domain.Customer, error)
	Add(ctx context.Context, customer *domain.Customer) error
	Remove(ctx context.Context, id domain.CustomerID) error
}

type MemCustomerRepository struct {
	mu      sync.RWMutex
	byID    map[domain.CustomerID]*domain.Customer
	byEmail map[domain.Email]*domain.Customer
	order   []domain.CustomerID
}

func NewCustomerRepository() *MemCustomerRepository {
	return &MemCustomerRepository{
		byID:    make(map[domain.CustomerID]*domain.Customer),
		byEmail: make(map[domain.Email]*domain.Customer),
	}
}

func (r *MemCustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Customer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *MemCustomerRepository) FindByID(ctx context.Context, id domain.CustomerID) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: customer %s", domain.ErrNotFound, id)
	}
	return c, nil
}

func (r *MemCustomerRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%w: customer with email %s", domain.ErrNotFound, email)
	}
	return c, nil
}

func (r *MemCustomerRepository) Add(ctx context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[customer.ID]; ok {
		return fmt.Errorf("%w: customer %s: %w", domain.ErrConflict, customer.ID, ErrCustomerIDTaken)
	}
	if _, ok := r.byEmail[customer.Email]; ok {
		return fmt.Errorf("%w: email %s already registered", domain.ErrConflict, customer.Email)
	}
	r.byID[customer.ID] = customer
	r.byEmail[customer.Email] = customer
	r.order = append(r.order, customer.ID)
	return nil
}

func (r *MemCustomerRepository) Remove(ctx context.Context, id domain.CustomerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: customer %s", domain.ErrNotFound, id)
	}
	delete(r.byID, id)
	delete(r.byEmail, c.Email)
	for i, cid := range r.order {
		if cid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ CustomerRepository = (*MemCustomerRepository)(nil)
