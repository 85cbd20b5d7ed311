// Package repository holds the entity stores consumed by the services. The
// flight and customer stores are in-memory: a map for O(1) lookup plus an
// ordered slice where insertion order is observable. The booking audit log
// is the only persistent store and is optional.
package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/aturgenev/skyreserve/internal/domain"
)

type FlightRepository interface {
	List(ctx context.Context) ([]*domain.Flight, error)
	FindByNumber(ctx context.Context, number domain.FlightNumber) (*domain.Flight, error)
	Add(ctx context.Context, flight *domain.Flight) error
	Remove(ctx context.Context, number domain.FlightNumber) error
}

type MemFlightRepository struct {
	mu       sync.RWMutex
	byNumber map[domain.FlightNumber]*domain.Flight
	order    []domain.FlightNumber
}

func NewFlightRepository() *MemFlightRepository {
	return &MemFlightRepository{byNumber: make(map[domain.FlightNumber]*domain.Flight)}
}

func (r *MemFlightRepository) List(ctx context.Context) ([]*domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Flight, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.byNumber[n])
	}
	return out, nil
}

func (r *MemFlightRepository) FindByNumber(ctx context.Context, number domain.FlightNumber) (*domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byNumber[number]
	if !ok {
		return nil, fmt.Errorf("%w: flight %s", domain.ErrNotFound, number)
	}
	return f, nil
}

func (r *MemFlightRepository) Add(ctx context.Context, flight *domain.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byNumber[flight.Number]; ok {
		return fmt.Errorf("%w: flight %s already exists", domain.ErrConflict, flight.Number)
	}
	r.byNumber[flight.Number] = flight
	r.order = append(r.order, flight.Number)
	return nil
}

func (r *MemFlightRepository) Remove(ctx context.Context, number domain.FlightNumber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byNumber[number]; !ok {
		return fmt.Errorf("%w: flight %s", domain.ErrNotFound, number)
	}
	delete(r.byNumber, number)
	for i, n := range r.order {
		if n == number {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ FlightRepository = (*MemFlightRepository)(nil)
