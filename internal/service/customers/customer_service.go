// Package customers manages customer accounts: registration, lookup,
// profile updates and removal. Booking state lives on the customer entity
// itself and is driven by the reservation service.
package customers

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/aturgenev/skyreserve/internal/logger"
	"github.com/aturgenev/skyreserve/internal/repository"
	"github.com/aturgenev/skyreserve/internal/service/auth"
)

type CustomerUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Customer, error)
	Get(ctx context.Context, id domain.CustomerID) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
	UpdateContact(ctx context.Context, id domain.CustomerID, name, phone string) error
	Delete(ctx context.Context, id domain.CustomerID) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Age      int
	Password string
}

type CustomerService struct {
	repo repository.CustomerRepository

	mu  sync.Mutex
	rng *rand.Rand
}

func NewCustomerService(repo repository.CustomerRepository, seed int64) *CustomerService {
	return &CustomerService{repo: repo, rng: rand.New(rand.NewSource(seed))}
}

func (s *CustomerService) Register(ctx context.Context, input RegisterInput) (*domain.Customer, error) {
	email, err := domain.NewEmail(input.Email)
	if err != nil {
		return nil, err
	}
	phone, err := domain.NewPhone(input.Phone)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrInvalidRequest)
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// retry on the unlikely id collision
	for attempt := 0; attempt < 5; attempt++ {
		customer, err := domain.NewCustomer(s.randomID(), input.Name, email, phone, input.Age, hash)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Add(ctx, customer); err != nil {
			if attempt < 4 && errors.Is(err, repository.ErrCustomerIDTaken) {
				continue
			}
			return nil, err
		}
		logger.InfoLogger.WithField("customer", customer.ID.String()).Info("customer registered")
		return customer, nil
	}
	return nil, fmt.Errorf("%w: could not allocate customer id", domain.ErrConflict)
}

func (s *CustomerService) Get(ctx context.Context, id domain.CustomerID) (*domain.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CustomerService) List(ctx context.Context) ([]*domain.Customer, error) {
	return s.repo.List(ctx)
}

func (s *CustomerService) UpdateContact(ctx context.Context, id domain.CustomerID, name, phone string) error {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	var parsedPhone domain.Phone
	if phone != "" {
		parsedPhone, err = domain.NewPhone(phone)
		if err != nil {
			return err
		}
	}
	customer.UpdateContact(name, parsedPhone)
	return nil
}

// Delete removes the account. Customers with active bookings must cancel
// them first so no flight manifest is left pointing at a missing customer.
func (s *CustomerService) Delete(ctx context.Context, id domain.CustomerID) error {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if len(customer.Bookings()) > 0 {
		return fmt.Errorf("%w: customer %s has active bookings", domain.ErrConflict, id)
	}
	return s.repo.Remove(ctx, id)
}

func (s *CustomerService) randomID() domain.CustomerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := domain.NewCustomerID(fmt.Sprintf("%06d", 200000+s.rng.Intn(800000)))
	return id
}

var _ CustomerUseCase = (*CustomerService)(nil)
