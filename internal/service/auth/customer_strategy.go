package auth

import (
	"context"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/aturgenev/skyreserve/internal/repository"
)

// CustomerStrategy authenticates by registered email and password.
type CustomerStrategy struct {
	customers repository.CustomerRepository
}

func NewCustomerStrategy(customers repository.CustomerRepository) *CustomerStrategy {
	return &CustomerStrategy{customers: customers}
}

func (s *CustomerStrategy) Authenticate(ctx context.Context, username, password string) (domain.Principal, bool) {
	email, err := domain.NewEmail(username)
	if err != nil {
		return nil, false
	}
	customer, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		return nil, false
	}
	if !VerifyPassword(customer.PasswordHash, password) {
		return nil, false
	}
	return domain.CustomerPrincipal{CustomerID: customer.ID, Email: customer.Email}, true
}

var _ Strategy = (*CustomerStrategy)(nil)
