// Package auth implements the authorization dispatcher: an ordered chain of
// authentication strategies, each of which may yield a principal with a
// fixed permission set.
package auth

import (
	"context"
	"strings"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/aturgenev/skyreserve/internal/logger"
)

type AuthUseCase interface {
	Authenticate(ctx context.Context, username, password string) (domain.Principal, error)
}

// Strategy tries to authenticate one class of user. A false second return
// means "not mine", letting the dispatcher fall through to the next
// strategy.
type Strategy interface {
	Authenticate(ctx context.Context, username, password string) (domain.Principal, bool)
}

// Authenticator dispatches over its strategies in fixed order and returns
// the first successful principal.
type Authenticator struct {
	strategies []Strategy
}

func NewAuthenticator(strategies ...Strategy) *Authenticator {
	return &Authenticator{strategies: strategies}
}

func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (domain.Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	for _, s := range a.strategies {
		if principal, ok := s.Authenticate(ctx, username, password); ok {
			logger.InfoLogger.WithField("user", principal.Username()).Info("authenticated")
			return principal, nil
		}
	}
	return nil, domain.ErrInvalidCredentials
}

var _ AuthUseCase = (*Authenticator)(nil)
