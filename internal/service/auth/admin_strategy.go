package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/aturgenev/skyreserve/internal/domain"
)

const (
	// MaxAdminAccounts bounds the credential store.
	MaxAdminAccounts = 10

	minAdminUsernameLen = 4
	minAdminPasswordLen = 8
)

type adminCredential struct {
	username     string
	passwordHash string
}

// CredentialStore is a bounded, injectable table of admin credentials. The
// seed entry is exempt from the length rules so the default root/root
// account keeps working.
type CredentialStore struct {
	mu    sync.RWMutex
	creds []adminCredential
}

func NewCredentialStore(seedUsername, seedPassword string) (*CredentialStore, error) {
	hash, err := HashPassword(seedPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &CredentialStore{
		creds: []adminCredential{{username: seedUsername, passwordHash: hash}},
	}, nil
}

// CreateAccount registers an additional admin. Usernames must be unique,
// at least 4 characters, passwords at least 8.
func (s *CredentialStore) CreateAccount(username, password string) error {
	if len(username) < minAdminUsernameLen {
		return fmt.Errorf("%w: admin username must be at least %d characters", domain.ErrInvalidRequest, minAdminUsernameLen)
	}
	if len(password) < minAdminPasswordLen {
		return fmt.Errorf("%w: admin password must be at least %d characters", domain.ErrInvalidRequest, minAdminPasswordLen)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.creds) >= MaxAdminAccounts {
		return fmt.Errorf("%w: admin account limit of %d reached", domain.ErrLimitExceeded, MaxAdminAccounts)
	}
	for _, c := range s.creds {
		if c.username == username {
			return fmt.Errorf("%w: admin %q already exists", domain.ErrConflict, username)
		}
	}
	s.creds = append(s.creds, adminCredential{username: username, passwordHash: hash})
	return nil
}

func (s *CredentialStore) verify(username, password string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.creds {
		if c.username == username && VerifyPassword(c.passwordHash, password) {
			return true
		}
	}
	return false
}

// AdminStrategy authenticates against the credential store.
type AdminStrategy struct {
	store *CredentialStore
}

func NewAdminStrategy(store *CredentialStore) *AdminStrategy {
	return &AdminStrategy{store: store}
}

func (s *AdminStrategy) Authenticate(ctx context.Context, username, password string) (domain.Principal, bool) {
	if !s.store.verify(username, password) {
		return nil, false
	}
	return domain.AdminPrincipal{Name: username}, true
}

var _ Strategy = (*AdminStrategy)(nil)
