package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/chatter-api/chatter/internal/models"
	"github.com/chatter-api/chatter/internal/store"
)

// MinPasswordLength is the minimum accepted password length in characters.
const MinPasswordLength = 4

// AccountService contains business logic for account registration and login.
type AccountService struct {
	store store.DataStore
}

// NewAccountService creates a new AccountService over the given store.
func NewAccountService(s store.DataStore) *AccountService {
	return &AccountService{store: s}
}

// Register validates and creates a new account. Duplicate detection relies
// on the database unique constraint rather than a lookup-then-insert, so
// two concurrent registrations for the same username cannot both succeed.
func (s *AccountService) Register(ctx context.Context, username, password string) (*models.Account, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	account, err := s.store.InsertAccount(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return account, nil
}

// Login returns the account matching the exact username and password, or
// ErrInvalidCredentials if none matches.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.Account, error) {
	account, err := s.store.GetAccountByCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// GetByID retrieves an account by ID. Returns (nil, nil) when no such
// account exists.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return s.store.GetAccountByID(ctx, id)
}
