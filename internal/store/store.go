package store

import (
	"context"
	"errors"

	"github.com/chatter-api/chatter/internal/models"
)

// Constraint violations surfaced by insert operations. The database is the
// authority on username uniqueness and author existence; callers translate
// these into business-rule failures.
var (
	ErrDuplicateUsername = errors.New("store: username already exists")
	ErrAuthorNotFound    = errors.New("store: author account does not exist")
)

// DataStore defines the interface for persistent storage of accounts and
// messages. Both PostgresStore and SQLiteStore implement this interface.
// Lookups return (nil, nil) when no row matches; a non-nil error always
// means a storage fault, never "not found".
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Account operations
	InsertAccount(ctx context.Context, username, password string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	GetAccountByCredentials(ctx context.Context, username, password string) (*models.Account, error)
	CountAccounts(ctx context.Context) (int64, error)

	// Message operations
	InsertMessage(ctx context.Context, authorID int64, text string, postedAtEpoch int64) (*models.Message, error)
	GetAllMessages(ctx context.Context) ([]models.Message, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	GetMessagesByAuthor(ctx context.Context, authorID int64) ([]models.Message, error)
	UpdateMessageText(ctx context.Context, id int64, text string) error
	DeleteMessage(ctx context.Context, id int64) (int64, error)
	CountMessages(ctx context.Context) (int64, error)
}
