package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatter-api/chatter/internal/models"
)

// PostgreSQL error codes for constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InsertAccount creates a new account record. A unique-constraint violation
// on the username is reported as ErrDuplicateUsername.
func (s *PostgresStore) InsertAccount(ctx context.Context, username, password string) (*models.Account, error) {
	account := &models.Account{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO account (username, password)
		VALUES ($1, $2)
		RETURNING id, username, password
	`, username, password).Scan(
		&account.ID,
		&account.Username,
		&account.Password,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByID retrieves an account by ID.
func (s *PostgresStore) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	account := &models.Account{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password
		FROM account WHERE id = $1
	`, id).Scan(
		&account.ID,
		&account.Username,
		&account.Password,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByUsername retrieves an account by username.
func (s *PostgresStore) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	account := &models.Account{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password
		FROM account WHERE username = $1
	`, username).Scan(
		&account.ID,
		&account.Username,
		&account.Password,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByCredentials retrieves an account by exact username and
// password match.
func (s *PostgresStore) GetAccountByCredentials(ctx context.Context, username, password string) (*models.Account, error) {
	account := &models.Account{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password
		FROM account WHERE username = $1 AND password = $2
	`, username, password).Scan(
		&account.ID,
		&account.Username,
		&account.Password,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// CountAccounts returns the total number of registered accounts.
func (s *PostgresStore) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM account`).Scan(&count)
	return count, err
}

// InsertMessage creates a new message record. A foreign-key violation on
// the author is reported as ErrAuthorNotFound.
func (s *PostgresStore) InsertMessage(ctx context.Context, authorID int64, text string, postedAtEpoch int64) (*models.Message, error) {
	message := &models.Message{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO message (author_id, text, posted_at_epoch)
		VALUES ($1, $2, $3)
		RETURNING id, author_id, text, posted_at_epoch
	`, authorID, text, postedAtEpoch).Scan(
		&message.ID,
		&message.AuthorID,
		&message.Text,
		&message.PostedAtEpoch,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	return message, nil
}

// GetAllMessages retrieves all messages.
func (s *PostgresStore) GetAllMessages(ctx context.Context) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, author_id, text, posted_at_epoch
		FROM message
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessageRows(rows)
}

// GetMessageByID retrieves a message by ID.
func (s *PostgresStore) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	message := &models.Message{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, author_id, text, posted_at_epoch
		FROM message WHERE id = $1
	`, id).Scan(
		&message.ID,
		&message.AuthorID,
		&message.Text,
		&message.PostedAtEpoch,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return message, nil
}

// GetMessagesByAuthor retrieves all messages posted by the given account.
func (s *PostgresStore) GetMessagesByAuthor(ctx context.Context, authorID int64) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, author_id, text, posted_at_epoch
		FROM message
		WHERE author_id = $1
		ORDER BY id
	`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessageRows(rows)
}

// UpdateMessageText overwrites the text of an existing message.
func (s *PostgresStore) UpdateMessageText(ctx context.Context, id int64, text string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE message SET text = $1 WHERE id = $2
	`, text, id)
	return err
}

// DeleteMessage removes a message by ID and returns the number of rows
// removed (0 or 1).
func (s *PostgresStore) DeleteMessage(ctx context.Context, id int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM message WHERE id = $1
	`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountMessages returns the total number of messages.
func (s *PostgresStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM message`).Scan(&count)
	return count, err
}

func scanMessageRows(rows pgx.Rows) ([]models.Message, error) {
	messages := []models.Message{}
	for rows.Next() {
		var message models.Message
		err := rows.Scan(
			&message.ID,
			&message.AuthorID,
			&message.Text,
			&message.PostedAtEpoch,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
