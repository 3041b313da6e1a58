package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"github.com/chatter-api/chatter/internal/models"
)

// SQLiteStore handles SQLite database operations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/chatter.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/chatter.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// A single writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS message (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id INTEGER NOT NULL REFERENCES account(id),
		text TEXT NOT NULL,
		posted_at_epoch INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_message_author ON message(author_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertAccount creates a new account record. A unique-constraint violation
// on the username is reported as ErrDuplicateUsername.
func (s *SQLiteStore) InsertAccount(ctx context.Context, username, password string) (*models.Account, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO account (username, password) VALUES (?, ?)
	`, username, password)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Account{ID: id, Username: username, Password: password}, nil
}

// GetAccountByID retrieves an account by ID.
func (s *SQLiteStore) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	account := &models.Account{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password
		FROM account WHERE id = ?
	`, id).Scan(
		&account.ID,
		&account.Username,
		&account.Password,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByUsername retrieves an account by username.
func (s *SQLiteStore) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	account := &models.Account{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password
		FROM account WHERE username = ?
	`, username).Scan(
		&account.ID,
		&account.Username,
		&account.Password,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByCredentials retrieves an account by exact username and
// password match.
func (s *SQLiteStore) GetAccountByCredentials(ctx context.Context, username, password string) (*models.Account, error) {
	account := &models.Account{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password
		FROM account WHERE username = ? AND password = ?
	`, username, password).Scan(
		&account.ID,
		&account.Username,
		&account.Password,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// CountAccounts returns the total number of registered accounts.
func (s *SQLiteStore) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM account`).Scan(&count)
	return count, err
}

// InsertMessage creates a new message record. A foreign-key violation on
// the author is reported as ErrAuthorNotFound.
func (s *SQLiteStore) InsertMessage(ctx context.Context, authorID int64, text string, postedAtEpoch int64) (*models.Message, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO message (author_id, text, posted_at_epoch) VALUES (?, ?, ?)
	`, authorID, text, postedAtEpoch)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Message{ID: id, AuthorID: authorID, Text: text, PostedAtEpoch: postedAtEpoch}, nil
}

// GetAllMessages retrieves all messages.
func (s *SQLiteStore) GetAllMessages(ctx context.Context) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, text, posted_at_epoch
		FROM message
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteMessageRows(rows)
}

// GetMessageByID retrieves a message by ID.
func (s *SQLiteStore) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	message := &models.Message{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, text, posted_at_epoch
		FROM message WHERE id = ?
	`, id).Scan(
		&message.ID,
		&message.AuthorID,
		&message.Text,
		&message.PostedAtEpoch,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return message, nil
}

// GetMessagesByAuthor retrieves all messages posted by the given account.
func (s *SQLiteStore) GetMessagesByAuthor(ctx context.Context, authorID int64) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, text, posted_at_epoch
		FROM message
		WHERE author_id = ?
		ORDER BY id
	`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteMessageRows(rows)
}

// UpdateMessageText overwrites the text of an existing message.
func (s *SQLiteStore) UpdateMessageText(ctx context.Context, id int64, text string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE message SET text = ? WHERE id = ?
	`, text, id)
	return err
}

// DeleteMessage removes a message by ID and returns the number of rows
// removed (0 or 1).
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM message WHERE id = ?
	`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountMessages returns the total number of messages.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM message`).Scan(&count)
	return count, err
}

func scanSQLiteMessageRows(rows *sql.Rows) ([]models.Message, error) {
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
