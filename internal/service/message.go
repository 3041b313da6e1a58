package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/chatter-api/chatter/internal/models"
	"github.com/chatter-api/chatter/internal/store"
)

// MaxTextLength is the maximum accepted message text length in characters.
const MaxTextLength = 255

// MessageService contains business logic for message CRUD operations.
type MessageService struct {
	store store.DataStore
}

// NewMessageService creates a new MessageService over the given store.
func NewMessageService(s store.DataStore) *MessageService {
	return &MessageService{store: s}
}

func validText(text string) bool {
	// Character count, not bytes: multi-byte text up to 255 characters is fine.
	n := utf8.RuneCountInString(text)
	return n >= 1 && n <= MaxTextLength
}

// Create validates and persists a new message. The author must exist; the
// check runs before the insert so a rejected message never hits the store,
// and the foreign-key constraint backstops the race where the author row
// vanishes between check and insert.
func (s *MessageService) Create(ctx context.Context, authorID int64, text string, postedAtEpoch int64) (*models.Message, error) {
	if !validText(text) {
		return nil, ErrInvalidText
	}

	author, err := s.store.GetAccountByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrAuthorNotFound
	}

	message, err := s.store.InsertMessage(ctx, authorID, text, postedAtEpoch)
	if err != nil {
		if errors.Is(err, store.ErrAuthorNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	return message, nil
}

// GetAll retrieves all messages.
func (s *MessageService) GetAll(ctx context.Context) ([]models.Message, error) {
	return s.store.GetAllMessages(ctx)
}

// GetByID retrieves a message by ID. Returns (nil, nil) when no such
// message exists.
func (s *MessageService) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	return s.store.GetMessageByID(ctx, id)
}

// Delete removes a message by ID and returns the removed message.
// Deleting an absent ID is a no-op returning (nil, nil); the operation is
// idempotent.
func (s *MessageService) Delete(ctx context.Context, id int64) (*models.Message, error) {
	message, err := s.store.GetMessageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, nil
	}

	if _, err := s.store.DeleteMessage(ctx, id); err != nil {
		return nil, err
	}
	return message, nil
}

// Update overwrites the text of an existing message and returns the
// refreshed entity. Author and posted time are immutable.
func (s *MessageService) Update(ctx context.Context, id int64, text string) (*models.Message, error) {
	existing, err := s.store.GetMessageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrMessageNotFound
	}
	if !validText(text) {
		return nil, ErrInvalidText
	}

	if err := s.store.UpdateMessageText(ctx, id, text); err != nil {
		return nil, err
	}

	// The row can vanish between the update and the re-fetch if a delete
	// races in; report it as missing rather than handing back nil.
	updated, err := s.store.GetMessageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrMessageNotFound
	}
	return updated, nil
}

// GetAllByAuthor retrieves all messages posted by the given account.
// Returns an empty slice for an author with none.
func (s *MessageService) GetAllByAuthor(ctx context.Context, authorID int64) ([]models.Message, error) {
	return s.store.GetMessagesByAuthor(ctx, authorID)
}
