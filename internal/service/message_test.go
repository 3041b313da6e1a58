package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chatter-api/chatter/internal/models"
	"github.com/chatter-api/chatter/internal/store"
)

func registerAuthor(t *testing.T, svc *AccountService) *models.Account {
	t.Helper()
	account, err := svc.Register(context.Background(), "alice", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	return account
}

func TestCreateMessageTextBounds(t *testing.T) {
	s := newTestStore(t)
	author := registerAuthor(t, NewAccountService(s))
	svc := NewMessageService(s)
	ctx := context.Background()

	if _, err := svc.Create(ctx, author.ID, "", 1700000000); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText for empty text, got %v", err)
	}
	if _, err := svc.Create(ctx, author.ID, strings.Repeat("x", 256), 1700000000); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText for 256 chars, got %v", err)
	}

	msg, err := svc.Create(ctx, author.ID, strings.Repeat("x", 255), 1700000000)
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID <= 0 {
		t.Fatalf("expected positive id, got %d", msg.ID)
	}
}

func TestCreateMessageTextBoundsMultibyte(t *testing.T) {
	s := newTestStore(t)
	author := registerAuthor(t, NewAccountService(s))
	svc := NewMessageService(s)
	ctx := context.Background()

	// 255 characters but 510 bytes; the limit counts characters.
	msg, err := svc.Create(ctx, author.ID, strings.Repeat("é", 255), 1700000000)
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID <= 0 {
		t.Fatalf("expected positive id, got %d", msg.ID)
	}

	if _, err := svc.Create(ctx, author.ID, strings.Repeat("é", 256), 1700000000); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText for 256 chars, got %v", err)
	}
}

func TestCreateMessageUnknownAuthor(t *testing.T) {
	s := newTestStore(t)
	svc := NewMessageService(s)

	_, err := svc.Create(context.Background(), 9999, "hello", 1700000000)
	if !errors.Is(err, ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}

	// The rejected message must not have been persisted.
	all, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("rejected message was persisted: %+v", all)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	author := registerAuthor(t, NewAccountService(s))
	svc := NewMessageService(s)
	ctx := context.Background()

	created, err := svc.Create(ctx, author.ID, "to be deleted", 1700000000)
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := svc.Delete(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if deleted == nil || deleted.ID != created.ID {
		t.Fatalf("expected deleted entity back, got %+v", deleted)
	}

	again, err := svc.Delete(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again != nil {
		t.Fatalf("second delete should be a no-op, got %+v", again)
	}
}

func TestUpdateMessage(t *testing.T) {
	s := newTestStore(t)
	author := registerAuthor(t, NewAccountService(s))
	svc := NewMessageService(s)
	ctx := context.Background()

	created, err := svc.Create(ctx, author.ID, "original", 1700000000)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Update(ctx, created.ID+1, "new text"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, ""); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText, got %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, "new text")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Text != "new text" {
		t.Fatalf("expected updated text, got %q", updated.Text)
	}
	if updated.AuthorID != author.ID || updated.PostedAtEpoch != 1700000000 {
		t.Fatalf("update touched immutable fields: %+v", updated)
	}
}

// racingDeleteStore drops the row as part of the text update, simulating a
// concurrent delete landing between the update and the re-fetch.
type racingDeleteStore struct {
	store.DataStore
}

func (s *racingDeleteStore) UpdateMessageText(ctx context.Context, id int64, text string) error {
	if err := s.DataStore.UpdateMessageText(ctx, id, text); err != nil {
		return err
	}
	_, err := s.DataStore.DeleteMessage(ctx, id)
	return err
}

func TestUpdateMessageDeletedConcurrently(t *testing.T) {
	s := newTestStore(t)
	author := registerAuthor(t, NewAccountService(s))

	created, err := NewMessageService(s).Create(context.Background(), author.ID, "original", 1700000000)
	if err != nil {
		t.Fatal(err)
	}

	svc := NewMessageService(&racingDeleteStore{DataStore: s})
	updated, err := svc.Update(context.Background(), created.ID, "new text")
	if !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound when the row vanishes mid-update, got %v", err)
	}
	if updated != nil {
		t.Fatalf("expected no entity back, got %+v", updated)
	}
}

func TestGetAllByAuthorEmpty(t *testing.T) {
	s := newTestStore(t)
	svc := NewMessageService(s)

	messages, err := svc.GetAllByAuthor(context.Background(), 12345)
	if err != nil {
		t.Fatal(err)
	}
	if messages == nil || len(messages) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", messages)
	}
}
