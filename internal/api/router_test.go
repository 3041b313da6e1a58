package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chatter-api/chatter/internal/models"
	"github.com/chatter-api/chatter/internal/store"
)

// Setup a test server over a fresh temp SQLite database.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	s, err := store.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "chatter-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)

	router := NewRouter(zerolog.Nop(), s, nil, RouterConfig{})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

// Helper: read response body as string
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

// Helper: POST a JSON body
func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// Helper: register an account and decode the response
func register(t *testing.T, ts *httptest.Server, username, password string) models.Account {
	t.Helper()
	resp := postJSON(t, ts.URL+"/register", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register %q: status %d", username, resp.StatusCode)
	}
	var account models.Account
	if err := json.Unmarshal([]byte(readBody(t, resp)), &account); err != nil {
		t.Fatal(err)
	}
	return account
}

// Helper: create a message and decode the response
func createMessage(t *testing.T, ts *httptest.Server, authorID int64, text string) models.Message {
	t.Helper()
	resp := postJSON(t, ts.URL+"/messages", map[string]interface{}{
		"authorId":      authorID,
		"text":          text,
		"postedAtEpoch": 1700000000,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create message: status %d", resp.StatusCode)
	}
	var message models.Message
	if err := json.Unmarshal([]byte(readBody(t, resp)), &message); err != nil {
		t.Fatal(err)
	}
	return message
}

func TestRegister(t *testing.T) {
	ts := setupTestServer(t)

	alice := register(t, ts, "alice", "hunter22")
	if alice.ID <= 0 {
		t.Fatalf("expected positive id, got %d", alice.ID)
	}

	bob := register(t, ts, "bob", "hunter22")
	if bob.ID == alice.ID {
		t.Fatalf("expected distinct ids, both %d", alice.ID)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	ts := setupTestServer(t)

	resp := postJSON(t, ts.URL+"/register", map[string]string{
		"username": "alice",
		"password": "abc",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); body != "" {
		t.Fatalf("expected empty body, got %q", body)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ts := setupTestServer(t)

	register(t, ts, "alice", "hunter22")

	resp := postJSON(t, ts.URL+"/register", map[string]string{
		"username": "alice",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate, got %d", resp.StatusCode)
	}
	readBody(t, resp)
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)

	alice := register(t, ts, "alice", "hunter22")

	resp := postJSON(t, ts.URL+"/login", map[string]string{
		"username": "alice",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var account models.Account
	if err := json.Unmarshal([]byte(readBody(t, resp)), &account); err != nil {
		t.Fatal(err)
	}
	if account.ID != alice.ID {
		t.Fatalf("login returned id %d, registration issued %d", account.ID, alice.ID)
	}

	resp = postJSON(t, ts.URL+"/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); body != "" {
		t.Fatalf("expected empty body, got %q", body)
	}
}

func TestCreateMessageTextBounds(t *testing.T) {
	ts := setupTestServer(t)
	alice := register(t, ts, "alice", "hunter22")

	resp := postJSON(t, ts.URL+"/messages", map[string]interface{}{
		"authorId":      alice.ID,
		"text":          strings.Repeat("x", 256),
		"postedAtEpoch": 1700000000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for 256 chars, got %d", resp.StatusCode)
	}
	readBody(t, resp)

	message := createMessage(t, ts, alice.ID, strings.Repeat("x", 255))
	if message.ID <= 0 {
		t.Fatalf("expected positive message id, got %d", message.ID)
	}
}

func TestCreateMessageUnknownAuthor(t *testing.T) {
	ts := setupTestServer(t)

	resp := postJSON(t, ts.URL+"/messages", map[string]interface{}{
		"authorId":      9999,
		"text":          "hello",
		"postedAtEpoch": 1700000000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown author, got %d", resp.StatusCode)
	}
	readBody(t, resp)
}

func TestGetMissingMessageReturns200Empty(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/messages/424242")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for missing message, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); body != "" {
		t.Fatalf("expected empty body, got %q", body)
	}
}

func TestDeleteTwice(t *testing.T) {
	ts := setupTestServer(t)
	alice := register(t, ts, "alice", "hunter22")
	message := createMessage(t, ts, alice.ID, "to be deleted")

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/messages/%d", ts.URL, message.ID), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var deleted models.Message
	if err := json.Unmarshal([]byte(readBody(t, resp)), &deleted); err != nil {
		t.Fatal(err)
	}
	if deleted.ID != message.ID || deleted.Text != "to be deleted" {
		t.Fatalf("unexpected deleted entity %+v", deleted)
	}

	// Second delete: id is gone, still 200 but with an empty body.
	resp, err = http.DefaultClient.Do(req.Clone(context.Background()))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on second delete, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); body != "" {
		t.Fatalf("expected empty body on second delete, got %q", body)
	}
}

func TestUpdateMessage(t *testing.T) {
	ts := setupTestServer(t)
	alice := register(t, ts, "alice", "hunter22")
	message := createMessage(t, ts, alice.ID, "original")

	data, _ := json.Marshal(map[string]string{"text": "edited"})
	req, _ := http.NewRequest(http.MethodPatch, fmt.Sprintf("%s/messages/%d", ts.URL, message.ID), bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var updated models.Message
	if err := json.Unmarshal([]byte(readBody(t, resp)), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Text != "edited" {
		t.Fatalf("expected edited text, got %q", updated.Text)
	}
	if updated.AuthorID != message.AuthorID || updated.PostedAtEpoch != message.PostedAtEpoch {
		t.Fatalf("update touched immutable fields: %+v", updated)
	}

	// Updating a missing id is a 400.
	req, _ = http.NewRequest(http.MethodPatch, ts.URL+"/messages/424242", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing id, got %d", resp.StatusCode)
	}
	readBody(t, resp)
}

func TestMessagesByAccount(t *testing.T) {
	ts := setupTestServer(t)
	alice := register(t, ts, "alice", "hunter22")
	bob := register(t, ts, "bob", "hunter22")

	createMessage(t, ts, alice.ID, "one")
	createMessage(t, ts, alice.ID, "two")
	createMessage(t, ts, bob.ID, "three")

	resp, err := http.Get(fmt.Sprintf("%s/accounts/%d/messages", ts.URL, alice.ID))
	if err != nil {
		t.Fatal(err)
	}
	var messages []models.Message
	if err := json.Unmarshal([]byte(readBody(t, resp)), &messages); err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages for alice, got %d", len(messages))
	}
	for _, m := range messages {
		if m.AuthorID != alice.ID {
			t.Fatalf("message %d has wrong author %d", m.ID, m.AuthorID)
		}
	}

	// An author with no messages gets an empty array, not null.
	resp, err = http.Get(fmt.Sprintf("%s/accounts/%d/messages", ts.URL, bob.ID+100))
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); strings.TrimSpace(body) != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestGetAllMessages(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/messages")
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); strings.TrimSpace(body) != "[]" {
		t.Fatalf("expected empty array with no messages, got %q", body)
	}

	alice := register(t, ts, "alice", "hunter22")
	createMessage(t, ts, alice.ID, "hello")

	resp, err = http.Get(ts.URL + "/messages")
	if err != nil {
		t.Fatal(err)
	}
	var messages []models.Message
	if err := json.Unmarshal([]byte(readBody(t, resp)), &messages); err != nil {
		t.Fatal(err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
}

func TestMalformedJSON(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Post(ts.URL+"/register", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
	readBody(t, resp)
}

func TestNonNumericPathID(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/messages/abc")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", resp.StatusCode)
	}
	readBody(t, resp)
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, `"status":"healthy"`) {
		t.Fatalf("unexpected health body %q", body)
	}
}

func TestStats(t *testing.T) {
	ts := setupTestServer(t)
	alice := register(t, ts, "alice", "hunter22")
	createMessage(t, ts, alice.ID, "hello")

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	var stats struct {
		Accounts int64 `json:"accounts"`
		Messages int64 `json:"messages"`
	}
	if err := json.Unmarshal([]byte(readBody(t, resp)), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Accounts != 1 || stats.Messages != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
