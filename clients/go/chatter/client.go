// Package chatter provides a client for the chatter social-media API.
package chatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Account mirrors the server's account entity.
type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Message mirrors the server's message entity.
type Message struct {
	ID            int64  `json:"id"`
	AuthorID      int64  `json:"authorId"`
	Text          string `json:"text"`
	PostedAtEpoch int64  `json:"postedAtEpoch"`
}

// APIError reports a non-success response. The API communicates failures
// through status codes alone, so there is no error body to carry.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chatter: server returned status %d", e.StatusCode)
}

// Client is a chatter API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new chatter client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) post(path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}
	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		// Missing entities come back as 200 with an empty body.
		return nil
	}
	return json.Unmarshal(data, out)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account.
func (c *Client) Register(username, password string) (*Account, error) {
	var account Account
	if err := c.post("/register", credentials{username, password}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Login verifies credentials and returns the matched account.
func (c *Client) Login(username, password string) (*Account, error) {
	var account Account
	if err := c.post("/login", credentials{username, password}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateMessage posts a new message.
func (c *Client) CreateMessage(authorID int64, text string, postedAtEpoch int64) (*Message, error) {
	body := Message{AuthorID: authorID, Text: text, PostedAtEpoch: postedAtEpoch}
	var message Message
	if err := c.post("/messages", body, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// Messages retrieves all messages.
func (c *Client) Messages() ([]Message, error) {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+"/messages", nil)
	if err != nil {
		return nil, err
	}
	var messages []Message
	if err := c.do(req, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Message retrieves a single message. Returns (nil, nil) when the id does
// not exist.
func (c *Client) Message(id int64) (*Message, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/messages/%d", c.BaseURL, id), nil)
	if err != nil {
		return nil, err
	}
	var message Message
	if err := c.do(req, &message); err != nil {
		return nil, err
	}
	if message.ID == 0 {
		return nil, nil
	}
	return &message, nil
}

// DeleteMessage removes a message and returns the removed entity, or
// (nil, nil) if it was already absent.
func (c *Client) DeleteMessage(id int64) (*Message, error) {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/messages/%d", c.BaseURL, id), nil)
	if err != nil {
		return nil, err
	}
	var message Message
	if err := c.do(req, &message); err != nil {
		return nil, err
	}
	if message.ID == 0 {
		return nil, nil
	}
	return &message, nil
}

// UpdateMessage overwrites a message's text and returns the refreshed
// entity.
func (c *Client) UpdateMessage(id int64, text string) (*Message, error) {
	data, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPatch, fmt.Sprintf("%s/messages/%d", c.BaseURL, id), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var message Message
	if err := c.do(req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// MessagesByAccount retrieves all messages posted by the given account.
func (c *Client) MessagesByAccount(accountID int64) ([]Message, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/accounts/%d/messages", c.BaseURL, accountID), nil)
	if err != nil {
		return nil, err
	}
	var messages []Message
	if err := c.do(req, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
