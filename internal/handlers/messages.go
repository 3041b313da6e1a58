package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/chatter-api/chatter/internal/metrics"
)

// CreateMessageRequest represents the message creation request body.
type CreateMessageRequest struct {
	AuthorID      int64  `json:"authorId"`
	Text          string `json:"text"`
	PostedAtEpoch int64  `json:"postedAtEpoch"`
}

// UpdateMessageRequest represents the message update request body. Only
// the text is mutable.
type UpdateMessageRequest struct {
	Text string `json:"text"`
}

// CreateMessage handles message creation. The author must be an existing
// account; violations return 400 with an empty body.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Empty(w, http.StatusBadRequest)
		return
	}

	message, err := h.messages.Create(r.Context(), req.AuthorID, req.Text, req.PostedAtEpoch)
	if err != nil {
		h.fail(w, r, err, http.StatusBadRequest)
		return
	}

	metrics.MessagesCreated.Inc()
	h.JSON(w, http.StatusOK, message)
}

// GetAllMessages retrieves every message. The array may be empty, never
// null.
func (h *Handler) GetAllMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.GetAll(r.Context())
	if err != nil {
		h.fail(w, r, err, http.StatusBadRequest)
		return
	}
	h.JSON(w, http.StatusOK, messages)
}

// GetMessageByID retrieves a single message. A missing id still returns
// 200, with an empty body.
func (h *Handler) GetMessageByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.Empty(w, http.StatusBadRequest)
		return
	}

	message, err := h.messages.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, http.StatusBadRequest)
		return
	}
	if message == nil {
		h.Empty(w, http.StatusOK)
		return
	}
	h.JSON(w, http.StatusOK, message)
}

// DeleteMessage removes a message and echoes the removed entity. Deleting
// an absent id is a no-op returning 200 with an empty body, so the
// operation is idempotent.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.Empty(w, http.StatusBadRequest)
		return
	}

	message, err := h.messages.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, http.StatusBadRequest)
		return
	}
	if message == nil {
		h.Empty(w, http.StatusOK)
		return
	}

	metrics.MessagesDeleted.Inc()
	h.JSON(w, http.StatusOK, message)
}

// UpdateMessage overwrites a message's text and returns the refreshed
// entity. Missing id or invalid text returns 400 with an empty body.
func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.Empty(w, http.StatusBadRequest)
		return
	}

	var req UpdateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Empty(w, http.StatusBadRequest)
		return
	}

	message, err := h.messages.Update(r.Context(), id, req.Text)
	if err != nil {
		h.fail(w, r, err, http.StatusBadRequest)
		return
	}

	metrics.MessagesUpdated.Inc()
	h.JSON(w, http.StatusOK, message)
}

// GetMessagesByAccount retrieves all messages posted by the given account,
// an empty array when it has none.
func (h *Handler) GetMessagesByAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.Empty(w, http.StatusBadRequest)
		return
	}

	messages, err := h.messages.GetAllByAuthor(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, http.StatusBadRequest)
		return
	}
	h.JSON(w, http.StatusOK, messages)
}
