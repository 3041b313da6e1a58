package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chatter-api/chatter/internal/metrics"
	"github.com/chatter-api/chatter/internal/service"
)

// CredentialsRequest represents the registration and login request body.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles account registration. Success returns the created
// account including its generated id; any rule violation returns 400 with
// an empty body.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Empty(w, http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err, http.StatusBadRequest)
		return
	}

	metrics.AccountsRegistered.Inc()
	h.JSON(w, http.StatusOK, account)
}

// Login verifies a username/password pair. A failed match returns 401 with
// an empty body.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Empty(w, http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.Logins.WithLabelValues("failure").Inc()
			h.Empty(w, http.StatusUnauthorized)
			return
		}
		h.fail(w, r, err, http.StatusUnauthorized)
		return
	}

	metrics.Logins.WithLabelValues("success").Inc()
	h.JSON(w, http.StatusOK, account)
}
