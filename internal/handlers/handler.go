package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/chatter-api/chatter/internal/service"
	"github.com/chatter-api/chatter/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	accounts *service.AccountService
	messages *service.MessageService
	store    store.DataStore
	redis    *redis.Client
	logger   zerolog.Logger
}

// NewHandler creates a new Handler over the given store. The Redis client
// may be nil when Redis is not configured.
func NewHandler(s store.DataStore, redisClient *redis.Client, logger zerolog.Logger) *Handler {
	return &Handler{
		accounts: service.NewAccountService(s),
		messages: service.NewMessageService(s),
		store:    s,
		redis:    redisClient,
		logger:   logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Empty sends a response with the given status code and no body. The API
// contract communicates all failures through status codes alone.
func (h *Handler) Empty(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

// fail maps a service error to a status code: business-rule failures
// become badStatus with an empty body, anything else is a storage fault
// and becomes 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, badStatus int) {
	if service.IsValidation(err) {
		h.logger.Debug().
			Err(err).
			Str("path", r.URL.Path).
			Msg("request rejected")
		h.Empty(w, badStatus)
		return
	}
	h.logger.Error().
		Err(err).
		Str("path", r.URL.Path).
		Msg("storage fault")
	h.Empty(w, http.StatusInternalServerError)
}

// pathID parses the {id} path parameter as a base-10 integer.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
