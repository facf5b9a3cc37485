package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	howdyAnswer   = "partner"
	detailsAnswer = "Your requested details"
)

// Handler serves the query endpoints of the service.
type Handler struct {
	role    string
	clock   func() time.Time
	started time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithRole reports the environment role in health responses.
func WithRole(role string) HandlerOption {
	return func(h *Handler) {
		h.role = role
	}
}

// NewHandler constructs a Handler.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.started = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	now := h.clock()
	resp := healthResponse{
		Status:    "ok",
		Role:      h.role,
		Timestamp: now,
		Uptime:    now.Sub(h.started).String(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHowdy(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, howdyResponse{Howdy: howdyAnswer})
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, detailsResponse{Details: detailsAnswer})
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type howdyResponse struct {
	Howdy string `json:"howdy"`
}

type detailsResponse struct {
	Details string `json:"details"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Role      string    `json:"role,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}
