package handler

import (
	"net/http"
	"strconv"

	"syndicateiq/internal/events"
)

// NotificationHandler exposes the in-memory notification feed.
type NotificationHandler struct {
	feed *events.Feed
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(feed *events.Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// RegisterRoutes registers notification routes.
func (h *NotificationHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /api/notifications", authMw(http.HandlerFunc(h.List)))
	mux.Handle("DELETE /api/notifications", authMw(http.HandlerFunc(h.Clear)))
}

// List handles GET /api/notifications?limit=N
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	JSON(w, http.StatusOK, map[string]any{"notifications": h.feed.Recent(limit)})
}

// Clear handles DELETE /api/notifications
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.feed.Clear()
	w.WriteHeader(http.StatusNoContent)
}
