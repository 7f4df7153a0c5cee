package handlers

import (
	"net/http"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/services"
)

// NotificationHandler serves the bell list and the legacy admin list.
type NotificationHandler struct {
	service services.NotificationServiceProvider
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service services.NotificationServiceProvider) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// MarkReadPayload is the body of POST /api/notifications/mark-read.
type MarkReadPayload struct {
	IDs []string `json:"ids"`
}

// List returns the caller's bell notifications with read state.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to retrieve notifications")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// MarkRead marks the given ids read for the caller. Ids the caller cannot see are ignored.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var payload MarkReadPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.service.MarkRead(r.Context(), auth.FromContext(r.Context()), payload.IDs); err != nil {
		writeError(w, err, "Failed to mark notifications read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// MarkAllRead clears every notification the caller can see.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllRead(r.Context(), auth.FromContext(r.Context())); err != nil {
		writeError(w, err, "Failed to mark notifications read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// UnreadCount returns the badge number.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to count notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// AdminList returns the legacy admin notification list. Admin only.
func (h *NotificationHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.AdminNotifications(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to retrieve admin notifications")
		return
	}
	writeJSON(w, http.StatusOK, items)
}
