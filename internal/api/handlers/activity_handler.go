package handlers

import (
	"net/http"
	"strconv"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/services"
)

// ActivityHandler handles HTTP requests for the admin activity feed.
type ActivityHandler struct {
	service services.ActivityServiceProvider
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(service services.ActivityServiceProvider) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// GetRecent handles the request to get recent activity. Admin only.
func (h *ActivityHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	if !auth.FromContext(r.Context()).IsAdmin() {
		writeError(w, services.ErrAccessDenied, "Failed to retrieve activities")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10 // Default limit
	}

	activities, err := h.service.GetRecentActivities(r.Context(), limit)
	if err != nil {
		writeError(w, err, "Failed to retrieve activities")
		return
	}
	writeJSON(w, http.StatusOK, activities)
}
