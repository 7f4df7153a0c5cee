package handlers

import (
	"net/http"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/services"
	"github.com/go-chi/chi/v5"
)

// EngagementHandler serves the newsletter, view counters and dashboard totals.
type EngagementHandler struct {
	service services.EngagementServiceProvider
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(service services.EngagementServiceProvider) *EngagementHandler {
	return &EngagementHandler{service: service}
}

// Subscribe adds an email to the newsletter list.
func (h *EngagementHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.service.Subscribe(r.Context(), payload.Email); err != nil {
		writeError(w, err, "Failed to subscribe")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Thank you for subscribing!"})
}

// RecordView counts a page view and returns the page's total.
func (h *EngagementHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.RecordView(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		writeError(w, err, "Failed to record view")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"views": views})
}

// Dashboard returns the admin dashboard counters.
func (h *EngagementHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to retrieve dashboard stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
