package handlers

import (
	"net/http"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/services"
	"github.com/go-chi/chi/v5"
)

// SubmissionHandler handles HTTP requests for the submission workflow.
type SubmissionHandler struct {
	service services.SubmissionServiceProvider
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(service services.SubmissionServiceProvider) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// StatusPayload is the body of a status transition request.
type StatusPayload struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

// GetAll lists every submission, or those in ?status=. Admin only.
func (h *SubmissionHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	var err error
	var result interface{}
	if status := r.URL.Query().Get("status"); status != "" {
		result, err = h.service.GetSubmissionsByStatus(r.Context(), session, status)
	} else {
		result, err = h.service.GetAllSubmissions(r.Context(), session)
	}
	if err != nil {
		writeError(w, err, "Failed to retrieve submissions")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetMine lists the caller's own submissions.
func (h *SubmissionHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.GetUserSubmissions(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to retrieve submissions")
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// Stats returns per-status counts. Admin only.
func (h *SubmissionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStatistics(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to retrieve submission statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Create stores a new submission for the caller.
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload services.SubmissionInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	sub, err := h.service.CreateSubmission(r.Context(), auth.FromContext(r.Context()), payload)
	if err != nil {
		writeError(w, err, "Failed to create submission")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// Get returns one submission to its author or an admin.
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.GetSubmission(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to retrieve submission")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Update merges the provided fields into a submission.
func (h *SubmissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload services.SubmissionPatch
	if !decodeJSON(w, r, &payload) {
		return
	}
	sub, err := h.service.UpdateSubmission(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err, "Failed to update submission")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// UpdateStatus applies a workflow transition.
func (h *SubmissionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload StatusPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	sub, err := h.service.UpdateSubmissionStatus(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), payload.Status, payload.Feedback)
	if err != nil {
		writeError(w, err, "Failed to update submission status")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Delete removes a submission and any column published from it.
func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSubmission(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "Failed to delete submission")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
