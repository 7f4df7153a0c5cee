package handlers

import (
	"net/http"
	"strconv"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/awakenedyouth/awakened-be/internal/services"
	"github.com/go-chi/chi/v5"
)

const (
	excerptLength = 200
	latestDefault = 3
)

// ColumnHandler handles HTTP requests for published columns and their comments.
type ColumnHandler struct {
	columns    services.ColumnServiceProvider
	engagement services.EngagementServiceProvider
}

// NewColumnHandler creates a new ColumnHandler.
func NewColumnHandler(columns services.ColumnServiceProvider, engagement services.EngagementServiceProvider) *ColumnHandler {
	return &ColumnHandler{columns: columns, engagement: engagement}
}

type columnSummary struct {
	models.Column
	Excerpt string `json:"excerpt"`
}

type columnDetail struct {
	models.Column
	HTML string `json:"html"`
}

func summarize(columns []models.Column) []columnSummary {
	out := make([]columnSummary, 0, len(columns))
	for _, c := range columns {
		out = append(out, columnSummary{Column: c, Excerpt: services.Excerpt(c.Content, excerptLength)})
	}
	return out
}

// GetAll lists published columns, newest first.
func (h *ColumnHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	columns, err := h.columns.ListPublished(r.Context())
	if err != nil {
		writeError(w, err, "Failed to retrieve columns")
		return
	}
	writeJSON(w, http.StatusOK, summarize(columns))
}

// Latest lists the newest ?limit= columns (three by default).
func (h *ColumnHandler) Latest(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = latestDefault
	}
	columns, err := h.columns.Latest(r.Context(), limit)
	if err != nil {
		writeError(w, err, "Failed to retrieve columns")
		return
	}
	writeJSON(w, http.StatusOK, summarize(columns))
}

// Get returns one column with its content rendered to sanitized HTML.
func (h *ColumnHandler) Get(w http.ResponseWriter, r *http.Request) {
	column, err := h.columns.GetColumn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to retrieve column")
		return
	}
	writeJSON(w, http.StatusOK, columnDetail{Column: column, HTML: services.RenderMarkdown(column.Content)})
}

// Create publishes a column directly. Admin only.
func (h *ColumnHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload services.ColumnInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	column, err := h.columns.CreateColumn(r.Context(), auth.FromContext(r.Context()), payload)
	if err != nil {
		writeError(w, err, "Failed to create column")
		return
	}
	writeJSON(w, http.StatusCreated, column)
}

// GetComments lists the comments on a column.
func (h *ColumnHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.engagement.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to retrieve comments")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// AddComment stores a reader comment on a column.
func (h *ColumnHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var payload services.CommentInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	comment, err := h.engagement.AddComment(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err, "Failed to add comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
