package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/awakenedyouth/awakened-be/internal/services"
)

// minQueryLength is the shortest query worth searching for.
const minQueryLength = 2

// SearchHandler handles site search requests.
type SearchHandler struct {
	service services.SearchServiceProvider
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service services.SearchServiceProvider) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search answers ?q= with up to eight ranked results.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(query) < minQueryLength {
		writeJSON(w, http.StatusOK, []services.SearchResult{})
		return
	}

	results, err := h.service.Search(r.Context(), query)
	if err != nil {
		writeError(w, err, "Failed to search")
		return
	}
	writeJSON(w, http.StatusOK, results)
}
