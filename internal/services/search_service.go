package services

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/metrics"
	"github.com/awakenedyouth/awakened-be/internal/models"
)

// Document kinds in the search corpus.
const (
	DocumentPage   = "page"
	DocumentColumn = "column"
)

const (
	maxSearchResults = 8
	snippetMax       = 120
	snippetBefore    = 50
	snippetAfter     = 70
)

// Document is one searchable page or column.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Type    string `json:"type"`
}

// SearchResult is a scored document with a snippet around the first match.
type SearchResult struct {
	Document
	Score   int    `json:"score"`
	Snippet string `json:"snippet"`
}

var staticPages = []Document{
	{
		ID:      "home",
		Title:   "The Awakened Youth - Home",
		Content: "Awakening hearts, guiding youth, and finding purpose through Islam. As a new Islamic writer, I aim to gently remind hearts especially the youth of the beauty and guidance found in Islam.",
		URL:     "index.html",
		Type:    DocumentPage,
	},
	{
		ID:      "about",
		Title:   "About the Writer",
		Content: "I am a beginner Islamic writer who hopes to remind people especially the youth of the beautiful teachings and guidance that Islam offers us in every aspect of life. My journey as a writer began with a simple desire to share the peace, purpose, and clarity that I have found through Islam.",
		URL:     "about.html",
		Type:    DocumentPage,
	},
	{
		ID:      "contact",
		Title:   "Contact Me",
		Content: "I would love to hear from you! Whether you have feedback, questions, suggestions for future columns, or simply want to share your thoughts, please don't hesitate to reach out.",
		URL:     "contact.html",
		Type:    DocumentPage,
	},
	{
		ID:      "feedback",
		Title:   "Feedback & Questions",
		Content: "Welcome to the Feedback & Questions page! Here you can ask questions, share your thoughts, or provide feedback about the content. Your approved questions and my responses will be displayed for the benefit of all visitors.",
		URL:     "feedback.html",
		Type:    DocumentPage,
	},
}

// SearchServiceProvider defines the interface for site search.
type SearchServiceProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// SearchService scores the static pages and published columns against a query.
type SearchService struct {
	store   localstore.Store
	metrics *metrics.Metrics
}

// NewSearchService creates a new SearchService.
func NewSearchService(store localstore.Store, m *metrics.Metrics) *SearchService {
	return &SearchService{store: store, metrics: m}
}

func (s *SearchService) corpus(ctx context.Context) ([]Document, error) {
	columns, err := localstore.LoadList[models.Column](ctx, s.store, localstore.KeyColumns)
	if err != nil {
		return nil, err
	}
	docs := append([]Document{}, staticPages...)
	for _, c := range columns {
		if c.Status != models.ColumnPublished {
			continue
		}
		docs = append(docs, Document{
			ID:      c.ID,
			Title:   c.Title,
			Content: StripMarkdown(c.Content),
			URL:     "column.html?id=" + c.ID,
			Type:    DocumentColumn,
		})
	}
	return docs, nil
}

// Search returns up to eight matching documents, best first.
func (s *SearchService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []SearchResult{}, nil
	}
	docs, err := s.corpus(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.Search()
	return rank(docs, terms), nil
}

func rank(docs []Document, terms []string) []SearchResult {
	results := make([]SearchResult, 0)
	for _, doc := range docs {
		if score := scoreDocument(doc, terms); score > 0 {
			results = append(results, SearchResult{Document: doc, Score: score, Snippet: snippet(doc.Content, terms)})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Type == DocumentColumn && results[j].Type != DocumentColumn
	})
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results
}

func scoreDocument(doc Document, terms []string) int {
	title := strings.ToLower(doc.Title)
	content := strings.ToLower(doc.Content)
	score := 0
	for _, term := range terms {
		if title == term {
			score += 10
		} else if strings.Contains(title, term) {
			score += 5
		}
		if strings.Contains(content, term) {
			score += 2
		}
	}
	return score
}

// snippet cuts a window around the first term found in content, counted in runes.
func snippet(content string, terms []string) string {
	runes := []rune(content)
	lower := []rune(strings.ToLower(content))
	out := content
	// Lowercasing can change rune counts for a few scripts; fall back to the prefix then.
	if len(lower) == len(runes) {
		for _, term := range terms {
			idx := runeIndex(lower, []rune(term))
			if idx == -1 {
				continue
			}
			start := max(0, idx-snippetBefore)
			end := min(len(runes), idx+snippetAfter)
			out = string(runes[start:end])
			if start > 0 {
				out = "..." + out
			}
			if end < len(runes) {
				out += "..."
			}
			break
		}
	}
	if utf8.RuneCountInString(out) > snippetMax {
		out = string([]rune(out)[:snippetMax]) + "..."
	}
	return out
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
