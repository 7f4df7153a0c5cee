package models

import "time"

// ColumnPublished is the only state a column is ever stored in.
const ColumnPublished = "published"

// Column is a published article. SubmissionID is a back-reference, not ownership:
// columns published directly by the editor have none.
type Column struct {
	ID           string    `json:"id"`
	SubmissionID *string   `json:"submissionId,omitempty"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Status       string    `json:"status"`
	AuthorName   string    `json:"authorName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	PublishedAt  time.Time `json:"publishedAt"`
}
