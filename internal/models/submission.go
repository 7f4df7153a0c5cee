package models

import "time"

// Submission states.
const (
	SubmissionDraft    = "draft"
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// ValidSubmissionStatus reports whether s is one of the workflow states.
func ValidSubmissionStatus(s string) bool {
	switch s {
	case SubmissionDraft, SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	}
	return false
}

// Submission is a contributor-authored column draft moving through editorial review.
type Submission struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Status        string     `json:"status"`
	AuthorID      string     `json:"authorId"`
	AuthorName    string     `json:"authorName"`
	AuthorEmail   string     `json:"authorEmail"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	SubmittedAt   *time.Time `json:"submittedAt"`
	AdminFeedback *string    `json:"adminFeedback"`
	ReviewedAt    *time.Time `json:"reviewedAt"`
	ReviewedBy    *string    `json:"reviewedBy"`
}

// Statistics counts submissions per state.
type Statistics struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Drafts   int `json:"drafts"`
}
