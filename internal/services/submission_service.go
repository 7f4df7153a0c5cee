package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/metrics"
	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/rs/zerolog/log"
)

// SubmissionInput is the payload for creating a submission.
type SubmissionInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Status  string `json:"status" validate:"omitempty,oneof=draft pending"`
}

// SubmissionPatch carries the fields to merge into a submission. Nil fields are left alone.
type SubmissionPatch struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content" validate:"omitempty,min=1"`
	Status  *string `json:"status"`
}

// SubmissionServiceProvider defines the interface for the editorial workflow.
type SubmissionServiceProvider interface {
	CreateSubmission(ctx context.Context, session auth.Session, in SubmissionInput) (models.Submission, error)
	UpdateSubmission(ctx context.Context, session auth.Session, id string, patch SubmissionPatch) (models.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, session auth.Session, id, status, feedback string) (models.Submission, error)
	DeleteSubmission(ctx context.Context, session auth.Session, id string) error
	GetSubmission(ctx context.Context, session auth.Session, id string) (models.Submission, error)
	GetUserSubmissions(ctx context.Context, session auth.Session) ([]models.Submission, error)
	GetAllSubmissions(ctx context.Context, session auth.Session) ([]models.Submission, error)
	GetSubmissionsByStatus(ctx context.Context, session auth.Session, status string) ([]models.Submission, error)
	GetStatistics(ctx context.Context, session auth.Session) (models.Statistics, error)
}

// SubmissionService moves submissions through draft, pending, approved and rejected,
// publishing a column on approval.
type SubmissionService struct {
	store         localstore.Store
	notifications NotificationServiceProvider
	activities    ActivityServiceProvider
	metrics       *metrics.Metrics
	now           func() time.Time
	newID         func() string
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(store localstore.Store, notifications NotificationServiceProvider, activities ActivityServiceProvider, m *metrics.Metrics) *SubmissionService {
	return &SubmissionService{
		store:         store,
		notifications: notifications,
		activities:    activities,
		metrics:       m,
		now:           time.Now,
		newID:         newID,
	}
}

func (s *SubmissionService) load(ctx context.Context) ([]models.Submission, error) {
	return localstore.LoadList[models.Submission](ctx, s.store, localstore.KeySubmissions)
}

func (s *SubmissionService) save(ctx context.Context, subs []models.Submission) error {
	return localstore.SaveList(ctx, s.store, localstore.KeySubmissions, subs)
}

func indexOfSubmission(subs []models.Submission, id string) int {
	for i := range subs {
		if subs[i].ID == id {
			return i
		}
	}
	return -1
}

// CreateSubmission stores a new submission owned by the session user.
func (s *SubmissionService) CreateSubmission(ctx context.Context, session auth.Session, in SubmissionInput) (models.Submission, error) {
	if !session.IsLoggedIn() {
		return models.Submission{}, fmt.Errorf("create submission: %w", ErrNotAuthenticated)
	}
	in.Title = strings.TrimSpace(in.Title)
	// New submissions start as drafts or go straight to review.
	if in.Status != "" && in.Status != models.SubmissionDraft && in.Status != models.SubmissionPending {
		return models.Submission{}, fmt.Errorf("create submission with status %q: %w", in.Status, ErrInvalidStatus)
	}
	if err := validateInput(in); err != nil {
		return models.Submission{}, err
	}
	if in.Status == "" {
		in.Status = models.SubmissionDraft
	}

	now := s.now().UTC()
	sub := models.Submission{
		ID:          s.newID(),
		Title:       in.Title,
		Content:     in.Content,
		Status:      in.Status,
		AuthorID:    session.UserID,
		AuthorName:  session.Name,
		AuthorEmail: session.Email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if sub.Status == models.SubmissionPending {
		sub.SubmittedAt = timePtr(now)
	}

	unlock := locks.lock(localstore.KeySubmissions)
	subs, err := s.load(ctx)
	if err == nil {
		err = s.save(ctx, append(subs, sub))
	}
	unlock()
	if err != nil {
		return models.Submission{}, err
	}

	s.metrics.Transition(sub.Status)
	log.Info().Str("submission_id", sub.ID).Str("author_id", sub.AuthorID).Str("status", sub.Status).Msg("Submission created")
	if sub.Status == models.SubmissionPending {
		s.notifyNewSubmission(ctx, sub)
	}
	return sub, nil
}

// UpdateSubmission merges patch into the submission. Authors may only set draft or pending
// and may not touch an approved submission. An admin setting approved or rejected is
// handled as a review.
func (s *SubmissionService) UpdateSubmission(ctx context.Context, session auth.Session, id string, patch SubmissionPatch) (models.Submission, error) {
	if err := validateInput(patch); err != nil {
		return models.Submission{}, err
	}
	if patch.Status != nil && !models.ValidSubmissionStatus(*patch.Status) {
		return models.Submission{}, fmt.Errorf("update submission %s: %w", id, ErrInvalidStatus)
	}

	unlock := locks.lock(localstore.KeySubmissions)
	subs, err := s.load(ctx)
	if err != nil {
		unlock()
		return models.Submission{}, err
	}
	idx := indexOfSubmission(subs, id)
	if idx == -1 {
		unlock()
		return models.Submission{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	sub := subs[idx]
	if !session.Owns(sub.AuthorID) && !session.IsAdmin() {
		unlock()
		return models.Submission{}, fmt.Errorf("update submission %s: %w", id, ErrAccessDenied)
	}
	if !session.IsAdmin() {
		if err := checkAuthorPatch(sub, patch); err != nil {
			unlock()
			return models.Submission{}, err
		}
	}

	// Review outcomes go through UpdateSubmissionStatus so they are stamped,
	// published and announced like any other review.
	review := ""
	if patch.Status != nil && isReviewOutcome(*patch.Status) {
		if *patch.Status != sub.Status {
			review = *patch.Status
		}
		patch.Status = nil
	}

	now := s.now().UTC()
	if patch.Title != nil {
		sub.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		sub.Content = *patch.Content
	}
	firstSubmit := false
	previous := sub.Status
	if patch.Status != nil {
		sub.Status = *patch.Status
		if sub.Status == models.SubmissionPending && sub.SubmittedAt == nil {
			sub.SubmittedAt = timePtr(now)
			firstSubmit = true
		}
	}
	sub.UpdatedAt = now
	subs[idx] = sub
	err = s.save(ctx, subs)
	unlock()
	if err != nil {
		return models.Submission{}, err
	}

	if sub.Status != previous {
		s.metrics.Transition(sub.Status)
	}
	if firstSubmit {
		s.notifyNewSubmission(ctx, sub)
	}
	if review != "" {
		return s.UpdateSubmissionStatus(ctx, session, id, review, "")
	}
	return sub, nil
}

func isReviewOutcome(status string) bool {
	return status == models.SubmissionApproved || status == models.SubmissionRejected
}

// checkAuthorPatch enforces what an author may change. Approved submissions are
// locked; otherwise the status may only move between draft and pending, and a
// rejected submission may be sent back to either for revision.
func checkAuthorPatch(sub models.Submission, patch SubmissionPatch) error {
	if sub.Status == models.SubmissionApproved {
		return fmt.Errorf("edit approved submission %s: %w", sub.ID, ErrAccessDenied)
	}
	if patch.Status == nil {
		return nil
	}
	if target := *patch.Status; target != models.SubmissionDraft && target != models.SubmissionPending {
		return fmt.Errorf("set submission %s to %s: %w", sub.ID, target, ErrAccessDenied)
	}
	return nil
}

// UpdateSubmissionStatus applies a workflow transition. The author may only move
// draft to pending; every other move needs an admin. Approval publishes the column.
func (s *SubmissionService) UpdateSubmissionStatus(ctx context.Context, session auth.Session, id, status, feedback string) (models.Submission, error) {
	if !models.ValidSubmissionStatus(status) {
		return models.Submission{}, fmt.Errorf("submission status %q: %w", status, ErrInvalidStatus)
	}

	unlock := locks.lock(localstore.KeySubmissions)
	subs, err := s.load(ctx)
	if err != nil {
		unlock()
		return models.Submission{}, err
	}
	idx := indexOfSubmission(subs, id)
	if idx == -1 {
		unlock()
		return models.Submission{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	sub := subs[idx]

	authorSubmit := session.Owns(sub.AuthorID) && status == models.SubmissionPending && sub.Status == models.SubmissionDraft
	if !authorSubmit && !session.IsAdmin() {
		unlock()
		return models.Submission{}, fmt.Errorf("set submission %s to %s: %w", id, status, ErrAccessDenied)
	}

	now := s.now().UTC()
	sub.Status = status
	sub.UpdatedAt = now
	firstSubmit := false
	if status == models.SubmissionPending && sub.SubmittedAt == nil {
		sub.SubmittedAt = timePtr(now)
		firstSubmit = true
	}
	if session.IsAdmin() {
		sub.ReviewedAt = timePtr(now)
		sub.ReviewedBy = stringPtr(session.Name)
		if feedback = strings.TrimSpace(feedback); feedback != "" {
			sub.AdminFeedback = stringPtr(feedback)
		}
	}
	subs[idx] = sub
	err = s.save(ctx, subs)
	unlock()
	if err != nil {
		return models.Submission{}, err
	}

	s.metrics.Transition(status)
	log.Info().Str("submission_id", sub.ID).Str("status", status).Str("by", session.UserID).Msg("Submission status updated")

	if firstSubmit {
		s.notifyNewSubmission(ctx, sub)
	}
	if status == models.SubmissionApproved {
		if _, err := s.publish(ctx, sub); err != nil {
			return models.Submission{}, err
		}
	}
	if session.IsAdmin() && sub.AuthorID != session.UserID {
		s.notifyStatusChange(ctx, sub)
	}
	return sub, nil
}

// publish derives the column for sub. A column already keyed to sub is returned untouched.
func (s *SubmissionService) publish(ctx context.Context, sub models.Submission) (models.Column, error) {
	defer locks.lock(localstore.KeyColumns)()

	columns, err := localstore.LoadList[models.Column](ctx, s.store, localstore.KeyColumns)
	if err != nil {
		return models.Column{}, err
	}
	for _, c := range columns {
		if c.SubmissionID != nil && *c.SubmissionID == sub.ID {
			return c, nil
		}
	}

	now := s.now().UTC()
	column := models.Column{
		ID:           "sub_" + sub.ID,
		SubmissionID: stringPtr(sub.ID),
		Title:        sub.Title,
		Content:      sub.Content,
		Status:       models.ColumnPublished,
		AuthorName:   sub.AuthorName,
		CreatedAt:    sub.CreatedAt,
		UpdatedAt:    now,
		PublishedAt:  now,
	}
	if err := localstore.SaveList(ctx, s.store, localstore.KeyColumns, append(columns, column)); err != nil {
		return models.Column{}, err
	}

	log.Info().Str("column_id", column.ID).Str("submission_id", sub.ID).Msg("Column published")
	if err := s.activities.LogActivity(ctx, "publish", fmt.Sprintf("Column published: %s", column.Title)); err != nil {
		log.Warn().Err(err).Msg("Failed to log activity")
	}
	return column, nil
}

// DeleteSubmission removes a submission and any column published from it.
func (s *SubmissionService) DeleteSubmission(ctx context.Context, session auth.Session, id string) error {
	unlock := locks.lock(localstore.KeySubmissions)
	subs, err := s.load(ctx)
	if err != nil {
		unlock()
		return err
	}
	idx := indexOfSubmission(subs, id)
	if idx == -1 {
		unlock()
		return fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	sub := subs[idx]
	if !session.Owns(sub.AuthorID) && !session.IsAdmin() {
		unlock()
		return fmt.Errorf("delete submission %s: %w", id, ErrAccessDenied)
	}
	subs = append(subs[:idx], subs[idx+1:]...)
	err = s.save(ctx, subs)
	unlock()
	if err != nil {
		return err
	}
	log.Info().Str("submission_id", id).Str("by", session.UserID).Msg("Submission deleted")

	// A column outlives a later status change, so look it up whatever the status is now.
	defer locks.lock(localstore.KeyColumns)()
	columns, err := localstore.LoadList[models.Column](ctx, s.store, localstore.KeyColumns)
	if err != nil {
		return err
	}
	kept := make([]models.Column, 0, len(columns))
	for _, c := range columns {
		if c.SubmissionID == nil || *c.SubmissionID != sub.ID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(columns) {
		return nil
	}
	if err := localstore.SaveList(ctx, s.store, localstore.KeyColumns, kept); err != nil {
		return err
	}
	if err := s.activities.LogActivity(ctx, "delete", fmt.Sprintf("Column removed: %s", sub.Title)); err != nil {
		log.Warn().Err(err).Msg("Failed to log activity")
	}
	return nil
}

// GetSubmission returns one submission to its author or an admin.
func (s *SubmissionService) GetSubmission(ctx context.Context, session auth.Session, id string) (models.Submission, error) {
	subs, err := s.load(ctx)
	if err != nil {
		return models.Submission{}, err
	}
	idx := indexOfSubmission(subs, id)
	if idx == -1 {
		return models.Submission{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	if !session.Owns(subs[idx].AuthorID) && !session.IsAdmin() {
		return models.Submission{}, fmt.Errorf("read submission %s: %w", id, ErrAccessDenied)
	}
	return subs[idx], nil
}

// GetUserSubmissions returns the session user's own submissions.
func (s *SubmissionService) GetUserSubmissions(ctx context.Context, session auth.Session) ([]models.Submission, error) {
	if !session.IsLoggedIn() {
		return nil, fmt.Errorf("list own submissions: %w", ErrNotAuthenticated)
	}
	return s.filter(ctx, func(sub models.Submission) bool { return sub.AuthorID == session.UserID })
}

// GetAllSubmissions returns every submission. Admin only.
func (s *SubmissionService) GetAllSubmissions(ctx context.Context, session auth.Session) ([]models.Submission, error) {
	if !session.IsAdmin() {
		return nil, fmt.Errorf("list submissions: %w", ErrAccessDenied)
	}
	return s.load(ctx)
}

// GetSubmissionsByStatus returns the submissions in status. Admin only.
func (s *SubmissionService) GetSubmissionsByStatus(ctx context.Context, session auth.Session, status string) ([]models.Submission, error) {
	if !session.IsAdmin() {
		return nil, fmt.Errorf("list %s submissions: %w", status, ErrAccessDenied)
	}
	if !models.ValidSubmissionStatus(status) {
		return nil, fmt.Errorf("submission status %q: %w", status, ErrInvalidStatus)
	}
	return s.filter(ctx, func(sub models.Submission) bool { return sub.Status == status })
}

// GetStatistics counts submissions per status. Admin only.
func (s *SubmissionService) GetStatistics(ctx context.Context, session auth.Session) (models.Statistics, error) {
	if !session.IsAdmin() {
		return models.Statistics{}, fmt.Errorf("submission statistics: %w", ErrAccessDenied)
	}
	subs, err := s.load(ctx)
	if err != nil {
		return models.Statistics{}, err
	}
	stats := models.Statistics{Total: len(subs)}
	for _, sub := range subs {
		switch sub.Status {
		case models.SubmissionPending:
			stats.Pending++
		case models.SubmissionApproved:
			stats.Approved++
		case models.SubmissionRejected:
			stats.Rejected++
		case models.SubmissionDraft:
			stats.Drafts++
		}
	}
	return stats, nil
}

func (s *SubmissionService) filter(ctx context.Context, keep func(models.Submission) bool) ([]models.Submission, error) {
	subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Submission, 0, len(subs))
	for _, sub := range subs {
		if keep(sub) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *SubmissionService) notifyNewSubmission(ctx context.Context, sub models.Submission) {
	log.Info().Str("submission_id", sub.ID).Str("title", sub.Title).Msg("Email sent to admin: new submission for review")
	if _, err := s.notifications.NotifyAdmin(ctx, models.NotificationNewSubmission, "New Column Submission",
		fmt.Sprintf("%s submitted %q for review", sub.AuthorName, sub.Title), sub); err != nil {
		log.Error().Err(err).Str("submission_id", sub.ID).Msg("Failed to notify admin of submission")
	}
	if err := s.activities.LogActivity(ctx, "column", fmt.Sprintf("New submission: %s", sub.Title)); err != nil {
		log.Warn().Err(err).Msg("Failed to log activity")
	}
}

var statusMessages = map[string]string{
	models.SubmissionApproved: "Your column has been approved and published!",
	models.SubmissionRejected: "Your column submission needs revision. Please check the feedback and resubmit.",
	models.SubmissionPending:  "Your column is under review.",
	models.SubmissionDraft:    "Your column has been returned to draft.",
}

func (s *SubmissionService) notifyStatusChange(ctx context.Context, sub models.Submission) {
	body := statusMessages[sub.Status]
	if sub.AdminFeedback != nil {
		body += " Feedback: " + *sub.AdminFeedback
	}
	log.Info().Str("email", sub.AuthorEmail).Str("status", sub.Status).Msg("Email sent to author: submission status updated")
	if _, err := s.notifications.NotifyUser(ctx, sub.AuthorID, models.NotificationStatusChange,
		fmt.Sprintf("%q is now %s", sub.Title, sub.Status), body, sub); err != nil {
		log.Error().Err(err).Str("submission_id", sub.ID).Msg("Failed to notify author of status change")
	}
}
