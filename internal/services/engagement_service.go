package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/rs/zerolog/log"
)

// CommentInput is a reader comment on a column.
type CommentInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Body string `json:"body" validate:"required,max=2000"`
}

type subscription struct {
	Email string `validate:"required,email"`
}

// EngagementServiceProvider defines the interface for reader-facing counters and comments.
type EngagementServiceProvider interface {
	Subscribe(ctx context.Context, email string) error
	AddComment(ctx context.Context, columnID string, in CommentInput) (models.Comment, error)
	ListComments(ctx context.Context, columnID string) ([]models.Comment, error)
	RecordView(ctx context.Context, page string) (int, error)
	DashboardStats(ctx context.Context, session auth.Session) (models.DashboardStats, error)
}

// EngagementService handles the newsletter list, comments, view counters and dashboard totals.
type EngagementService struct {
	store      localstore.Store
	columns    ColumnServiceProvider
	activities ActivityServiceProvider
	now        func() time.Time
	newID      func() string
}

// NewEngagementService creates a new EngagementService.
func NewEngagementService(store localstore.Store, columns ColumnServiceProvider, activities ActivityServiceProvider) *EngagementService {
	return &EngagementService{store: store, columns: columns, activities: activities, now: time.Now, newID: newID}
}

// Subscribe adds email to the newsletter list.
func (s *EngagementService) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validateInput(subscription{Email: email}); err != nil {
		return err
	}

	defer locks.lock(localstore.KeyNewsletter)()
	subscribers, err := localstore.LoadList[string](ctx, s.store, localstore.KeyNewsletter)
	if err != nil {
		return err
	}
	for _, existing := range subscribers {
		if existing == email {
			return fmt.Errorf("subscribe %s: %w", email, ErrAlreadySubscribed)
		}
	}
	if err := localstore.SaveList(ctx, s.store, localstore.KeyNewsletter, append(subscribers, email)); err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("Newsletter subscription added")
	return nil
}

// AddComment stores a comment on a published column.
func (s *EngagementService) AddComment(ctx context.Context, columnID string, in CommentInput) (models.Comment, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Body = strings.TrimSpace(in.Body)
	if err := validateInput(in); err != nil {
		return models.Comment{}, err
	}
	column, err := s.columns.GetColumn(ctx, columnID)
	if err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		ID:        s.newID(),
		ColumnID:  column.ID,
		Name:      in.Name,
		Body:      in.Body,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	unlock := locks.lock(localstore.KeyComments)
	comments, err := localstore.LoadList[models.Comment](ctx, s.store, localstore.KeyComments)
	if err == nil {
		err = localstore.SaveList(ctx, s.store, localstore.KeyComments, append(comments, comment))
	}
	unlock()
	if err != nil {
		return models.Comment{}, err
	}

	if err := s.activities.LogActivity(ctx, "comment", fmt.Sprintf("%s commented on %s", comment.Name, column.Title)); err != nil {
		log.Warn().Err(err).Msg("Failed to log activity")
	}
	return comment, nil
}

// ListComments returns the comments on columnID in the order they were made.
func (s *EngagementService) ListComments(ctx context.Context, columnID string) ([]models.Comment, error) {
	comments, err := localstore.LoadList[models.Comment](ctx, s.store, localstore.KeyComments)
	if err != nil {
		return nil, err
	}
	out := make([]models.Comment, 0)
	for _, c := range comments {
		if c.ColumnID == columnID {
			out = append(out, c)
		}
	}
	return out, nil
}

// RecordView bumps the page counter and the site total, returning the page count.
func (s *EngagementService) RecordView(ctx context.Context, page string) (int, error) {
	page = strings.TrimSpace(page)
	if page == "" {
		return 0, fmt.Errorf("%w: page is required", ErrInvalidInput)
	}

	key := localstore.ViewsKey(page)
	pageViews, err := s.increment(ctx, key)
	if err != nil {
		return 0, err
	}
	if _, err := s.increment(ctx, localstore.KeyTotalViews); err != nil {
		return 0, err
	}
	return pageViews, nil
}

func (s *EngagementService) increment(ctx context.Context, key string) (int, error) {
	defer locks.lock(key)()
	n, err := localstore.LoadValue[int](ctx, s.store, key)
	if err != nil {
		return 0, err
	}
	n++
	return n, localstore.SaveValue(ctx, s.store, key, n)
}

// DashboardStats totals the site counters for the admin dashboard.
func (s *EngagementService) DashboardStats(ctx context.Context, session auth.Session) (models.DashboardStats, error) {
	if !session.IsAdmin() {
		return models.DashboardStats{}, fmt.Errorf("dashboard stats: %w", ErrAccessDenied)
	}

	var stats models.DashboardStats
	views, err := localstore.LoadValue[int](ctx, s.store, localstore.KeyTotalViews)
	if err != nil {
		return stats, err
	}
	columns, err := localstore.LoadList[models.Column](ctx, s.store, localstore.KeyColumns)
	if err != nil {
		return stats, err
	}
	users, err := localstore.LoadList[models.User](ctx, s.store, localstore.KeyUsers)
	if err != nil {
		return stats, err
	}
	comments, err := localstore.LoadList[models.Comment](ctx, s.store, localstore.KeyComments)
	if err != nil {
		return stats, err
	}
	subs, err := localstore.LoadList[models.Submission](ctx, s.store, localstore.KeySubmissions)
	if err != nil {
		return stats, err
	}

	stats.TotalViews = views
	stats.TotalColumns = len(columns)
	for _, c := range columns {
		if c.Status == models.ColumnPublished {
			stats.PublishedColumns++
		}
	}
	stats.TotalUsers = len(users)
	stats.TotalComments = len(comments)
	for _, sub := range subs {
		switch sub.Status {
		case models.SubmissionDraft:
			stats.DraftColumns++
		case models.SubmissionPending:
			stats.PendingSubmissions++
		}
	}
	return stats, nil
}
