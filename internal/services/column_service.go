package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/rs/zerolog/log"
)

// ColumnInput is the payload for publishing a column directly.
type ColumnInput struct {
	Title      string `json:"title" validate:"required,max=200"`
	Content    string `json:"content" validate:"required"`
	AuthorName string `json:"authorName" validate:"max=100"`
}

// ColumnServiceProvider defines the interface for reading and publishing columns.
type ColumnServiceProvider interface {
	ListPublished(ctx context.Context) ([]models.Column, error)
	Latest(ctx context.Context, n int) ([]models.Column, error)
	GetColumn(ctx context.Context, id string) (models.Column, error)
	CreateColumn(ctx context.Context, session auth.Session, in ColumnInput) (models.Column, error)
}

// ColumnService serves the published column list.
type ColumnService struct {
	store      localstore.Store
	activities ActivityServiceProvider
	now        func() time.Time
	newID      func() string
}

// NewColumnService creates a new ColumnService.
func NewColumnService(store localstore.Store, activities ActivityServiceProvider) *ColumnService {
	return &ColumnService{store: store, activities: activities, now: time.Now, newID: newID}
}

// ListPublished returns published columns, newest first.
func (s *ColumnService) ListPublished(ctx context.Context) ([]models.Column, error) {
	columns, err := localstore.LoadList[models.Column](ctx, s.store, localstore.KeyColumns)
	if err != nil {
		return nil, err
	}
	published := make([]models.Column, 0, len(columns))
	for _, c := range columns {
		if c.Status == models.ColumnPublished {
			published = append(published, c)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].CreatedAt.After(published[j].CreatedAt)
	})
	return published, nil
}

// Latest returns at most n of the newest published columns.
func (s *ColumnService) Latest(ctx context.Context, n int) ([]models.Column, error) {
	published, err := s.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(published) > n {
		published = published[:n]
	}
	return published, nil
}

// GetColumn returns a published column by id.
func (s *ColumnService) GetColumn(ctx context.Context, id string) (models.Column, error) {
	columns, err := localstore.LoadList[models.Column](ctx, s.store, localstore.KeyColumns)
	if err != nil {
		return models.Column{}, err
	}
	for _, c := range columns {
		if c.ID == id && c.Status == models.ColumnPublished {
			return c, nil
		}
	}
	return models.Column{}, fmt.Errorf("column %s: %w", id, ErrNotFound)
}

// CreateColumn publishes a column that has no submission behind it. Admin only.
func (s *ColumnService) CreateColumn(ctx context.Context, session auth.Session, in ColumnInput) (models.Column, error) {
	if !session.IsAdmin() {
		return models.Column{}, fmt.Errorf("create column: %w", ErrAccessDenied)
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return models.Column{}, err
	}
	if in.AuthorName == "" {
		in.AuthorName = session.Name
	}

	now := s.now().UTC()
	column := models.Column{
		ID:          s.newID(),
		Title:       in.Title,
		Content:     in.Content,
		Status:      models.ColumnPublished,
		AuthorName:  in.AuthorName,
		CreatedAt:   now,
		UpdatedAt:   now,
		PublishedAt: now,
	}

	unlock := locks.lock(localstore.KeyColumns)
	columns, err := localstore.LoadList[models.Column](ctx, s.store, localstore.KeyColumns)
	if err == nil {
		err = localstore.SaveList(ctx, s.store, localstore.KeyColumns, append(columns, column))
	}
	unlock()
	if err != nil {
		return models.Column{}, err
	}

	log.Info().Str("column_id", column.ID).Msg("Column published directly")
	if err := s.activities.LogActivity(ctx, "column", fmt.Sprintf("New column created: %s", column.Title)); err != nil {
		log.Warn().Err(err).Msg("Failed to log activity")
	}
	return column, nil
}
