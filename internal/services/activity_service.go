package services

import (
	"context"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/models"
)

// maxActivities is how many feed entries are kept.
const maxActivities = 50

// ActivityServiceProvider defines the interface for activity feed services.
type ActivityServiceProvider interface {
	LogActivity(ctx context.Context, activityType, message string) error
	GetRecentActivities(ctx context.Context, limit int) ([]models.Activity, error)
}

// ActivityService records the admin dashboard activity feed.
type ActivityService struct {
	store localstore.Store
	now   func() time.Time
}

// NewActivityService creates a new ActivityService.
func NewActivityService(store localstore.Store) *ActivityService {
	return &ActivityService{store: store, now: time.Now}
}

// LogActivity appends an entry, dropping the oldest beyond maxActivities.
func (s *ActivityService) LogActivity(ctx context.Context, activityType, message string) error {
	defer locks.lock(localstore.KeyActivities)()

	activities, err := localstore.LoadList[models.Activity](ctx, s.store, localstore.KeyActivities)
	if err != nil {
		return err
	}
	activities = append(activities, models.Activity{
		Type:      activityType,
		Message:   message,
		Timestamp: s.now().UnixMilli(),
	})
	if len(activities) > maxActivities {
		activities = activities[len(activities)-maxActivities:]
	}
	return localstore.SaveList(ctx, s.store, localstore.KeyActivities, activities)
}

// GetRecentActivities returns up to limit entries, newest first.
func (s *ActivityService) GetRecentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	activities, err := localstore.LoadList[models.Activity](ctx, s.store, localstore.KeyActivities)
	if err != nil {
		return nil, err
	}
	recent := make([]models.Activity, 0, len(activities))
	for i := len(activities) - 1; i >= 0 && (limit <= 0 || len(recent) < limit); i-- {
		recent = append(recent, activities[i])
	}
	return recent, nil
}
