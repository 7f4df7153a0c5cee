package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/models"
)

type recordingPublisher struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (p *recordingPublisher) PublishNotification(n models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sequence(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

type fixture struct {
	store         *localstore.MemoryStore
	clock         *clock
	publisher     *recordingPublisher
	activities    *ActivityService
	notifications *NotificationService
	auth          *AuthService
	submissions   *SubmissionService
	columns       *ColumnService
	search        *SearchService
	engagement    *EngagementService
}

var testAdmin = AdminAccount{Login: "admin", Password: "awakened2024", Email: "editor@example.com"}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     localstore.NewMemoryStore(),
		clock:     &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		publisher: &recordingPublisher{},
	}

	f.activities = NewActivityService(f.store)
	f.activities.now = f.clock.Now

	f.notifications = NewNotificationService(f.store, f.publisher, nil)
	f.notifications.now = f.clock.Now
	f.notifications.newID = sequence("n")

	f.auth = NewAuthService(f.store, f.notifications, f.activities, nil, testAdmin)
	f.auth.now = f.clock.Now
	f.auth.newID = sequence("u")

	f.submissions = NewSubmissionService(f.store, f.notifications, f.activities, nil)
	f.submissions.now = f.clock.Now
	f.submissions.newID = sequence("s")

	f.columns = NewColumnService(f.store, f.activities)
	f.columns.now = f.clock.Now
	f.columns.newID = sequence("c")

	f.search = NewSearchService(f.store, nil)

	f.engagement = NewEngagementService(f.store, f.columns, f.activities)
	f.engagement.now = f.clock.Now
	f.engagement.newID = sequence("m")
	return f
}

func adminSession() auth.Session {
	return auth.Session{UserID: adminUserID, Name: "Admin", Email: testAdmin.Email, Role: models.RoleAdmin}
}

func writerSession(id, name string) auth.Session {
	return auth.Session{UserID: id, Name: name, Email: id + "@example.com", Role: models.RoleContributor}
}
