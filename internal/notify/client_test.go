package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	mu       sync.Mutex
	items    []models.Notification
	failList bool
	failMark bool
	marked   [][]string
}

func (s *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(ListPath, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failList {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.items)
	})
	mux.HandleFunc(MarkReadPath, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failMark {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		var body struct {
			IDs []string `json:"ids"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		s.marked = append(s.marked, body.IDs)
		for i := range s.items {
			for _, id := range body.IDs {
				if s.items[i].ID == id {
					s.items[i].Read = true
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})
	return mux
}

func newTestClient(t *testing.T, s *fakeServer) (*Client, *localstore.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(s.handler())
	t.Cleanup(srv.Close)
	cache := localstore.NewMemoryStore()
	c := NewClient(srv.URL, "", cache)
	c.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return c, cache
}

func unreadIDs(t *testing.T, cache localstore.Store) []string {
	t.Helper()
	ids, err := localstore.LoadList[string](context.Background(), cache, localstore.KeyUnreadNotifications)
	require.NoError(t, err)
	return ids
}

func TestFetchMergesUnread(t *testing.T) {
	s := &fakeServer{items: []models.Notification{
		{ID: "a", Title: "A", Read: false},
		{ID: "b", Title: "B", Read: true},
	}}
	c, cache := newTestClient(t, s)
	ctx := context.Background()

	// "b" was marked unread locally and must survive the merge.
	require.NoError(t, localstore.SaveList(ctx, cache, localstore.KeyUnreadNotifications, []string{"b"}))

	c.Fetch(ctx)
	assert.ElementsMatch(t, []string{"a", "b"}, unreadIDs(t, cache))

	items, err := c.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.False(t, items[1].Read)
}

func TestBadgeCountUsesUnreadSet(t *testing.T) {
	s := &fakeServer{items: []models.Notification{
		{ID: "a", Title: "A", Read: false},
		{ID: "b", Title: "B", Read: true},
	}}
	c, cache := newTestClient(t, s)
	ctx := context.Background()
	c.Fetch(ctx)

	count, err := c.BadgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, c.MarkRead(ctx, []string{"a"}))
	assert.Empty(t, unreadIDs(t, cache))
	assert.Equal(t, [][]string{{"a"}}, s.marked)

	items, err := c.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[1].Title)
	assert.True(t, items[1].Read)
}

func TestMarkReadRevertsOnFailure(t *testing.T) {
	s := &fakeServer{
		items:    []models.Notification{{ID: "a"}, {ID: "b"}},
		failMark: true,
	}
	c, cache := newTestClient(t, s)
	ctx := context.Background()
	c.Fetch(ctx)
	require.ElementsMatch(t, []string{"a", "b"}, unreadIDs(t, cache))

	err := c.MarkRead(ctx, []string{"a"})
	assert.ErrorIs(t, err, ErrServer)
	assert.ElementsMatch(t, []string{"a", "b"}, unreadIDs(t, cache))
}

func TestFetchFailureKeepsCache(t *testing.T) {
	s := &fakeServer{items: []models.Notification{{ID: "a", Title: "Cached"}}}
	c, _ := newTestClient(t, s)
	ctx := context.Background()
	c.Fetch(ctx)

	s.failList = true
	c.Fetch(ctx)

	items, err := c.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Cached", items[0].Title)
}

func TestFetchFailureWelcome(t *testing.T) {
	c, cache := newTestClient(t, &fakeServer{failList: true})
	ctx := context.Background()
	c.Fetch(ctx)

	items, err := c.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Welcome to The Awakened Youth", items[0].Title)
	assert.False(t, items[0].Read)
	assert.Len(t, unreadIDs(t, cache), 1)
}

func TestFetchFailureFromLocalActivity(t *testing.T) {
	c, cache := newTestClient(t, &fakeServer{failList: true})
	ctx := context.Background()
	require.NoError(t, localstore.SaveList(ctx, cache, localstore.KeyColumns, []models.Column{
		{ID: "c1", Title: "Older"},
		{ID: "c2", Title: "Patience"},
	}))
	require.NoError(t, localstore.SaveList(ctx, cache, localstore.KeyComments, []models.Comment{{ID: "m1"}, {ID: "m2"}}))

	c.Fetch(ctx)

	items, err := c.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "col_c2", items[0].ID)
	assert.Equal(t, "New Column Published", items[0].Title)
	assert.Contains(t, items[0].Body, "Patience")
	assert.Equal(t, "You have 2 new comments on your columns.", items[1].Body)

	count, err := c.BadgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDeliver(t *testing.T) {
	c, cache := newTestClient(t, &fakeServer{})
	ctx := context.Background()

	c.Deliver(models.Notification{ID: "x", Title: "First"})
	c.Deliver(models.Notification{ID: "y", Title: "Second"})
	c.Deliver(models.Notification{ID: "x", Title: "Duplicate"})

	items, err := c.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "y", items[0].ID)
	assert.Equal(t, "First", items[1].Title)
	assert.ElementsMatch(t, []string{"x", "y"}, unreadIDs(t, cache))
}

func TestBadgeLabel(t *testing.T) {
	assert.Equal(t, "", BadgeLabel(0))
	assert.Equal(t, "7", BadgeLabel(7))
	assert.Equal(t, "99", BadgeLabel(99))
	assert.Equal(t, "99+", BadgeLabel(100))
}
