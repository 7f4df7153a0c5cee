// Package notify is the bell client: a local cache of notifications and unread ids
// kept in step with the server over HTTP, fed by a push or polling transport.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Server routes.
const (
	ListPath     = "/api/notifications"
	MarkReadPath = "/api/notifications/mark-read"
)

// ErrServer is returned when the server answers with a non-2xx status.
var ErrServer = errors.New("notification server error")

// Client mirrors the bell notifications in a local store. The unread-id list is the
// only read state; Notifications derives each item's Read flag from it.
type Client struct {
	http  *resty.Client
	cache localstore.Store
	now   func() time.Time

	mu sync.Mutex
}

// NewClient creates a client for the server at baseURL caching into cache. token,
// when set, is sent as a bearer token.
func NewClient(baseURL, token string, cache localstore.Store) *Client {
	h := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		h.SetAuthToken(token)
	}
	return &Client{http: h, cache: cache, now: time.Now}
}

// List fetches the server's notification list without touching the cache.
func (c *Client) List(ctx context.Context) ([]models.Notification, error) {
	var items []models.Notification
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&items).
		Get(ListPath)
	if err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching notifications: %w: %s", ErrServer, resp.Status())
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

// Fetch refreshes the cache from the server. On success the cache is replaced and the
// server's unread ids are merged into the local ones. On failure the cache is kept, or
// seeded from local activity when empty; the error is logged, never returned.
func (c *Client) Fetch(ctx context.Context) {
	items, err := c.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("Notification fetch failed, using local notifications")
		if ferr := c.fallback(ctx); ferr != nil {
			log.Error().Err(ferr).Msg("Failed to build local notifications")
		}
		return
	}

	unread, err := c.loadUnread(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read unread notification ids")
		return
	}
	for _, n := range items {
		if !n.Read {
			unread = appendMissing(unread, n.ID)
		}
	}
	if err := localstore.SaveList(ctx, c.cache, localstore.KeyBellNotifications, items); err != nil {
		log.Error().Err(err).Msg("Failed to cache notifications")
		return
	}
	if err := c.saveUnread(ctx, unread); err != nil {
		log.Error().Err(err).Msg("Failed to cache unread notification ids")
	}
}

// fallback seeds an empty cache from the newest column, the comment count, or a welcome note.
func (c *Client) fallback(ctx context.Context) error {
	cached, err := localstore.LoadList[models.Notification](ctx, c.cache, localstore.KeyBellNotifications)
	if err != nil {
		return err
	}
	if len(cached) > 0 {
		return nil
	}

	generated, err := c.generate(ctx)
	if err != nil {
		return err
	}
	if err := localstore.SaveList(ctx, c.cache, localstore.KeyBellNotifications, generated); err != nil {
		return err
	}
	ids := make([]string, 0, len(generated))
	for _, n := range generated {
		ids = append(ids, n.ID)
	}
	return c.saveUnread(ctx, ids)
}

func (c *Client) generate(ctx context.Context) ([]models.Notification, error) {
	now := c.now().UTC()
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	var out []models.Notification

	columns, err := localstore.LoadList[models.Column](ctx, c.cache, localstore.KeyColumns)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		latest := columns[len(columns)-1]
		createdAt := latest.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		out = append(out, models.Notification{
			ID:        "col_" + latest.ID,
			Type:      models.NotificationActivity,
			Title:     "New Column Published",
			Body:      fmt.Sprintf("%q has been published successfully.", latest.Title),
			CreatedAt: createdAt,
		})
	}

	comments, err := localstore.LoadList[models.Comment](ctx, c.cache, localstore.KeyComments)
	if err != nil {
		return nil, err
	}
	if n := len(comments); n > 0 {
		plural := "s"
		if n == 1 {
			plural = ""
		}
		out = append(out, models.Notification{
			ID:        "comment_" + stamp,
			Type:      models.NotificationActivity,
			Title:     "New Comments",
			Body:      fmt.Sprintf("You have %d new comment%s on your columns.", n, plural),
			CreatedAt: now.Add(-time.Hour),
		})
	}

	if len(out) == 0 {
		out = append(out, models.Notification{
			ID:        "welcome_" + stamp,
			Type:      models.NotificationActivity,
			Title:     "Welcome to The Awakened Youth",
			Body:      "Start creating inspiring Islamic content for your readers.",
			CreatedAt: now,
		})
	}
	return out, nil
}

// MarkRead removes ids from the unread set immediately, then tells the server. If the
// server rejects the request the removed ids are restored; otherwise the cache is refetched.
func (c *Client) MarkRead(ctx context.Context, ids []string) error {
	c.mu.Lock()
	unread, err := c.loadUnread(ctx)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		if contains(unread, id) {
			removed = append(removed, id)
		}
	}
	err = c.saveUnread(ctx, without(unread, ids))
	c.mu.Unlock()
	if err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string][]string{"ids": ids}).
		Post(MarkReadPath)
	if err == nil && resp.IsError() {
		err = fmt.Errorf("%w: %s", ErrServer, resp.Status())
	}
	if err != nil {
		c.revert(ctx, removed)
		return fmt.Errorf("marking notifications read: %w", err)
	}

	c.Fetch(ctx)
	return nil
}

func (c *Client) revert(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	unread, err := c.loadUnread(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to restore unread notification ids")
		return
	}
	for _, id := range ids {
		unread = appendMissing(unread, id)
	}
	if err := c.saveUnread(ctx, unread); err != nil {
		log.Error().Err(err).Msg("Failed to restore unread notification ids")
	}
}

// Deliver puts a pushed notification at the head of the cache. Notifications already
// cached are ignored.
func (c *Client) Deliver(n models.Notification) {
	ctx := context.Background()
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := localstore.LoadList[models.Notification](ctx, c.cache, localstore.KeyBellNotifications)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read cached notifications")
		return
	}
	for _, existing := range items {
		if existing.ID == n.ID {
			return
		}
	}
	if err := localstore.SaveList(ctx, c.cache, localstore.KeyBellNotifications, append([]models.Notification{n}, items...)); err != nil {
		log.Error().Err(err).Msg("Failed to cache notification")
		return
	}
	if n.Read {
		return
	}
	unread, err := c.loadUnread(ctx)
	if err == nil {
		err = c.saveUnread(ctx, appendMissing(unread, n.ID))
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to mark notification unread")
	}
}

// Notifications returns the cached notifications with Read derived from the unread set.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := localstore.LoadList[models.Notification](ctx, c.cache, localstore.KeyBellNotifications)
	if err != nil {
		return nil, err
	}
	unread, err := c.loadUnread(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Read = !contains(unread, items[i].ID)
	}
	return items, nil
}

// BadgeCount is the number of cached notifications that are unread.
func (c *Client) BadgeCount(ctx context.Context) (int, error) {
	items, err := c.Notifications(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range items {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// BadgeLabel formats count for the bell badge. Zero hides the badge.
func BadgeLabel(count int) string {
	switch {
	case count <= 0:
		return ""
	case count > 99:
		return "99+"
	default:
		return strconv.Itoa(count)
	}
}

func (c *Client) loadUnread(ctx context.Context) ([]string, error) {
	return localstore.LoadList[string](ctx, c.cache, localstore.KeyUnreadNotifications)
}

func (c *Client) saveUnread(ctx context.Context, ids []string) error {
	return localstore.SaveList(ctx, c.cache, localstore.KeyUnreadNotifications, ids)
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func appendMissing(list []string, id string) []string {
	if contains(list, id) {
		return list
	}
	return append(list, id)
}

func without(list, ids []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if !contains(ids, v) {
			out = append(out, v)
		}
	}
	return out
}
