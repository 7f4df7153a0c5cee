// Package localstore is the site's pseudo-database: JSON text blobs stored
// under fixed keys. There are no transactions; every read parses the whole
// blob and every write replaces it.
package localstore

import "context"

// Keys persisted by the site.
const (
	KeyUsers               = "users"
	KeySubmissions         = "submissions"
	KeyColumns             = "columns"
	KeyComments            = "comments"
	KeyActivities          = "activities"
	KeyAdminNotifications  = "adminNotifications"
	KeyBellNotifications   = "aw_notifications"
	KeyUnreadNotifications = "aw_notifications_unread_ids"
	KeyResetTokens         = "resetTokens"
	KeyNewsletter          = "newsletter_subscribers"
	KeyTotalViews          = "totalViews"

	// Broadcast notification id to the ids of users who have read it.
	KeyNotificationReceipts = "aw_notifications_read_by"
)

// ViewsKey returns the per-page view counter key.
func ViewsKey(page string) string {
	return "views_" + page
}

// Store reads and writes raw JSON text by key.
type Store interface {
	// Get returns the stored text and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
