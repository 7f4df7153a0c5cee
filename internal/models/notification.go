package models

import (
	"encoding/json"
	"time"
)

// Notification types.
const (
	NotificationNewSubmission = "new_submission"
	NotificationNewUser       = "new_user"
	NotificationStatusChange  = "status_change"
	NotificationDemo          = "demo"
	NotificationActivity      = "activity"
)

// RecipientAdmin addresses a notification to every admin session.
const RecipientAdmin = "admin"

// Notification is a bell or legacy admin notification. Read is derived from the
// unread-id list whenever notifications are returned; the stored flag is not trusted.
type Notification struct {
	ID          string          `json:"id"`
	Type        string          `json:"type,omitempty"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	CreatedAt   time.Time       `json:"createdAt"`
	Read        bool            `json:"read"`
	RecipientID string          `json:"recipientId,omitempty"` // empty means everyone
	Data        json.RawMessage `json:"data,omitempty"`
}
