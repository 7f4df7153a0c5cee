package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/metrics"
	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Publisher pushes a freshly created notification to connected clients.
type Publisher interface {
	PublishNotification(n models.Notification)
}

// NotificationServiceProvider defines the interface for notification services.
type NotificationServiceProvider interface {
	NotifyAdmin(ctx context.Context, kind, title, body string, data interface{}) (models.Notification, error)
	NotifyUser(ctx context.Context, userID, kind, title, body string, data interface{}) (models.Notification, error)
	Broadcast(ctx context.Context, kind, title, body string) (models.Notification, error)
	List(ctx context.Context, session auth.Session) ([]models.Notification, error)
	UnreadCount(ctx context.Context, session auth.Session) (int, error)
	MarkRead(ctx context.Context, session auth.Session, ids []string) error
	MarkUnread(ctx context.Context, session auth.Session, ids []string) error
	MarkAllRead(ctx context.Context, session auth.Session) error
	AdminNotifications(ctx context.Context, session auth.Session) ([]models.Notification, error)
}

// NotificationService keeps the legacy admin list, the bell list and the unread-id list.
// Read flags are never stored: they are derived from the unread-id list, plus per-user
// receipts for broadcasts.
type NotificationService struct {
	store     localstore.Store
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
}

// NewNotificationService creates a new NotificationService. publisher may be nil.
func NewNotificationService(store localstore.Store, publisher Publisher, m *metrics.Metrics) *NotificationService {
	return &NotificationService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
		newID:     newID,
	}
}

func (s *NotificationService) build(kind, title, body, recipient string, data interface{}) (models.Notification, error) {
	n := models.Notification{
		ID:          s.newID(),
		Type:        kind,
		Title:       title,
		Body:        body,
		CreatedAt:   s.now().UTC(),
		RecipientID: recipient,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return models.Notification{}, fmt.Errorf("encoding notification data: %w", err)
		}
		n.Data = raw
	}
	return n, nil
}

// NotifyAdmin records n in the legacy admin list and the bell list, unread.
func (s *NotificationService) NotifyAdmin(ctx context.Context, kind, title, body string, data interface{}) (models.Notification, error) {
	n, err := s.build(kind, title, body, models.RecipientAdmin, data)
	if err != nil {
		return models.Notification{}, err
	}

	unlock := locks.lock(localstore.KeyAdminNotifications)
	legacy, err := localstore.LoadList[models.Notification](ctx, s.store, localstore.KeyAdminNotifications)
	if err == nil {
		legacy = append(legacy, n)
		err = localstore.SaveList(ctx, s.store, localstore.KeyAdminNotifications, legacy)
	}
	unlock()
	if err != nil {
		return models.Notification{}, err
	}

	if err := s.pushBell(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// NotifyUser adds an unread bell notification addressed to one user.
func (s *NotificationService) NotifyUser(ctx context.Context, userID, kind, title, body string, data interface{}) (models.Notification, error) {
	n, err := s.build(kind, title, body, userID, data)
	if err != nil {
		return models.Notification{}, err
	}
	if err := s.pushBell(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// Broadcast adds an unread bell notification for everyone.
func (s *NotificationService) Broadcast(ctx context.Context, kind, title, body string) (models.Notification, error) {
	n, err := s.build(kind, title, body, "", nil)
	if err != nil {
		return models.Notification{}, err
	}
	if err := s.pushBell(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// pushBell prepends n to the bell list and its id to the unread list, then publishes it.
func (s *NotificationService) pushBell(ctx context.Context, n models.Notification) error {
	unlock := locks.lock(localstore.KeyBellNotifications)
	defer unlock()

	bell, err := localstore.LoadList[models.Notification](ctx, s.store, localstore.KeyBellNotifications)
	if err != nil {
		return err
	}
	unread, err := localstore.LoadList[string](ctx, s.store, localstore.KeyUnreadNotifications)
	if err != nil {
		return err
	}
	bell = append([]models.Notification{n}, bell...)
	unread = append([]string{n.ID}, removeIDs(unread, n.ID)...)

	if err := localstore.SaveList(ctx, s.store, localstore.KeyBellNotifications, bell); err != nil {
		return err
	}
	if err := localstore.SaveList(ctx, s.store, localstore.KeyUnreadNotifications, unread); err != nil {
		return err
	}

	s.metrics.Notification(n.Type)
	if s.publisher != nil {
		s.publisher.PublishNotification(n)
	}
	log.Info().Str("notification_id", n.ID).Str("type", n.Type).Str("recipient", n.RecipientID).Msg("Notification created")
	return nil
}

func visibleTo(session auth.Session, n models.Notification) bool {
	switch n.RecipientID {
	case "":
		return true
	case models.RecipientAdmin:
		return session.IsAdmin()
	default:
		return session.Owns(n.RecipientID)
	}
}

// readState is what derive needs to compute Read for one viewer.
type readState struct {
	unread   map[string]struct{}
	receipts map[string][]string
}

func (s *NotificationService) loadReadState(ctx context.Context) (readState, error) {
	unread, err := localstore.LoadList[string](ctx, s.store, localstore.KeyUnreadNotifications)
	if err != nil {
		return readState{}, err
	}
	receipts, err := localstore.LoadValue[map[string][]string](ctx, s.store, localstore.KeyNotificationReceipts)
	if err != nil {
		return readState{}, err
	}
	set := make(map[string]struct{}, len(unread))
	for _, id := range unread {
		set[id] = struct{}{}
	}
	return readState{unread: set, receipts: receipts}, nil
}

// isRead reports whether session has read n. A broadcast stays in the unread list and
// is read per user through its receipts.
func (rs readState) isRead(session auth.Session, n models.Notification) bool {
	if _, ok := rs.unread[n.ID]; !ok {
		return true
	}
	if n.RecipientID != "" || !session.IsLoggedIn() {
		return false
	}
	for _, userID := range rs.receipts[n.ID] {
		if userID == session.UserID {
			return true
		}
	}
	return false
}

// derive sets Read for session and keeps the notifications keep accepts.
func derive(items []models.Notification, rs readState, session auth.Session, keep func(models.Notification) bool) []models.Notification {
	out := make([]models.Notification, 0, len(items))
	for _, n := range items {
		if keep != nil && !keep(n) {
			continue
		}
		n.Read = rs.isRead(session, n)
		out = append(out, n)
	}
	return out
}

// List returns the bell notifications visible to session, newest first.
func (s *NotificationService) List(ctx context.Context, session auth.Session) ([]models.Notification, error) {
	bell, err := localstore.LoadList[models.Notification](ctx, s.store, localstore.KeyBellNotifications)
	if err != nil {
		return nil, err
	}
	rs, err := s.loadReadState(ctx)
	if err != nil {
		return nil, err
	}
	return derive(bell, rs, session, func(n models.Notification) bool { return visibleTo(session, n) }), nil
}

// UnreadCount is the badge number for session.
func (s *NotificationService) UnreadCount(ctx context.Context, session auth.Session) (int, error) {
	items, err := s.List(ctx, session)
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

// MarkRead marks ids read for session. Ids that are unknown or not addressed to session
// are ignored. Broadcasts get a per-user receipt; anonymous sessions cannot record one.
func (s *NotificationService) MarkRead(ctx context.Context, session auth.Session, ids []string) error {
	return s.setRead(ctx, session, ids, true)
}

// MarkUnread reverses MarkRead for session.
func (s *NotificationService) MarkUnread(ctx context.Context, session auth.Session, ids []string) error {
	return s.setRead(ctx, session, ids, false)
}

func (s *NotificationService) setRead(ctx context.Context, session auth.Session, ids []string, read bool) error {
	defer locks.lock(localstore.KeyBellNotifications)()

	bell, err := localstore.LoadList[models.Notification](ctx, s.store, localstore.KeyBellNotifications)
	if err != nil {
		return err
	}
	byID := make(map[string]models.Notification, len(bell))
	for _, n := range bell {
		byID[n.ID] = n
	}

	var addressed, broadcasts []string
	for _, id := range ids {
		n, ok := byID[id]
		if !ok || !visibleTo(session, n) {
			continue
		}
		if n.RecipientID == "" {
			if session.IsLoggedIn() {
				broadcasts = append(broadcasts, id)
			}
			continue
		}
		addressed = append(addressed, id)
	}

	if len(addressed) > 0 {
		unread, err := localstore.LoadList[string](ctx, s.store, localstore.KeyUnreadNotifications)
		if err != nil {
			return err
		}
		if read {
			unread = removeIDs(unread, addressed...)
		} else {
			unread = unionIDs(unread, addressed)
		}
		if err := localstore.SaveList(ctx, s.store, localstore.KeyUnreadNotifications, unread); err != nil {
			return err
		}
	}

	if len(broadcasts) > 0 {
		receipts, err := localstore.LoadValue[map[string][]string](ctx, s.store, localstore.KeyNotificationReceipts)
		if err != nil {
			return err
		}
		if receipts == nil {
			receipts = make(map[string][]string)
		}
		for _, id := range broadcasts {
			if read {
				receipts[id] = unionIDs(receipts[id], []string{session.UserID})
			} else if readers := removeIDs(receipts[id], session.UserID); len(readers) > 0 {
				receipts[id] = readers
			} else {
				delete(receipts, id)
			}
		}
		if err := localstore.SaveValue(ctx, s.store, localstore.KeyNotificationReceipts, receipts); err != nil {
			return err
		}
	}
	return nil
}

// MarkAllRead marks every notification visible to session as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, session auth.Session) error {
	items, err := s.List(ctx, session)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(items))
	for _, n := range items {
		ids = append(ids, n.ID)
	}
	return s.MarkRead(ctx, session, ids)
}

// AdminNotifications returns the legacy admin list. Admin only.
func (s *NotificationService) AdminNotifications(ctx context.Context, session auth.Session) ([]models.Notification, error) {
	if !session.IsAdmin() {
		return nil, fmt.Errorf("admin notifications: %w", ErrAccessDenied)
	}
	legacy, err := localstore.LoadList[models.Notification](ctx, s.store, localstore.KeyAdminNotifications)
	if err != nil {
		return nil, err
	}
	rs, err := s.loadReadState(ctx)
	if err != nil {
		return nil, err
	}
	return derive(legacy, rs, session, nil), nil
}

// removeIDs returns list without any of ids, preserving order.
func removeIDs(list []string, ids ...string) []string {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]string, 0, len(list))
	for _, id := range list {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// unionIDs appends the ids from extra not already in list.
func unionIDs(list, extra []string) []string {
	seen := make(map[string]struct{}, len(list)+len(extra))
	out := make([]string, 0, len(list)+len(extra))
	for _, id := range append(append([]string{}, list...), extra...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
