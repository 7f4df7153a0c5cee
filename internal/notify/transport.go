package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// DefaultPollInterval is how often PollingTransport asks the server for new notifications.
const DefaultPollInterval = 30 * time.Second

// ErrTransportClosed is returned when a push channel ends without the context being cancelled.
var ErrTransportClosed = errors.New("notification transport closed")

// Transport feeds notifications to deliver until ctx is done or the transport fails.
type Transport interface {
	Run(ctx context.Context, deliver func(models.Notification)) error
}

type pushMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WebSocketTransport receives server pushes over a websocket. The client never writes.
type WebSocketTransport struct {
	URL    string
	Header http.Header
	Dialer *websocket.Dialer
}

// Run dials URL and delivers every "notification" message until the socket closes.
func (t *WebSocketTransport) Run(ctx context.Context, deliver func(models.Notification)) error {
	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, t.URL, t.Header)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", t.URL, err)
	}
	defer conn.Close()
	log.Info().Str("url", t.URL).Msg("Notifications websocket open")

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrTransportClosed
			}
			return fmt.Errorf("reading notifications websocket: %w", err)
		}

		var msg pushMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("Ignoring malformed notification message")
			continue
		}
		if msg.Type != "notification" {
			continue
		}
		var n models.Notification
		if err := json.Unmarshal(msg.Payload, &n); err != nil || n.ID == "" {
			log.Warn().Err(err).Msg("Ignoring malformed notification payload")
			continue
		}
		deliver(n)
	}
}

// Lister returns the server's current notifications.
type Lister interface {
	List(ctx context.Context) ([]models.Notification, error)
}

// PollingTransport asks Source for the list on a fixed interval and delivers the
// notifications it has not delivered before. Failed polls are logged and retried.
type PollingTransport struct {
	Source   Lister
	Interval time.Duration
}

// Run polls immediately and then every Interval until ctx is done.
func (t *PollingTransport) Run(ctx context.Context, deliver func(models.Notification)) error {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	seen := make(map[string]struct{})
	poll := func() {
		items, err := t.Source.List(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Notification poll failed")
			return
		}
		// Oldest first so each delivery lands on top of the previous one.
		for i := len(items) - 1; i >= 0; i-- {
			if _, ok := seen[items[i].ID]; ok {
				continue
			}
			seen[items[i].ID] = struct{}{}
			deliver(items[i])
		}
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			poll()
		}
	}
}

// Run feeds the cache from transports in order, moving to the next one when a
// transport fails or closes. It returns when ctx is done or every transport has ended.
func (c *Client) Run(ctx context.Context, transports ...Transport) error {
	var last error
	for _, t := range transports {
		err := t.Run(ctx, c.Deliver)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msgf("Notification transport %T ended, falling back", t)
		last = err
	}
	return last
}
