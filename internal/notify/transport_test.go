package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu    sync.Mutex
	items []models.Notification
}

func (c *collector) deliver(n models.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

func (c *collector) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.items))
	for _, n := range c.items {
		out = append(out, n.ID)
	}
	return out
}

func pushServer(t *testing.T, messages ...string) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range messages {
			conn.WriteMessage(websocket.TextMessage, []byte(m))
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(50 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketTransportDelivers(t *testing.T) {
	url := pushServer(t,
		`{"type":"welcome"}`,
		`{"type":"notification","payload":{"id":"n1","title":"Hello"}}`,
		`not json`,
		`{"type":"notification","payload":{"id":"n2","title":"Again"}}`,
	)
	var got collector
	err := (&WebSocketTransport{URL: url}).Run(context.Background(), got.deliver)
	assert.ErrorIs(t, err, ErrTransportClosed)
	assert.Equal(t, []string{"n1", "n2"}, got.ids())
}

func TestWebSocketTransportDialFailure(t *testing.T) {
	err := (&WebSocketTransport{URL: "ws://127.0.0.1:1/ws/notifications"}).Run(context.Background(), func(models.Notification) {})
	assert.Error(t, err)
}

type listerFunc func(ctx context.Context) ([]models.Notification, error)

func (f listerFunc) List(ctx context.Context) ([]models.Notification, error) { return f(ctx) }

func TestPollingTransportDeliversUnseen(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	source := listerFunc(func(ctx context.Context) ([]models.Notification, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		switch calls {
		case 1:
			return []models.Notification{{ID: "b"}, {ID: "a"}}, nil
		case 2:
			return nil, errors.New("flaky")
		default:
			return []models.Notification{{ID: "c"}, {ID: "b"}, {ID: "a"}}, nil
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got collector
	done := make(chan error, 1)
	go func() { done <- (&PollingTransport{Source: source, Interval: 10 * time.Millisecond}).Run(ctx, got.deliver) }()

	require.Eventually(t, func() bool { return len(got.ids()) == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, []string{"a", "b", "c"}, got.ids())
}

func TestClientRunFallsBackToPolling(t *testing.T) {
	s := &fakeServer{items: []models.Notification{{ID: "p1", Title: "Polled"}}}
	c, _ := newTestClient(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx,
			&WebSocketTransport{URL: "ws://127.0.0.1:1/ws/notifications"},
			&PollingTransport{Source: c, Interval: 10 * time.Millisecond},
		)
	}()

	require.Eventually(t, func() bool {
		n, err := c.BadgeCount(context.Background())
		return err == nil && n == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
