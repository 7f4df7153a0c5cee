package handlers

import (
	"net/http"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	ws "github.com/awakenedyouth/awakened-be/internal/websocket"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles upgrading HTTP connections to notification sockets.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Browsers from allowedOrigins may
// connect; an empty list allows any origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// Serve upgrades the connection, greets the client and registers it with the hub.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	session := auth.FromContext(r.Context())
	client := ws.NewClient(h.hub, conn, session.UserID, session.IsAdmin())
	client.Send <- ws.NewWelcomeMessage()
	h.hub.Join(client)

	go client.WritePump()
	go func() {
		client.ReadPump()
		h.hub.Leave(client)
	}()
}
