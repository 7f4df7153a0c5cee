package websocket

import (
	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/rs/zerolog/log"
)

type envelope struct {
	recipient string
	message   []byte
}

// Hub maintains the set of active clients and pushes messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Messages addressed to a recipient (user id or models.RecipientAdmin).
	deliver chan envelope

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		deliver:    make(chan envelope),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It owns the client map.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Str("user_id", client.UserID).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case env := <-h.deliver:
			for client := range h.clients {
				if client.accepts(env.recipient) {
					h.send(client, env.message)
				}
			}
		}
	}
}

// Stop terminates Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Join registers c unless the hub has stopped.
func (h *Hub) Join(c *Client) {
	select {
	case h.Register <- c:
	case <-h.done:
	}
}

// Leave unregisters c unless the hub has stopped.
func (h *Hub) Leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// send drops clients whose buffer is full.
func (h *Hub) send(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		close(client.Send)
		delete(h.clients, client)
	}
}

// PublishNotification pushes n to the clients it is addressed to.
func (h *Hub) PublishNotification(n models.Notification) {
	msg := NewMessage(TypeNotification, n)
	if msg == nil {
		return
	}
	select {
	case h.deliver <- envelope{recipient: n.RecipientID, message: msg}:
	case <-h.done:
	}
}
