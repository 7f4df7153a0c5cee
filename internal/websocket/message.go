package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Message types pushed to clients.
const (
	TypeWelcome      = "welcome"
	TypeNotification = "notification"
)

// Message defines the structure for websocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage encodes a message of the given type. Encoding failures are logged and yield nil.
func NewMessage(kind string, payload interface{}) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("type", kind).Msg("Failed to encode websocket payload")
		return nil
	}
	data, err := json.Marshal(Message{Type: kind, Payload: raw})
	if err != nil {
		log.Error().Err(err).Str("type", kind).Msg("Failed to encode websocket message")
		return nil
	}
	return data
}

// NewWelcomeMessage is sent once when a client connects.
func NewWelcomeMessage() []byte {
	return NewMessage(TypeWelcome, map[string]string{"message": "Connected to notifications"})
}
