// internal/models/models.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User is the identity carried by a player's bearer token.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Player is one websocket connection attached to a room.
type Player struct {
	ID        uuid.UUID       `json:"id"`
	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`
	User      *User           `json:"user"`
}

// GameAction is a client request as read off the socket.
type GameAction struct {
	ActionType string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
