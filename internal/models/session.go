package models

import (
	"time"

	"github.com/segmentio/ksuid"
)

// Session describes one websocket connection to the board.
type Session struct {
	ID           string    `json:"id"`
	RemoteAddr   string    `json:"remote_addr"`
	UserAgent    string    `json:"user_agent,omitempty"`
	ConnectedAt  time.Time `json:"connected_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// NewSession stamps a connection with a time-ordered KSUID so log lines from
// concurrent sessions sort by connect time.
func NewSession(remoteAddr, userAgent string) *Session {
	now := time.Now()
	return &Session{
		ID:           ksuid.New().String(),
		RemoteAddr:   remoteAddr,
		UserAgent:    userAgent,
		ConnectedAt:  now,
		LastActiveAt: now,
	}
}
