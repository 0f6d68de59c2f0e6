// Package protocol defines the websocket frames exchanged between board
// clients and the coordinator.
//
// Every frame is a JSON text message:
//
//	{"event":"shapes:update","payload":[{"id":"…","type":"rect",…}]}
//
// The payload is always the full shape list.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Event names the kind of frame.
type Event string

const (
	// EventInit carries the authoritative list to a newly connected client.
	EventInit Event = "shapes:init"
	// EventUpdate carries a full replacement list in either direction.
	EventUpdate Event = "shapes:update"
)

// Envelope is one websocket frame.
type Envelope struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// EmptyList is the payload of a fresh board.
var EmptyList = json.RawMessage(`[]`)

// Encode builds a frame around an already-serialized list.
func Encode(event Event, payload json.RawMessage) ([]byte, error) {
	if len(payload) == 0 {
		payload = EmptyList
	}
	return json.Marshal(Envelope{Event: event, Payload: payload})
}

// Decode parses a frame. Unknown events are an error so callers can log
// and skip them.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("invalid frame: %w", err)
	}
	switch env.Event {
	case EventInit, EventUpdate:
	default:
		return Envelope{}, fmt.Errorf("unknown event %q", env.Event)
	}
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return Envelope{}, fmt.Errorf("event %s has no payload", env.Event)
	}
	return env, nil
}
