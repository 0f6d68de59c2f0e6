package api

import (
	"context"
	"encoding/json"

	"whiteboard/internal/shape"
)

/*
LEARNING: CONSUMER-DRIVEN INTERFACES (Go Idiom)

This package is the CONSUMER of the coordinator and the render pool, so the
interfaces it needs live HERE. Handlers only see the few methods they call,
and tests swap in small fakes without a websocket in sight.
*/

// BoardState is what the handlers read from the session coordinator.
type BoardState interface {
	Snapshot(ctx context.Context) (json.RawMessage, error)
	ClientCount(ctx context.Context) (int, error)
}

// Renderer is what the PNG export handler needs from the render pool.
type Renderer interface {
	Render(ctx context.Context, list shape.List) ([]byte, error)
	GetQueueLength() int
}
