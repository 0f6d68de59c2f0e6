package collaboration

import (
	"context"
	"log"
	"net/http"
	"strings"

	"whiteboard/internal/middleware"
	"whiteboard/internal/models"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
)

/*
LEARNING: WEBSOCKET UPGRADER

The upgrader converts HTTP connections to WebSocket connections.

Key settings:
- ReadBufferSize/WriteBufferSize: Memory for I/O operations
- CheckOrigin: browsers always send Origin, so it is matched against the
  configured allow list. Non-browser clients (boardctl, the MCP bridge)
  send none and are let through.
*/

// WebSocketHandler upgrades board connections and hands them to the
// coordinator.
type WebSocketHandler struct {
	coordinator *Coordinator
	upgrader    websocket.Upgrader
	sendBuffer  int
}

// NewWebSocketHandler creates a handler. allowedOrigins may contain "*".
func NewWebSocketHandler(coord *Coordinator, allowedOrigins []string, sendBuffer int) *WebSocketHandler {
	return &WebSocketHandler{
		coordinator: coord,
		sendBuffer:  sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     OriginChecker(allowedOrigins),
		},
	}
}

// OriginChecker returns a CheckOrigin func for the allow list.
func OriginChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	anyOrigin := false
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			anyOrigin = true
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || anyOrigin {
			return true
		}
		return set[strings.TrimRight(origin, "/")]
	}
}

// HandleConnection upgrades the request and runs the session pumps.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	// The request context ends when this handler returns; the pumps outlive it.
	ctx := context.WithoutCancel(r.Context())

	info := models.NewSession(r.RemoteAddr, r.UserAgent())
	ctx, span := middleware.StartSpan(ctx, "WebSocket.Connect",
		attribute.String("session.id", info.ID),
		attribute.String("remote.addr", info.RemoteAddr),
	)
	defer span.End()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		middleware.AddSpanError(ctx, err)
		return
	}

	session := NewSession(info, conn, h.coordinator, h.sendBuffer)
	if err := h.coordinator.Register(session); err != nil {
		middleware.AddSpanError(ctx, err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go session.WritePump(ctx)
	go session.ReadPump(ctx)

	log.Printf("✓ WebSocket connection established (session: %s, remote: %s)", info.ID, info.RemoteAddr)
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.HandleConnection(w, r)
}
