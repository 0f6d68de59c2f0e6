package collaboration

import (
	"context"
	"log"
	"time"

	"whiteboard/internal/middleware"
	"whiteboard/internal/models"
	"whiteboard/internal/protocol"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// maxFrameSize bounds one shapes:update frame. Boards with embedded
	// images are large, so this is generous.
	maxFrameSize = 32 << 20
)

// Session is one connected board client.
type Session struct {
	*models.Session
	Conn        *websocket.Conn
	Send        chan []byte // outbound frames, closed by the coordinator
	Coordinator *Coordinator
}

// NewSession wraps conn with a buffered outbound queue of size buffer.
func NewSession(info *models.Session, conn *websocket.Conn, coord *Coordinator, buffer int) *Session {
	if buffer <= 0 {
		buffer = 64
	}
	return &Session{
		Session:     info,
		Conn:        conn,
		Send:        make(chan []byte, buffer),
		Coordinator: coord,
	}
}

// enqueue queues frame without blocking. It reports false when the queue
// is full. Only the coordinator loop calls it, so it never races with the
// close of Send.
func (s *Session) enqueue(frame []byte) bool {
	select {
	case s.Send <- frame:
		return true
	default:
		return false
	}
}

// ReadPump reads frames until the connection fails, handing every
// shapes:update to the coordinator.
func (s *Session) ReadPump(ctx context.Context) {
	defer func() {
		s.Coordinator.Unregister(s)
		s.Conn.Close()
	}()

	s.Conn.SetReadLimit(maxFrameSize)
	s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		s.LastActiveAt = time.Now()
		return nil
	})

	for {
		_, frame, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error for session %s: %v", s.ID, err)
			}
			return
		}
		s.LastActiveAt = time.Now()
		s.handleFrame(ctx, frame)
	}
}

func (s *Session) handleFrame(ctx context.Context, frame []byte) {
	msgCtx, span := middleware.StartSpan(ctx, "Board.ApplyUpdate",
		attribute.String("session.id", s.ID),
		attribute.Int("message.size", len(frame)),
	)
	defer span.End()

	env, err := protocol.Decode(frame)
	if err != nil {
		log.Printf("⚠️  Ignoring frame from session %s: %v", s.ID, err)
		middleware.AddSpanError(msgCtx, err)
		return
	}
	if env.Event != protocol.EventUpdate {
		log.Printf("⚠️  Ignoring %s from session %s", env.Event, s.ID)
		return
	}
	if err := s.Coordinator.Apply(msgCtx, env.Payload, s); err != nil {
		middleware.AddSpanError(msgCtx, err)
	}
}

// WritePump drains Send onto the connection and pings the peer.
func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One JSON document per websocket message; frames are not batched.
			if err := s.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
