package collaboration

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"whiteboard/internal/protocol"
	"whiteboard/internal/shape"
)

/*
LEARNING: ONE GOROUTINE OWNS THE BOARD

The coordinator holds the single authoritative shape list for the process
and the set of connected sessions. Only the event loop goroutine touches
them; everything else talks to it over channels:

1. **register**: add a session and send it shapes:init
2. **unregister**: drop a session and close its outbound queue
3. **updates**: replace the list and relay it to every other session
4. **queries**: read-only snapshots for HTTP handlers

Because shapes:init is queued from inside the loop, a new session always
sees its initial snapshot before any update relayed after it joined.

The relay is last-writer-wins: whichever full list reaches the loop last
becomes the board. The coordinator never merges.
*/

// ErrShuttingDown is returned once Shutdown has been called.
var ErrShuttingDown = errors.New("coordinator is shutting down")

// Coordinator relays full shape lists between sessions.
type Coordinator struct {
	sessions map[*Session]bool
	shapes   json.RawMessage
	strict   bool

	register   chan *Session
	unregister chan *Session
	updates    chan *update
	queries    chan func()

	done     chan struct{}
	stopped  chan struct{}
	startMu  sync.Mutex
	started  bool
	shutdown sync.Once
}

type update struct {
	payload json.RawMessage
	sender  *Session
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithStrictShapes makes the coordinator decode every inbound list and drop
// the ones that are not valid shape lists, keeping the last good one.
func WithStrictShapes(strict bool) Option {
	return func(c *Coordinator) { c.strict = strict }
}

// WithInitialShapes seeds the authoritative list.
func WithInitialShapes(list shape.List) Option {
	return func(c *Coordinator) {
		if data, err := shape.Encode(list); err == nil {
			c.shapes = data
		}
	}
}

// NewCoordinator creates a coordinator with an empty board. Call Start
// before registering sessions.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		sessions:   make(map[*Session]bool),
		shapes:     protocol.EmptyList,
		register:   make(chan *Session),
		unregister: make(chan *Session),
		updates:    make(chan *update, 256),
		queries:    make(chan func()),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs the event loop.
func (c *Coordinator) Start() {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.started {
		return
	}
	c.started = true

	log.Println("🔄 Starting board coordinator...")
	go c.run()
	log.Println("✓ Board coordinator started")
}

func (c *Coordinator) run() {
	defer close(c.stopped)
	for {
		select {
		case <-c.done:
			c.closeAll()
			return

		case s := <-c.register:
			c.handleRegister(s)

		case s := <-c.unregister:
			c.handleUnregister(s)

		case u := <-c.updates:
			c.handleUpdate(u)

		case q := <-c.queries:
			q()
		}
	}
}

// Register adds s and queues shapes:init for it.
func (c *Coordinator) Register(s *Session) error {
	select {
	case c.register <- s:
		return nil
	case <-c.done:
		return ErrShuttingDown
	}
}

// Unregister removes s. It is a no-op for unknown sessions and after
// shutdown.
func (c *Coordinator) Unregister(s *Session) {
	select {
	case c.unregister <- s:
	case <-c.done:
	}
}

// Apply replaces the authoritative list with payload and relays it to every
// session except sender. A nil sender relays to everyone.
func (c *Coordinator) Apply(ctx context.Context, payload json.RawMessage, sender *Session) error {
	select {
	case c.updates <- &update{payload: payload, sender: sender}:
		return nil
	case <-c.done:
		return ErrShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current authoritative list as JSON.
func (c *Coordinator) Snapshot(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.query(ctx, func() {
		out = append(json.RawMessage(nil), c.shapes...)
	})
	return out, err
}

// ClientCount returns the number of connected sessions.
func (c *Coordinator) ClientCount(ctx context.Context) (int, error) {
	var n int
	err := c.query(ctx, func() { n = len(c.sessions) })
	return n, err
}

func (c *Coordinator) query(ctx context.Context, fn func()) error {
	reply := make(chan struct{})
	wrapped := func() {
		fn()
		close(reply)
	}
	select {
	case c.queries <- wrapped:
	case <-c.done:
		return ErrShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}
	<-reply
	return nil
}

// Shutdown stops the loop and closes every session. It waits for the loop
// to exit when it was started.
func (c *Coordinator) Shutdown() {
	c.shutdown.Do(func() {
		log.Println("🛑 Shutting down board coordinator...")
		close(c.done)

		c.startMu.Lock()
		started := c.started
		c.startMu.Unlock()
		if started {
			<-c.stopped
		}
		log.Println("✓ Board coordinator shutdown complete")
	})
}

func (c *Coordinator) handleRegister(s *Session) {
	c.sessions[s] = true
	log.Printf("  Session %s joined the board (total: %d clients)", s.ID, len(c.sessions))

	frame, err := protocol.Encode(protocol.EventInit, c.shapes)
	if err != nil {
		log.Printf("❌ Failed to encode init for session %s: %v", s.ID, err)
		return
	}
	if !s.enqueue(frame) {
		log.Printf("⚠️  Session %s buffer full, init dropped", s.ID)
	}
}

func (c *Coordinator) handleUnregister(s *Session) {
	if !c.sessions[s] {
		return
	}
	delete(c.sessions, s)
	close(s.Send)
	log.Printf("  Session %s left the board (remaining: %d clients)", s.ID, len(c.sessions))
}

func (c *Coordinator) handleUpdate(u *update) {
	if c.strict {
		if _, err := shape.Decode(u.payload); err != nil {
			log.Printf("⚠️  Rejected update from %s: %v", senderID(u.sender), err)
			return
		}
	}
	frame, err := protocol.Encode(protocol.EventUpdate, u.payload)
	if err != nil {
		log.Printf("⚠️  Rejected update from %s: %v", senderID(u.sender), err)
		return
	}
	c.shapes = u.payload

	for s := range c.sessions {
		if s == u.sender {
			continue
		}
		if !s.enqueue(frame) {
			// No retry: the session resyncs on its next init.
			log.Printf("⚠️  Session %s buffer full, update dropped", s.ID)
		}
	}
}

func (c *Coordinator) closeAll() {
	for s := range c.sessions {
		close(s.Send)
		if s.Conn != nil {
			s.Conn.Close()
		}
	}
	c.sessions = make(map[*Session]bool)
}

func senderID(s *Session) string {
	if s == nil {
		return "server"
	}
	return s.ID
}
