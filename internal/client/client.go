package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"whiteboard/internal/protocol"
	"whiteboard/internal/shape"

	"github.com/gorilla/websocket"
)

/*
LEARNING: THE SYNC CHANNEL

The client side of the board protocol is deliberately dumb:

- every local edit sends the WHOLE list (shapes:update)
- the server answers a new connection with the whole list (shapes:init)
- every remote edit arrives as the whole list (shapes:update)

There are no acks and no retries. Send never blocks the editor: frames go
into a small queue drained by a writer goroutine, and a full queue drops
the frame. After a disconnect Run dials again; the fresh shapes:init that
follows replaces whatever was lost.
*/

const (
	handshakeTimeout      = 10 * time.Second
	writeTimeout          = 5 * time.Second
	defaultSendBuffer     = 16
	defaultReconnectDelay = 2 * time.Second
)

var (
	// ErrNotConnected is returned by Send while no connection is open.
	ErrNotConnected = errors.New("client: not connected")
	// ErrQueueFull is returned by Send when the outbound queue is full.
	ErrQueueFull = errors.New("client: send queue full")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("client: closed")
)

// Handler receives authoritative lists from the server. board.Board
// satisfies it.
type Handler interface {
	Init(list shape.List)
	ApplyRemote(list shape.List)
}

// Client is a board sync connection.
type Client struct {
	url            string
	dialer         *websocket.Dialer
	reconnectDelay time.Duration

	send chan []byte

	mu     sync.Mutex
	conn   *websocket.Conn
	stop   chan struct{} // closed when conn is torn down
	closed bool
	done   chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithSendBuffer sets the outbound queue length.
func WithSendBuffer(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.send = make(chan []byte, n)
		}
	}
}

// WithReconnectDelay sets the wait between reconnect attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.reconnectDelay = d
		}
	}
}

// New creates an unconnected client for the websocket url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		reconnectDelay: defaultReconnectDelay,
		send:           make(chan []byte, defaultSendBuffer),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial creates a client and opens its first connection.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	c := New(url, opts...)
	if _, err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// URL returns the board endpoint.
func (c *Client) URL() string {
	return c.url
}

// Connected reports whether a connection is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.conn != nil {
		conn := c.conn
		c.mu.Unlock()
		return conn, nil
	}
	c.mu.Unlock()

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		conn.Close()
		return nil, ErrClosed
	}
	c.conn = conn
	c.stop = make(chan struct{})
	go c.writeLoop(conn, c.stop)
	return conn, nil
}

// disconnect tears down conn if it is still the current connection and
// drops frames queued for it.
func (c *Client) disconnect(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		close(c.stop)
		c.conn = nil
		c.stop = nil
	}
	c.mu.Unlock()
	conn.Close()

	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

// Send queues list as a shapes:update without blocking.
func (c *Client) Send(list shape.List) error {
	payload, err := shape.Encode(list)
	if err != nil {
		return fmt.Errorf("encode shapes: %w", err)
	}
	frame, err := protocol.Encode(protocol.EventUpdate, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.conn == nil {
		return ErrNotConnected
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrQueueFull
	}
}

// Emit sends list and logs failures. It lets a Client serve as a board
// emitter.
func (c *Client) Emit(list shape.List) {
	if err := c.Send(list); err != nil {
		log.Printf("⚠️  Dropped shapes:update (%d shapes): %v", len(list), err)
	}
}

func (c *Client) writeLoop(conn *websocket.Conn, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case frame := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("⚠️  Board write failed: %v", err)
				conn.Close()
				return
			}
		}
	}
}

// Run reads frames and hands them to h until ctx ends or Close is called,
// reconnecting after failures.
func (c *Client) Run(ctx context.Context, h Handler) error {
	for {
		conn, err := c.connect(ctx)
		if errors.Is(err, ErrClosed) {
			return nil
		}
		if err != nil {
			log.Printf("⚠️  Board unreachable at %s: %v", c.url, err)
		} else {
			err = c.readLoop(ctx, conn, h)
			c.disconnect(conn)
			if err != nil {
				log.Printf("⚠️  Board connection lost: %v", err)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-time.After(c.reconnectDelay):
			log.Printf("🔄 Reconnecting to %s...", c.url)
		}
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, h Handler) error {
	// Unblock ReadMessage when ctx ends.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if isNormalClose(err) || ctx.Err() != nil || c.isClosed() {
				return nil
			}
			return err
		}
		c.handleFrame(frame, h)
	}
}

func (c *Client) handleFrame(frame []byte, h Handler) {
	env, err := protocol.Decode(frame)
	if err != nil {
		log.Printf("⚠️  Ignoring frame: %v", err)
		return
	}
	list, err := shape.Decode(env.Payload)
	if err != nil {
		// Keep the last good list.
		log.Printf("⚠️  Ignoring %s with malformed shapes: %v", env.Event, err)
		return
	}
	switch env.Event {
	case protocol.EventInit:
		h.Init(list)
	case protocol.EventUpdate:
		h.ApplyRemote(list)
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close ends the connection and makes Run return.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
	c.disconnect(conn)
	return nil
}

func isNormalClose(err error) bool {
	if err == nil {
		return true
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, io.EOF)
}
