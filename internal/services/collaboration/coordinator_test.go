package collaboration

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"whiteboard/internal/models"
	"whiteboard/internal/protocol"
	"whiteboard/internal/shape"

	"github.com/gorilla/websocket"
)

type testClient struct {
	conn   *websocket.Conn
	frames chan protocol.Envelope
}

func startBoard(t *testing.T, opts ...Option) (*Coordinator, string) {
	t.Helper()
	coord := NewCoordinator(opts...)
	coord.Start()
	server := httptest.NewServer(NewWebSocketHandler(coord, []string{"*"}, 16))
	t.Cleanup(func() {
		coord.Shutdown()
		server.Close()
	})
	return coord, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *testClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	c := &testClient{conn: conn, frames: make(chan protocol.Envelope, 16)}
	go func() {
		defer close(c.frames)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			env, err := protocol.Decode(data)
			if err != nil {
				continue
			}
			c.frames <- env
		}
	}()
	return c
}

func (c *testClient) expect(t *testing.T, event protocol.Event) shape.List {
	t.Helper()
	select {
	case env, ok := <-c.frames:
		if !ok {
			t.Fatalf("connection closed while waiting for %s", event)
		}
		if env.Event != event {
			t.Fatalf("expected %s, got %s", event, env.Event)
		}
		list, err := shape.Decode(env.Payload)
		if err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		return list
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for %s", event)
	}
	return nil
}

func (c *testClient) expectSilence(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case env, ok := <-c.frames:
		if ok {
			t.Fatalf("expected no frame, got %s", env.Event)
		}
	case <-time.After(d):
	}
}

func (c *testClient) send(t *testing.T, list shape.List) {
	t.Helper()
	payload, err := shape.Encode(list)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := c.conn.WriteJSON(protocol.Envelope{Event: protocol.EventUpdate, Payload: payload}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func threeShapes() shape.List {
	return shape.List{
		shape.Rect{ID: "r1", X: 1, Y: 1, W: 10, H: 10, Color: "#000"},
		shape.Circle{ID: "c1", Center: shape.Point{X: 5, Y: 5}, Radius: 3, Color: "#f00"},
		shape.Text{ID: "t1", X: 2, Y: 2, Body: "hi", Color: "#111", FontSize: 22},
	}
}

func TestRelayExcludesSenderAndInitsLateJoiner(t *testing.T) {
	_, url := startBoard(t)

	a, b, c := dial(t, url), dial(t, url), dial(t, url)
	for _, cl := range []*testClient{a, b, c} {
		if got := cl.expect(t, protocol.EventInit); len(got) != 0 {
			t.Fatalf("fresh board should init empty, got %v", got.IDs())
		}
	}

	want := threeShapes()
	a.send(t, want)

	for name, cl := range map[string]*testClient{"B": b, "C": c} {
		got := cl.expect(t, protocol.EventUpdate)
		if !reflect.DeepEqual(got.IDs(), want.IDs()) {
			t.Errorf("%s received %v, want %v", name, got.IDs(), want.IDs())
		}
	}
	a.expectSilence(t, 200*time.Millisecond)

	d := dial(t, url)
	got := d.expect(t, protocol.EventInit)
	if !reflect.DeepEqual(got.IDs(), want.IDs()) {
		t.Errorf("late joiner init %v, want %v", got.IDs(), want.IDs())
	}
}

func TestLastWriterWins(t *testing.T) {
	coord, url := startBoard(t)
	a, b := dial(t, url), dial(t, url)
	a.expect(t, protocol.EventInit)
	b.expect(t, protocol.EventInit)

	a.send(t, threeShapes())
	b.expect(t, protocol.EventUpdate)
	b.send(t, shape.List{})
	a.expect(t, protocol.EventUpdate)

	snap, err := coord.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if string(snap) != "[]" {
		t.Errorf("expected the last list to win, got %s", snap)
	}
}

func TestStrictModeKeepsLastGoodList(t *testing.T) {
	coord, url := startBoard(t, WithStrictShapes(true))
	a, b := dial(t, url), dial(t, url)
	a.expect(t, protocol.EventInit)
	b.expect(t, protocol.EventInit)

	a.send(t, threeShapes())
	b.expect(t, protocol.EventUpdate)

	bad := []byte(`{"event":"shapes:update","payload":[{"id":"x","type":"hexagon"}]}`)
	if err := a.conn.WriteMessage(websocket.TextMessage, bad); err != nil {
		t.Fatalf("write: %v", err)
	}
	b.expectSilence(t, 200*time.Millisecond)

	snap, _ := coord.Snapshot(context.Background())
	list, err := shape.Decode(snap)
	if err != nil || len(list) != 3 {
		t.Fatalf("expected last good list to remain, got %s (%v)", snap, err)
	}
}

func TestMalformedFramesAreIgnored(t *testing.T) {
	_, url := startBoard(t)
	a, b := dial(t, url), dial(t, url)
	a.expect(t, protocol.EventInit)
	b.expect(t, protocol.EventInit)

	_ = a.conn.WriteMessage(websocket.TextMessage, []byte(`garbage`))
	_ = a.conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"shapes:init","payload":[]}`))
	b.expectSilence(t, 200*time.Millisecond)

	// The session survives and keeps relaying.
	a.send(t, threeShapes())
	b.expect(t, protocol.EventUpdate)
}

func TestClientCountTracksDisconnects(t *testing.T) {
	coord, url := startBoard(t)
	a := dial(t, url)
	a.expect(t, protocol.EventInit)
	b := dial(t, url)
	b.expect(t, protocol.EventInit)

	ctx := context.Background()
	if n, _ := coord.ClientCount(ctx); n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}

	a.conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n, _ := coord.ClientCount(ctx); n == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("disconnect was not unregistered")
}

func TestShutdownRejectsNewWork(t *testing.T) {
	coord := NewCoordinator()
	coord.Start()
	coord.Shutdown()
	coord.Shutdown()

	if err := coord.Apply(context.Background(), json.RawMessage(`[]`), nil); err != ErrShuttingDown {
		t.Errorf("expected ErrShuttingDown, got %v", err)
	}
	if _, err := coord.Snapshot(context.Background()); err != ErrShuttingDown {
		t.Errorf("expected ErrShuttingDown, got %v", err)
	}
}

func TestFullQueueDropsFrames(t *testing.T) {
	coord := NewCoordinator()
	coord.Start()
	defer coord.Shutdown()

	slow := NewSession(models.NewSession("pipe", "go-test"), nil, coord, 1)
	if err := coord.Register(slow); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := coord.Apply(ctx, json.RawMessage(`[]`), nil); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	if _, err := coord.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got := len(slow.Send); got != 1 {
		t.Errorf("queue should hold only the init frame, got %d", got)
	}
}
