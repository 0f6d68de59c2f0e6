package main

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"whiteboard/internal/services/collaboration"
	"whiteboard/internal/shape"

	"github.com/gorilla/websocket"
)

func TestRootHasSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"discover", "render", "mcp"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("missing subcommand %s", name)
		}
	}
}

func TestRenderWritesBoardSnapshot(t *testing.T) {
	coord := collaboration.NewCoordinator(collaboration.WithInitialShapes(shape.List{
		shape.Rect{ID: "r", X: 2, Y: 2, W: 20, H: 20, Color: "#ff0000"},
	}))
	coord.Start()
	defer coord.Shutdown()
	server := httptest.NewServer(collaboration.NewWebSocketHandler(coord, []string{"*"}, 8))
	defer server.Close()

	out := filepath.Join(t.TempDir(), "board.png")
	var stdout bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetArgs([]string{"render",
		"--url", "ws" + strings.TrimPrefix(server.URL, "http") + "/ws",
		"-o", out, "--width", "40", "--height", "30",
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("unexpected size %v", b)
	}
	if !strings.Contains(stdout.String(), "Wrote 1 shapes") {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestSnapshotHandlerKeepsFirstInit(t *testing.T) {
	h := &snapshotHandler{got: make(chan shape.List, 1)}
	h.Init(shape.List{shape.Rect{ID: "first"}})
	h.Init(shape.List{shape.Rect{ID: "second"}})
	h.ApplyRemote(shape.List{shape.Rect{ID: "remote"}})

	if got := <-h.got; got[0].ShapeID() != "first" {
		t.Errorf("got %s", got[0].ShapeID())
	}
}

func TestAttachBoardAdoptsServerListBeforeEditing(t *testing.T) {
	seed := shape.Rect{ID: "seed", X: 1, Y: 1, W: 5, H: 5, Color: "#000"}
	coord := collaboration.NewCoordinator(collaboration.WithInitialShapes(shape.List{seed}))
	coord.Start()
	defer coord.Shutdown()
	server := httptest.NewServer(collaboration.NewWebSocketHandler(coord, []string{"*"}, 8))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b, c, err := attachBoard(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), 2*time.Second)
	if err != nil {
		t.Fatalf("attachBoard: %v", err)
	}
	defer c.Close()

	if ids := b.Shapes().IDs(); len(ids) != 1 || ids[0] != "seed" {
		t.Fatalf("board should hold the server list on return, got %v", ids)
	}

	b.Add(shape.Rect{ID: "added", X: 10, Y: 10, W: 5, H: 5, Color: "#f00"})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := coord.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		list, err := shape.Decode(snap)
		if err == nil && len(list) == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server should keep the seeded shape alongside the new one")
}

func TestAttachBoardTimesOutWithoutInit(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Never send shapes:init.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, _, err := attachBoard(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), 200*time.Millisecond); err == nil {
		t.Fatal("expected an error when the board never sends its shapes")
	}
}
