package services

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	"whiteboard/internal/shape"
)

func testOptions() RenderOptions {
	return RenderOptions{Width: 64, Height: 48, Background: "#ffffff"}
}

func TestRenderProducesPNG(t *testing.T) {
	svc := NewRenderService(testOptions(), 2, 4)
	svc.Start()
	defer svc.Shutdown()

	list := shape.List{
		shape.Rect{ID: "r", X: 4, Y: 4, W: 20, H: 10, Color: "#ff0000"},
		shape.Path{ID: "p", Points: []shape.Point{{X: 1, Y: 1}, {X: 40, Y: 30}}, Color: "#000000", Width: 2},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, err := svc.Render(ctx, list)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("unexpected size %v", b)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	svc := NewRenderService(testOptions(), 1, 1)
	svc.Start()
	defer svc.Shutdown()

	list := shape.List{shape.Circle{ID: "c", Center: shape.Point{X: 32, Y: 24}, Radius: 10, Color: "#0000ff"}}
	ctx := context.Background()
	first, err := svc.Render(ctx, list)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := svc.Render(ctx, list)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("rendering the same list twice should give identical bytes")
	}
}

func TestRenderAfterShutdown(t *testing.T) {
	svc := NewRenderService(testOptions(), 1, 1)
	svc.Start()
	svc.Shutdown()
	svc.Shutdown()

	if _, err := svc.Render(context.Background(), nil); !errors.Is(err, ErrRenderQueueClosed) {
		t.Fatalf("expected ErrRenderQueueClosed, got %v", err)
	}
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	// Not started: the job can only wait in the queue.
	svc := NewRenderService(testOptions(), 1, 1)
	defer svc.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := svc.Render(ctx, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if svc.GetQueueLength() != 1 {
		t.Errorf("expected the abandoned job to stay queued, got %d", svc.GetQueueLength())
	}
}
