package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"whiteboard/internal/middleware"
	"whiteboard/internal/services"
	"whiteboard/internal/services/collaboration"
	"whiteboard/internal/shape"

	"go.opentelemetry.io/otel/attribute"
)

// Handler handles HTTP requests
type Handler struct {
	board     BoardState // Interface defined in this package
	renderer  Renderer
	wsHandler http.Handler
}

func NewHandler(board BoardState, renderer Renderer, wsHandler http.Handler) *Handler {
	return &Handler{
		board:     board,
		renderer:  renderer,
		wsHandler: wsHandler,
	}
}

// Health reports liveness and the number of connected clients.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	clients, err := h.board.ClientCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"clients": clients,
	})
}

// GetShapes returns the authoritative shape list as stored.
func (h *Handler) GetShapes(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.board.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(snapshot)
}

// GetBoardPNG renders the current board through the render pool.
func (h *Handler) GetBoardPNG(w http.ResponseWriter, r *http.Request) {
	ctx, span := middleware.StartSpan(r.Context(), "Render.Snapshot")
	defer span.End()

	snapshot, err := h.board.Snapshot(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := shape.Decode(snapshot)
	if err != nil {
		// Unvalidated boards may hold lists this server cannot draw.
		middleware.AddSpanError(ctx, err)
		http.Error(w, "board holds an invalid shape list: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	span.SetAttributes(
		attribute.Int("board.shapes", len(list)),
		attribute.Int("render.queue_length", h.renderer.GetQueueLength()),
	)

	png, err := h.renderer.Render(ctx, list)
	if err != nil {
		middleware.AddSpanError(ctx, err)
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="whiteboard.png"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, collaboration.ErrShuttingDown), errors.Is(err, services.ErrRenderQueueClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	log.Printf("[%s] %s %s failed: %v", middleware.GetRequestID(r.Context()), r.Method, r.URL.Path, err)
	http.Error(w, err.Error(), status)
}
