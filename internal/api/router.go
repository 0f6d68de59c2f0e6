package api

import (
	"github.com/gorilla/mux"

	"whiteboard/internal/middleware"
)

func SetupRoutes(h *Handler, allowedOrigins []string) *mux.Router {
	r := mux.NewRouter()

	// Middleware runs in order - tracing first, then recovery, then CORS
	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.ErrorRecoveryMiddleware)
	r.Use(middleware.CORSMiddleware(allowedOrigins))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.Health).Methods("GET", "OPTIONS")
	api.HandleFunc("/shapes", h.GetShapes).Methods("GET", "OPTIONS")
	api.HandleFunc("/board.png", h.GetBoardPNG).Methods("GET", "OPTIONS")

	// WebSocket routes. /socket is the path older browser clients dial.
	r.HandleFunc("/ws", h.HandleBoardWebSocket)
	r.HandleFunc("/socket", h.HandleBoardWebSocket)

	return r
}
