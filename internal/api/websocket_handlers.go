package api

import (
	"net/http"
)

// HandleBoardWebSocket upgrades a board client connection.
func (h *Handler) HandleBoardWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsHandler.ServeHTTP(w, r)
}
