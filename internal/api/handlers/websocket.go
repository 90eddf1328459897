package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/nineball/internal/ws"
)

// HandleMatchWebSocket handles real-time match communication
func HandleMatchWebSocket(h *ws.Handler) gin.HandlerFunc {
	return h.ServeWS
}
