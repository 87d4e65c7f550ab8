package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/ws"
)

// HandleGameWebSocket handles real-time table communication
func HandleGameWebSocket(srv *ws.Server) gin.HandlerFunc {
	return srv.HandleWebSocket
}
