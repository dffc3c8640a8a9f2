package handler

import (
	"net/http"
	"strings"

	"mchat/backend/internal/chathub"
	"mchat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and attaches it to the requested
// room. Identity comes from a bearer token (header or "token" query param);
// anything unverifiable connects as a guest.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	token := bearerToken(c)
	username, authenticated := h.Identity.Resolve(c.Request.Context(), token)

	room := c.Param("room")
	if room == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Room name is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed: %v", err)
		return
	}

	client := chathub.NewWebSocketClient(conn)
	session := h.Hub.Connect(c.Request.Context(), username, authenticated, room, client)

	// Blocks for the connection's lifetime; gin handlers run per-conn
	// goroutines already.
	client.Run(session)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
