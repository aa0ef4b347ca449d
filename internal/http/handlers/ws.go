package handlers

import (
	"net/http"

	"reward_platform/internal/logger"
	"reward_platform/internal/service"
	"reward_platform/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSEvents upgrades the connection and streams wallet and task events to the
// authenticated account. The token comes via query parameter because browser
// websockets cannot set headers.
func (h *Handler) WSEvents(c *gin.Context) {
	token := c.Query("token")
	accountID, _, err := service.ParseJWT(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("ws upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(accountID, conn, h.Hub)
	go client.Run()
}
