package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/rutgers-seed/proposal-portal/internal/http/middleware"
	"github.com/rutgers-seed/proposal-portal/internal/logger"
	"github.com/rutgers-seed/proposal-portal/internal/ws"
)

// WSHandler поток событий по заявкам для админки.
type WSHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler allowedOrigins пустой означает любой origin (режим разработки).
func NewWSHandler(hub *ws.Hub, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// Handle обслуживает GET /api/admin/ws?token=... Сессию уже проверил AdminSessionMiddleware.
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Entry(logrus.Fields{"error": err.Error()}).Warn("ws: не удалось установить соединение")
		return
	}

	client := ws.NewClient(conn, h.hub, c.GetString(middleware.ContextAdminEmailKey))
	h.hub.Register(client)
	client.Run()
}
