package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/adotepet/adotepet-backend/internal/logger"
	"github.com/adotepet/adotepet-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
// Пользователь привязывается к соединению событием register уже
// внутри соединения, поэтому upgrade не требует авторизации.
type WSHandler struct {
	hub      *ws.Hub
	marker   ws.NotificationMarker
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер.
func NewWSHandler(hub *ws.Hub, marker ws.NotificationMarker) *WSHandler {
	return &WSHandler{
		hub:    hub,
		marker: marker,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle обслуживает GET /ws.
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithComponent("ws.handler").Errorf("не удалось обновить соединение: %v", err)
		return
	}

	// Контекст запроса отменяется после hijack, поэтому соединение
	// живёт на собственном контексте.
	client := ws.NewClient(conn, h.hub, h.marker)
	go client.Run(context.Background())
}
