package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/adotepet/adotepet-backend/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 * 1024
)

// NotificationMarker помечает уведомление прочитанным по событию клиента.
type NotificationMarker interface {
	MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
}

// clientEvent описывает входящее сообщение клиента: register или mark_read.
type clientEvent struct {
	Type string `json:"type"`
	Data struct {
		UserID         uuid.UUID `json:"userId"`
		NotificationID uuid.UUID `json:"notificationId"`
	} `json:"data"`
}

// Client представляет одно подключение WebSocket. До события register
// клиент анонимен и не получает уведомлений.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	marker NotificationMarker
	log    *logrus.Entry

	userID     uuid.UUID
	registered bool

	send      chan []byte
	closeOnce sync.Once
}

// NewClient создаёт клиента поверх принятого подключения.
func NewClient(conn *websocket.Conn, hub *Hub, marker NotificationMarker) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		marker: marker,
		log:    logger.WithComponent("ws.client"),
		send:   make(chan []byte, 16),
	}
}

// Run обслуживает подключение до его закрытия.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

// close закрывает подключение ровно один раз. Канал send не закрывается:
// хаб может держать ссылку на вытесненного клиента и писать в него,
// запись в закрытый канал уронила бы процесс.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// readPump читает события клиента до закрытия подключения.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if c.registered {
			c.hub.Unregister(c)
		}
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debugf("подключение закрыто с ошибкой: %v", err)
			}
			return
		}

		var event clientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.log.Debugf("непонятное сообщение клиента: %v", err)
			continue
		}

		switch event.Type {
		case "register":
			c.handleRegister(event.Data.UserID)
		case "mark_read":
			c.handleMarkRead(ctx, event.Data.NotificationID)
		default:
			c.log.Debugf("неизвестный тип события клиента: %s", event.Type)
		}
	}
}

// handleRegister привязывает подключение к пользователю.
func (c *Client) handleRegister(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}

	c.userID = userID
	c.registered = true
	c.hub.Register(c)

	confirmation, _ := json.Marshal(map[string]any{
		"type": "registered",
		"data": map[string]any{"success": true, "userId": userID},
	})
	select {
	case c.send <- confirmation:
	default:
	}
}

// handleMarkRead помечает уведомление прочитанным от имени
// зарегистрированного пользователя.
func (c *Client) handleMarkRead(ctx context.Context, notificationID uuid.UUID) {
	if !c.registered || notificationID == uuid.Nil {
		return
	}

	if err := c.marker.MarkAsRead(ctx, notificationID, c.userID); err != nil {
		c.log.WithFields(logrus.Fields{
			"userId":         c.userID,
			"notificationId": notificationID,
		}).Errorf("не удалось пометить уведомление прочитанным: %v", err)
	}
}

// writePump отправляет исходящие сообщения и пинги.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
