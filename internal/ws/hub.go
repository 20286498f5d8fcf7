package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adotepet/adotepet-backend/internal/logger"
)

// Hub ведёт реестр живых подключений: один пользователь, одно подключение.
// Повторная регистрация того же пользователя вытесняет старое подключение.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	log     *logrus.Entry
}

// NewHub создаёт пустой реестр подключений.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
		log:     logger.WithComponent("ws.hub"),
	}
}

// Register привязывает клиента к пользователю. Действует правило
// «последняя регистрация выигрывает»: предыдущее подключение закрывается.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	previous := h.clients[client.userID]
	h.clients[client.userID] = client
	h.mu.Unlock()

	if previous != nil && previous != client {
		previous.close()
		h.log.WithField("userId", client.userID).Info("старое подключение вытеснено новым")
	}

	h.log.WithField("userId", client.userID).Info("пользователь зарегистрирован")
}

// Unregister удаляет клиента из реестра. Запись удаляется только если
// она всё ещё указывает на этого клиента: вытесненное подключение
// не должно снести регистрацию своего преемника.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.userID]; ok && current == client {
		delete(h.clients, client.userID)
		h.log.WithField("userId", client.userID).Info("пользователь отключён")
	}
}

// SendToUser отправляет событие пользователю, если тот подключён.
// Возвращает true при успешной постановке в очередь отправки.
func (h *Hub) SendToUser(userID uuid.UUID, event string, data any) bool {
	payload := map[string]any{
		"type": event,
		"data": data,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.Errorf("не удалось сериализовать событие %s: %v", event, err)
		return false
	}

	h.mu.RLock()
	client := h.clients[userID]
	h.mu.RUnlock()

	if client == nil {
		h.log.WithField("userId", userID).Debug("пользователь не подключён")
		return false
	}

	select {
	case client.send <- raw:
		return true
	default:
		// Буфер клиента переполнен, подключение считается мёртвым.
		client.close()
		h.log.WithField("userId", userID).Warn("буфер отправки переполнен, подключение закрыто")
		return false
	}
}

// Broadcast отправляет событие всем подключённым пользователям.
func (h *Hub) Broadcast(event string, data any) {
	h.mu.RLock()
	users := make([]uuid.UUID, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	h.mu.RUnlock()

	for _, userID := range users {
		h.SendToUser(userID, event, data)
	}
}

// Stats возвращает статистику подключений для admin эндпоинта.
func (h *Hub) Stats() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}

	return map[string]any{
		"connectedUsers": len(h.clients),
		"users":          users,
	}
}
