package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uuid.UUID) *Client {
	c := NewClient(nil, hub, nil)
	c.userID = userID
	c.registered = true
	return c
}

func TestSendToUserOffline(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.SendToUser(uuid.New(), "notification", nil))
}

func TestSendToUserDeliversEnvelope(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	client := newTestClient(hub, userID)
	hub.Register(client)

	ok := hub.SendToUser(userID, "notification", map[string]any{"title": "Pet Adotado!"})
	require.True(t, ok)

	raw := <-client.send
	var envelope struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, "notification", envelope.Type)
	assert.Equal(t, "Pet Adotado!", envelope.Data["title"])
}

func TestRegisterLastWins(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	first := newTestClient(hub, userID)
	second := newTestClient(hub, userID)

	hub.Register(first)
	hub.Register(second)

	require.True(t, hub.SendToUser(userID, "notification", nil))
	select {
	case <-second.send:
	default:
		t.Fatal("событие должно уйти новому подключению")
	}
	assert.Empty(t, first.send)
}

func TestUnregisterStaleClientKeepsSuccessor(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	first := newTestClient(hub, userID)
	second := newTestClient(hub, userID)

	hub.Register(first)
	hub.Register(second)

	// Вытесненное подключение завершает readPump и дерегистрируется,
	// но не должно снести регистрацию преемника.
	hub.Unregister(first)

	assert.True(t, hub.SendToUser(userID, "notification", nil))
}

func TestUnregisterRemovesClient(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	client := newTestClient(hub, userID)

	hub.Register(client)
	hub.Unregister(client)

	assert.False(t, hub.SendToUser(userID, "notification", nil))
}

func TestSendToUserFullBuffer(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	client := newTestClient(hub, userID)
	hub.Register(client)

	for i := 0; i < cap(client.send); i++ {
		require.True(t, hub.SendToUser(userID, "notification", i))
	}

	assert.False(t, hub.SendToUser(userID, "notification", "overflow"))
}

func TestStats(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	hub.Register(newTestClient(hub, userID))

	stats := hub.Stats()
	assert.Equal(t, 1, stats["connectedUsers"])
	assert.Contains(t, stats["users"].([]uuid.UUID), userID)
}
