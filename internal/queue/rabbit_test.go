package queue

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadLetterQueueName(t *testing.T) {
	assert.Equal(t, "reportQueue.dlq", DeadLetterQueue("reportQueue"))
}

func TestDeliveryAttempts(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int32
	}{
		{"no headers", nil, 1},
		{"missing header", amqp.Table{}, 1},
		{"int32", amqp.Table{HeaderDeliveryAttempts: int32(3)}, 3},
		{"int64 from broker roundtrip", amqp.Table{HeaderDeliveryAttempts: int64(4)}, 4},
		{"unexpected type", amqp.Table{HeaderDeliveryAttempts: "7"}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeliveryAttempts(amqp.Delivery{Headers: tc.headers}))
		})
	}
}

func TestModerationRequestWireFormat(t *testing.T) {
	req := ModerationRequest{
		PetID:      uuid.New(),
		UserID:     uuid.New(),
		ReportText: "anúncio suspeito",
		ReportID:   uuid.New(),
	}

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	// Поля именуются в camelCase, как их ожидает воркер модерации.
	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Contains(t, wire, "petId")
	assert.Contains(t, wire, "userId")
	assert.Contains(t, wire, "reportText")
	assert.Contains(t, wire, "reportId")
}

func TestNotificationEventOmitsEmptyOptionalFields(t *testing.T) {
	event := NotificationEvent{
		Type:   EventUserMessage,
		UserID: uuid.New(),
		Title:  "Olá",
	}

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.NotContains(t, wire, "reportId")
	assert.NotContains(t, wire, "petId")
}
