package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/queue"
)

type mockWriter struct {
	created []*models.Notification
	err     error
}

func (m *mockWriter) Create(ctx context.Context, userID uuid.UUID, ntype, title, message string, data any) (*models.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	n := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
	}
	m.created = append(m.created, n)
	return n, nil
}

type mockPusher struct {
	sent []string
}

func (m *mockPusher) SendToUser(userID uuid.UUID, event string, data any) bool {
	m.sent = append(m.sent, event)
	return true
}

func newTestConsumer() (*Consumer, *mockWriter, *mockPusher) {
	writer := &mockWriter{}
	pusher := &mockPusher{}
	c := NewConsumer(ConsumerConfig{Queue: "notifications"}, writer, pusher)
	return c, writer, pusher
}

func TestProcessReportProcessedRemover(t *testing.T) {
	c, writer, _ := newTestConsumer()
	reportID := uuid.New()
	petID := uuid.New()

	n, wsEvent, err := c.process(context.Background(), queue.NotificationEvent{
		Type:     queue.EventReportProcessed,
		UserID:   uuid.New(),
		ReportID: &reportID,
		PetID:    &petID,
		PetName:  "Rex",
		Action:   models.ReportStatusRemove,
	})
	require.NoError(t, err)

	assert.Equal(t, "report_processed", wsEvent)
	assert.Equal(t, models.NotificationTypeReportProcessed, n.Type)
	assert.Equal(t, "Pet Removido", n.Title)
	assert.Contains(t, n.Message, "Rex")
	assert.Contains(t, n.Message, "removido")
	require.Len(t, writer.created, 1)
}

func TestProcessReportProcessedDefaultAction(t *testing.T) {
	c, _, _ := newTestConsumer()

	n, _, err := c.process(context.Background(), queue.NotificationEvent{
		Type:    queue.EventReportProcessed,
		UserID:  uuid.New(),
		PetName: "Rex",
		Action:  models.ReportStatusKeep,
	})
	require.NoError(t, err)
	assert.Equal(t, "Report Processado", n.Title)
}

func TestProcessPetAdopted(t *testing.T) {
	c, _, _ := newTestConsumer()

	n, wsEvent, err := c.process(context.Background(), queue.NotificationEvent{
		Type:    queue.EventPetAdopted,
		UserID:  uuid.New(),
		PetName: "Luna",
		Adopter: "Maria",
	})
	require.NoError(t, err)

	assert.Equal(t, "notification", wsEvent)
	assert.Equal(t, models.NotificationTypePetAdopted, n.Type)
	assert.Equal(t, "Pet Adotado!", n.Title)
	assert.Contains(t, n.Message, "Luna")
}

func TestProcessUserMessage(t *testing.T) {
	c, _, _ := newTestConsumer()

	n, wsEvent, err := c.process(context.Background(), queue.NotificationEvent{
		Type:    queue.EventUserMessage,
		UserID:  uuid.New(),
		Title:   "Bem-vindo",
		Message: "Olá!",
	})
	require.NoError(t, err)

	assert.Equal(t, "notification", wsEvent)
	assert.Equal(t, "Bem-vindo", n.Title)
	assert.Equal(t, "Olá!", n.Message)
}

func TestProcessUnknownTypeDropsWithoutStore(t *testing.T) {
	c, writer, _ := newTestConsumer()

	_, _, err := c.process(context.Background(), queue.NotificationEvent{
		Type:   "mystery_event",
		UserID: uuid.New(),
	})
	require.ErrorIs(t, err, errUnknownType)
	assert.Empty(t, writer.created)
}

func TestProcessPropagatesStoreError(t *testing.T) {
	c, writer, _ := newTestConsumer()
	writer.err = errors.New("db indisponível")

	_, _, err := c.process(context.Background(), queue.NotificationEvent{
		Type:   queue.EventPetAdopted,
		UserID: uuid.New(),
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, errUnknownType)
}
