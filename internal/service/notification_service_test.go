package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
	"github.com/adotepet/adotepet-backend/internal/service"
)

type mockNotificationStore struct {
	notifications map[uuid.UUID]*models.Notification
	markedRead    []uuid.UUID
}

func newMockNotificationStore() *mockNotificationStore {
	return &mockNotificationStore{notifications: make(map[uuid.UUID]*models.Notification)}
}

func (m *mockNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	m.notifications[n.ID] = n
	return nil
}

func (m *mockNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		return n, nil
	}
	return nil, apperror.ErrNotificationNotFound
}

func (m *mockNotificationStore) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, int, error) {
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *mockNotificationStore) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return apperror.ErrNotificationNotFound
	}
	n.IsRead = true
	m.markedRead = append(m.markedRead, id)
	return nil
}

func (m *mockNotificationStore) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return apperror.ErrNotificationNotFound
	}
	delete(m.notifications, id)
	return nil
}

func (m *mockNotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationStore) Stats(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int)
	for _, n := range m.notifications {
		out[n.Type]++
	}
	return out, nil
}

type mockNotificationPusher struct {
	delivered bool
	events    []string
}

func (m *mockNotificationPusher) SendToUser(userID uuid.UUID, event string, data any) bool {
	m.events = append(m.events, event)
	return m.delivered
}

func TestNotificationCreate(t *testing.T) {
	store := newMockNotificationStore()
	svc := service.NewNotificationService(store, &mockNotificationPusher{})
	userID := uuid.New()

	n, err := svc.Create(context.Background(), userID, models.NotificationTypeUserMessage, "Título", "Mensagem", map[string]string{"k": "v"})
	require.NoError(t, err)

	assert.Equal(t, userID, n.UserID)
	assert.JSONEq(t, `{"k":"v"}`, string(n.Data))
	assert.Len(t, store.notifications, 1)
}

func TestNotificationCreateValidation(t *testing.T) {
	svc := service.NewNotificationService(newMockNotificationStore(), &mockNotificationPusher{})

	_, err := svc.Create(context.Background(), uuid.Nil, models.NotificationTypeUserMessage, "Título", "Mensagem", nil)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Create(context.Background(), uuid.New(), models.NotificationTypeUserMessage, "", "Mensagem", nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestNotificationCreateAndPush(t *testing.T) {
	store := newMockNotificationStore()
	pusher := &mockNotificationPusher{delivered: true}
	svc := service.NewNotificationService(store, pusher)

	_, delivered, err := svc.CreateAndPush(context.Background(), uuid.New(), models.NotificationTypeUserMessage, "Título", "Mensagem", nil)
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.Equal(t, []string{"notification"}, pusher.events)
}

func TestNotificationListPagination(t *testing.T) {
	store := newMockNotificationStore()
	svc := service.NewNotificationService(store, &mockNotificationPusher{})
	userID := uuid.New()

	for i := 0; i < 25; i++ {
		_, err := svc.Create(context.Background(), userID, models.NotificationTypeUserMessage, "Título", "Mensagem", nil)
		require.NoError(t, err)
	}

	rows, pagination, err := svc.List(context.Background(), userID, 2, 10, false)
	require.NoError(t, err)

	assert.Len(t, rows, 10)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 25, pagination.Total)
	assert.Equal(t, 3, pagination.Pages)
}

func TestNotificationMarkAsReadScopedToUser(t *testing.T) {
	store := newMockNotificationStore()
	svc := service.NewNotificationService(store, &mockNotificationPusher{})
	owner := uuid.New()

	n, err := svc.Create(context.Background(), owner, models.NotificationTypeUserMessage, "Título", "Mensagem", nil)
	require.NoError(t, err)

	// Чужой пользователь не может пометить уведомление прочитанным.
	err = svc.MarkAsRead(context.Background(), n.ID, uuid.New())
	assert.True(t, apperror.IsNotFound(err))

	require.NoError(t, svc.MarkAsRead(context.Background(), n.ID, owner))
	count, err := svc.CountUnread(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}
