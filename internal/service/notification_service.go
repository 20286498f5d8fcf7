package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
	"github.com/adotepet/adotepet-backend/internal/validation"
)

// NotificationStore описывает зависимости от хранилища уведомлений.
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, int, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	Stats(ctx context.Context) (map[string]int, error)
}

// NotificationPusher доставляет уведомление в открытое подключение.
type NotificationPusher interface {
	SendToUser(userID uuid.UUID, event string, data any) bool
}

// Pagination описывает страницу выборки.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NotificationService инкапсулирует работу с уведомлениями:
// создание из событий очереди, выборки и пометки для REST API.
type NotificationService struct {
	store  NotificationStore
	pusher NotificationPusher
}

// NewNotificationService создаёт сервис уведомлений.
func NewNotificationService(store NotificationStore, pusher NotificationPusher) *NotificationService {
	return &NotificationService{
		store:  store,
		pusher: pusher,
	}
}

// Create сохраняет уведомление. Произвольные данные сериализуются в JSON.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, ntype, title, message string, data any) (*models.Notification, error) {
	if userID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "userId é obrigatório")
	}
	if err := validation.ValidateLength("título", title, 1, validation.MaxTitleLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("mensagem", message, 1, validation.MaxMessageLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("notification service: не удалось сериализовать data: %w", err)
		}
		raw = encoded
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
		Data:    raw,
	}

	if err := s.store.Create(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}

// CreateAndPush сохраняет уведомление и сразу пытается доставить его
// вживую. Используется admin эндпоинтами. Возвращает флаг живой доставки.
func (s *NotificationService) CreateAndPush(ctx context.Context, userID uuid.UUID, ntype, title, message string, data any) (*models.Notification, bool, error) {
	notification, err := s.Create(ctx, userID, ntype, title, message, data)
	if err != nil {
		return nil, false, err
	}

	delivered := s.pusher.SendToUser(userID, "notification", notification)
	return notification, delivered, nil
}

// List возвращает страницу уведомлений пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) ([]models.Notification, *Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	notifications, total, err := s.store.List(ctx, userID, limit, offset, unreadOnly)
	if err != nil {
		return nil, nil, err
	}

	pages := total / limit
	if total%limit > 0 {
		pages++
	}

	return notifications, &Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}, nil
}

// MarkAsRead помечает уведомление пользователя прочитанным.
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.store.MarkAsRead(ctx, notificationID, userID)
}

// MarkAllAsRead помечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.MarkAllAsRead(ctx, userID)
}

// Delete удаляет уведомление пользователя.
func (s *NotificationService) Delete(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.store.Delete(ctx, notificationID, userID)
}

// CountUnread возвращает число непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

// Stats возвращает агрегаты по типам уведомлений.
func (s *NotificationService) Stats(ctx context.Context) (map[string]int, error) {
	return s.store.Stats(ctx)
}
