package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adotepet/adotepet-backend/internal/http/handlers/common"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/service"
	"github.com/adotepet/adotepet-backend/internal/ws"
)

// NotificationHandler предоставляет REST API уведомлений.
type NotificationHandler struct {
	svc *service.NotificationService
	hub *ws.Hub
}

// NewNotificationHandler создаёт хэндлер.
func NewNotificationHandler(svc *service.NotificationService, hub *ws.Hub) *NotificationHandler {
	return &NotificationHandler{svc: svc, hub: hub}
}

// List обрабатывает GET /api/notifications?page=&limit=&unreadOnly=.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page := common.ParseIntQuery(c, "page", 1)
	limit := common.ParseIntQuery(c, "limit", 20)
	unreadOnly := c.Query("unreadOnly") == "true"

	notifications, pagination, err := h.svc.List(c.Request.Context(), userID, page, limit, unreadOnly)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"pagination":    pagination,
	})
}

// UnreadCount обрабатывает GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	count, err := h.svc.CountUnread(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unreadCount": count})
}

// MarkRead обрабатывает PATCH /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	notificationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.svc.MarkAsRead(c.Request.Context(), notificationID, userID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notificação marcada como lida"})
}

// MarkAllRead обрабатывает PATCH /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	updated, err := h.svc.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// Delete обрабатывает DELETE /api/notifications/:id.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	notificationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.svc.Delete(c.Request.Context(), notificationID, userID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notificação removida"})
}

// AdminCreate обрабатывает POST /api/notifications (admin).
// Сохраняет уведомление и пытается доставить его вживую.
func (h *NotificationHandler) AdminCreate(c *gin.Context) {
	var req struct {
		UserID  string `json:"userId" binding:"required,uuid"`
		Type    string `json:"type"`
		Title   string `json:"title" binding:"required"`
		Message string `json:"message" binding:"required"`
		Data    any    `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if req.Type == "" {
		req.Type = models.NotificationTypeUserMessage
	}

	userID, _ := uuid.Parse(req.UserID)
	notification, delivered, err := h.svc.CreateAndPush(c.Request.Context(), userID, req.Type, req.Title, req.Message, req.Data)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"notification": notification,
		"delivered":    delivered,
	})
}

// SendTest обрабатывает POST /api/notifications/test.
// Отправляет тестовое уведомление самому себе.
func (h *NotificationHandler) SendTest(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	notification, delivered, err := h.svc.CreateAndPush(
		c.Request.Context(),
		userID,
		models.NotificationTypeUserMessage,
		"Notificação de teste",
		"Esta é uma notificação de teste.",
		nil,
	)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"notification": notification,
		"delivered":    delivered,
	})
}

// Stats обрабатывает GET /api/notifications/stats (admin).
// Объединяет агрегаты из БД и статистику живых подключений.
func (h *NotificationHandler) Stats(c *gin.Context) {
	byType, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"byType":     byType,
		"websockets": h.hub.Stats(),
	})
}
