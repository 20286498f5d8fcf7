package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы сохранённых уведомлений.
const (
	NotificationTypeReportProcessed = "REPORT_PROCESSED"
	NotificationTypePetAdopted      = "PET_ADOPTED"
	NotificationTypeUserMessage     = "USER_MESSAGE"
)

// Notification описывает уведомление пользователя. Создаётся консьюмером
// очереди и после этого меняется только действиями пользователя.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      string          `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Message   string          `db:"message" json:"message"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
