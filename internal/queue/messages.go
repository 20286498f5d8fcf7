package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы событий в очереди уведомлений.
const (
	EventReportProcessed = "report_processed"
	EventPetAdopted      = "pet_adopted"
	EventUserMessage     = "user_message"
)

// ModerationRequest описывает сообщение очереди reportQueue: жалоба, ожидающая
// классификации. Неизменяемое, доставляется at-least-once, порядок не гарантирован.
type ModerationRequest struct {
	PetID      uuid.UUID `json:"petId"`
	UserID     uuid.UUID `json:"userId"`
	ReportText string    `json:"reportText"`
	ReportID   uuid.UUID `json:"reportId"`
}

// StatusUpdate описывает сообщение очереди reportStatus: решение модерации,
// которое основной API должен применить к жалобе и питомцу.
type StatusUpdate struct {
	ReportID uuid.UUID `json:"reportId"`
	Status   string    `json:"status"`
}

// NotificationEvent описывает событие очереди notifications. Набор полей зависит
// от типа, поэтому необязательные поля помечены omitempty.
type NotificationEvent struct {
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"userId"`
	Timestamp time.Time `json:"timestamp"`

	// report_processed
	ReportID *uuid.UUID `json:"reportId,omitempty"`
	Action   string     `json:"action,omitempty"`

	// report_processed, pet_adopted
	PetID   *uuid.UUID `json:"petId,omitempty"`
	PetName string     `json:"petName,omitempty"`

	// pet_adopted
	Adopter string `json:"adopter,omitempty"`

	// user_message
	Title     string          `json:"title,omitempty"`
	Message   string          `json:"message,omitempty"`
	ExtraData json.RawMessage `json:"extraData,omitempty"`
}
