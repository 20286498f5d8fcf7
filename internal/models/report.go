package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы жалобы. PENDING назначается при создании, остальные значения
// приходят от модерации и являются терминальными.
const (
	ReportStatusPending      = "PENDING"
	ReportStatusRemove       = "REMOVER"
	ReportStatusDeactivate   = "INATIVAR"
	ReportStatusKeep         = "MANTER"
	ReportStatusUndetermined = "INDETERMINADO"
)

// ValidReportStatus проверяет, что статус входит в список допустимых.
func ValidReportStatus(status string) bool {
	switch status {
	case ReportStatusPending, ReportStatusRemove, ReportStatusDeactivate,
		ReportStatusKeep, ReportStatusUndetermined:
		return true
	}
	return false
}

// Report описывает жалобу пользователя на объявление о питомце.
type Report struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PetID      uuid.UUID `db:"pet_id" json:"pet_id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	ReportText string    `db:"report_text" json:"report_text"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
