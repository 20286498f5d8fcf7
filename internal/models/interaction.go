package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InteractionFavorited = "FAVORITED"
	InteractionDiscarded = "DISCARDED"
)

// PetInteraction описывает реакцию пользователя на питомца в ленте.
// Пара (user_id, pet_id) уникальна, повторная реакция перезаписывает тип.
type PetInteraction struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	PetID     uuid.UUID `db:"pet_id" json:"pet_id"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
