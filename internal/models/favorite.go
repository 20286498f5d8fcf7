package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite связывает пользователя с питомцем, добавленным в избранное.
type Favorite struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	PetID     uuid.UUID `db:"pet_id" json:"pet_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
