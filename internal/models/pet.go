package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PetSexMale   = "MACHO"
	PetSexFemale = "FEMEA"

	PetSizeSmall  = "PEQUENO"
	PetSizeMedium = "MEDIO"
	PetSizeLarge  = "GRANDE"
)

// Pet описывает питомца, выставленного на усыновление.
type Pet struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Species     string    `db:"species" json:"species"`
	Size        string    `db:"size" json:"size"`
	Age         int       `db:"age" json:"age"`
	Sex         string    `db:"sex" json:"sex"`
	Castrated   bool      `db:"castrated" json:"castrated"`
	Dewormed    bool      `db:"dewormed" json:"dewormed"`
	Vaccinated  bool      `db:"vaccinated" json:"vaccinated"`
	Description *string   `db:"description" json:"description,omitempty"`
	Adopted     bool      `db:"adopted" json:"adopted"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Photos []PetPhoto `db:"-" json:"photos,omitempty"`
}

// PetPhoto описывает фотографию питомца в медиахранилище.
type PetPhoto struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PetID     uuid.UUID `db:"pet_id" json:"pet_id"`
	URL       string    `db:"url" json:"url"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
