package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adotepet/adotepet-backend/internal/models"
)

// Константы валидации
const (
	MinNameLength        = 2
	MaxNameLength        = 100
	MinPetNameLength     = 1
	MaxPetNameLength     = 60
	MaxDescriptionLength = 2000
	MinReportTextLength  = 5
	MaxReportTextLength  = 2000
	MaxTitleLength       = 200
	MaxMessageLength     = 2000
	MaxPetAge            = 40
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s deve ter pelo menos %d caracteres", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s deve ter no máximo %d caracteres", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email é obrigatório")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("formato de email inválido")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("formato de email inválido")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 || !strings.Contains(domainPart, ".") {
		return fmt.Errorf("formato de email inválido")
	}

	return nil
}

// ValidatePetSex проверяет значение пола питомца.
func ValidatePetSex(sex string) error {
	switch sex {
	case models.PetSexMale, models.PetSexFemale:
		return nil
	}
	return fmt.Errorf("sexo deve ser %s ou %s", models.PetSexMale, models.PetSexFemale)
}

// ValidatePetSize проверяет значение размера питомца.
func ValidatePetSize(size string) error {
	switch size {
	case models.PetSizeSmall, models.PetSizeMedium, models.PetSizeLarge:
		return nil
	}
	return fmt.Errorf("porte deve ser %s, %s ou %s",
		models.PetSizeSmall, models.PetSizeMedium, models.PetSizeLarge)
}

// ValidateInteractionType проверяет тип взаимодействия с питомцем.
func ValidateInteractionType(interactionType string) error {
	switch interactionType {
	case models.InteractionFavorited, models.InteractionDiscarded:
		return nil
	}
	return fmt.Errorf("tipo de interação deve ser %s ou %s",
		models.InteractionFavorited, models.InteractionDiscarded)
}
