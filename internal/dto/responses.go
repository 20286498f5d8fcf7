package dto

import "github.com/adotepet/adotepet-backend/internal/models"

// ErrorResponse стандартный формат ошибки API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse стандартный формат успешного ответа с сообщением.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Link единичная HATEOAS ссылка.
type Link struct {
	Href string `json:"href"`
}

// PetLinks навигационные ссылки анкеты питомца.
type PetLinks struct {
	Self  Link `json:"self"`
	Owner Link `json:"owner"`
}

// PetResponse анкета питомца с HATEOAS ссылками.
type PetResponse struct {
	*models.Pet
	Links PetLinks `json:"_links"`
}

// ListLinks навигационные ссылки страницы списка.
type ListLinks struct {
	Self string  `json:"self"`
	Next *string `json:"next"`
	Prev *string `json:"prev"`
}

// NewPetResponse оборачивает анкету ссылками на ресурс и владельца.
func NewPetResponse(pet *models.Pet, baseURL string) *PetResponse {
	return &PetResponse{
		Pet: pet,
		Links: PetLinks{
			Self:  Link{Href: baseURL + "/api/pets/" + pet.ID.String()},
			Owner: Link{Href: baseURL + "/api/users/" + pet.OwnerID.String()},
		},
	}
}
