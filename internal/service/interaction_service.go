package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
	"github.com/adotepet/adotepet-backend/internal/validation"
)

// InteractionStore описывает зависимости от хранилища взаимодействий.
type InteractionStore interface {
	Upsert(ctx context.Context, interaction *models.PetInteraction) error
	ListByUser(ctx context.Context, userID uuid.UUID, interactionType string, limit, offset int) ([]models.PetInteraction, error)
	Delete(ctx context.Context, userID, petID uuid.UUID) error
}

// InteractionPetStore проверяет существование питомца.
type InteractionPetStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
}

// InteractionService записывает реакции пользователя на питомцев в ленте.
type InteractionService struct {
	interactions InteractionStore
	pets         InteractionPetStore
}

// NewInteractionService создаёт сервис взаимодействий.
func NewInteractionService(interactions InteractionStore, pets InteractionPetStore) *InteractionService {
	return &InteractionService{
		interactions: interactions,
		pets:         pets,
	}
}

// Record сохраняет реакцию пользователя на питомца.
func (s *InteractionService) Record(ctx context.Context, userID, petID uuid.UUID, interactionType string) (*models.PetInteraction, error) {
	if err := validation.ValidateInteractionType(interactionType); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return nil, err
	}

	interaction := &models.PetInteraction{
		UserID: userID,
		PetID:  petID,
		Type:   interactionType,
	}

	if err := s.interactions.Upsert(ctx, interaction); err != nil {
		return nil, err
	}

	return interaction, nil
}

// ListByUser возвращает взаимодействия пользователя, опционально по типу.
func (s *InteractionService) ListByUser(ctx context.Context, userID uuid.UUID, interactionType string, limit, offset int) ([]models.PetInteraction, error) {
	if interactionType != "" {
		if err := validation.ValidateInteractionType(interactionType); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.interactions.ListByUser(ctx, userID, interactionType, limit, offset)
}

// Remove убирает реакцию, возвращая питомца в ленту.
func (s *InteractionService) Remove(ctx context.Context, userID, petID uuid.UUID) error {
	return s.interactions.Delete(ctx, userID, petID)
}
