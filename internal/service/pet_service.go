package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adotepet/adotepet-backend/internal/logger"
	"github.com/adotepet/adotepet-backend/internal/metrics"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
	"github.com/adotepet/adotepet-backend/internal/repository"
	"github.com/adotepet/adotepet-backend/internal/validation"
)

// PetStore описывает зависимости PetService от хранилища анкет.
type PetStore interface {
	Create(ctx context.Context, pet *models.Pet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	List(ctx context.Context, filter repository.PetFilter) ([]models.Pet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Pet, error)
	ListFeed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Pet, error)
	Update(ctx context.Context, pet *models.Pet) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetAdopted(ctx context.Context, id uuid.UUID, adopted bool) error
	AddPhoto(ctx context.Context, photo *models.PetPhoto) error
	DeletePhoto(ctx context.Context, photoID, petID uuid.UUID) error
}

// PhotoStorage сохраняет файлы фотографий и отдаёт публичный URL.
type PhotoStorage interface {
	Save(ctx context.Context, fileName string, content io.Reader) (string, error)
}

// AdoptionNotifier публикует событие об усыновлении питомца.
type AdoptionNotifier interface {
	PublishPetAdopted(ctx context.Context, ownerID, petID uuid.UUID, petName, adopter string) error
}

// PetInput содержит данные анкеты питомца.
type PetInput struct {
	Name        string
	Species     string
	Size        string
	Age         int
	Sex         string
	Castrated   bool
	Dewormed    bool
	Vaccinated  bool
	Description *string
}

// PetService инкапсулирует бизнес-логику анкет питомцев.
type PetService struct {
	pets     PetStore
	storage  PhotoStorage
	notifier AdoptionNotifier
	log      *logrus.Entry
}

// NewPetService создаёт сервис анкет питомцев.
func NewPetService(pets PetStore, storage PhotoStorage, notifier AdoptionNotifier) *PetService {
	return &PetService{
		pets:     pets,
		storage:  storage,
		notifier: notifier,
		log:      logger.WithComponent("service.pet"),
	}
}

// Create создаёт анкету питомца.
func (s *PetService) Create(ctx context.Context, ownerID uuid.UUID, in PetInput) (*models.Pet, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	pet := &models.Pet{
		OwnerID:     ownerID,
		Name:        in.Name,
		Species:     in.Species,
		Size:        in.Size,
		Age:         in.Age,
		Sex:         in.Sex,
		Castrated:   in.Castrated,
		Dewormed:    in.Dewormed,
		Vaccinated:  in.Vaccinated,
		Description: in.Description,
	}

	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, err
	}

	return pet, nil
}

// GetByID возвращает анкету вместе с фотографиями.
func (s *PetService) GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	return s.pets.GetByID(ctx, id)
}

// List возвращает анкеты по фильтру.
func (s *PetService) List(ctx context.Context, filter repository.PetFilter) ([]models.Pet, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.pets.List(ctx, filter)
}

// ListByOwner возвращает анкеты пользователя.
func (s *PetService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Pet, error) {
	return s.pets.ListByOwner(ctx, ownerID)
}

// ListFeed возвращает ленту питомцев для пользователя.
func (s *PetService) ListFeed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Pet, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.pets.ListFeed(ctx, userID, limit, offset)
}

// Update обновляет анкету. Разрешено только владельцу.
func (s *PetService) Update(ctx context.Context, petID, requesterID uuid.UUID, in PetInput) (*models.Pet, error) {
	pet, err := s.ownedPet(ctx, petID, requesterID)
	if err != nil {
		return nil, err
	}

	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	pet.Name = in.Name
	pet.Species = in.Species
	pet.Size = in.Size
	pet.Age = in.Age
	pet.Sex = in.Sex
	pet.Castrated = in.Castrated
	pet.Dewormed = in.Dewormed
	pet.Vaccinated = in.Vaccinated
	pet.Description = in.Description

	if err := s.pets.Update(ctx, pet); err != nil {
		return nil, err
	}

	return pet, nil
}

// Delete удаляет анкету. Разрешено только владельцу.
func (s *PetService) Delete(ctx context.Context, petID, requesterID uuid.UUID) error {
	if _, err := s.ownedPet(ctx, petID, requesterID); err != nil {
		return err
	}
	return s.pets.Delete(ctx, petID)
}

// MarkAdopted помечает питомца усыновлённым и уведомляет владельца.
// Неудача публикации уведомления проглатывается.
func (s *PetService) MarkAdopted(ctx context.Context, petID, requesterID uuid.UUID, adopter string) (*models.Pet, error) {
	pet, err := s.ownedPet(ctx, petID, requesterID)
	if err != nil {
		return nil, err
	}

	if err := s.pets.SetAdopted(ctx, petID, true); err != nil {
		return nil, err
	}
	pet.Adopted = true

	if err := s.notifier.PublishPetAdopted(ctx, pet.OwnerID, pet.ID, pet.Name, adopter); err != nil {
		s.log.WithField("petId", pet.ID).
			Errorf("не удалось опубликовать событие усыновления: %v", err)
		metrics.SwallowedFailures.WithLabelValues("pet_adopted_publish").Inc()
	}

	return pet, nil
}

// AddPhoto сохраняет файл фотографии и привязывает его к анкете.
func (s *PetService) AddPhoto(ctx context.Context, petID, requesterID uuid.UUID, fileName string, content io.Reader) (*models.PetPhoto, error) {
	if _, err := s.ownedPet(ctx, petID, requesterID); err != nil {
		return nil, err
	}

	url, err := s.storage.Save(ctx, fileName, content)
	if err != nil {
		return nil, err
	}

	photo := &models.PetPhoto{
		PetID: petID,
		URL:   url,
	}

	if err := s.pets.AddPhoto(ctx, photo); err != nil {
		return nil, err
	}

	return photo, nil
}

// DeletePhoto удаляет фотографию анкеты.
func (s *PetService) DeletePhoto(ctx context.Context, petID, photoID, requesterID uuid.UUID) error {
	if _, err := s.ownedPet(ctx, petID, requesterID); err != nil {
		return err
	}
	return s.pets.DeletePhoto(ctx, photoID, petID)
}

// ownedPet возвращает анкету, проверяя право запрашивающего на неё.
func (s *PetService) ownedPet(ctx context.Context, petID, requesterID uuid.UUID) (*models.Pet, error) {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if pet.OwnerID != requesterID {
		return nil, apperror.ErrForbidden
	}
	return pet, nil
}

// validateInput проверяет поля анкеты.
func (s *PetService) validateInput(in PetInput) error {
	if err := validation.ValidateLength("nome", in.Name, validation.MinPetNameLength, validation.MaxPetNameLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePetSex(in.Sex); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePetSize(in.Size); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.Age < 0 || in.Age > validation.MaxPetAge {
		return apperror.New(apperror.ErrCodeValidation, "idade inválida")
	}
	if in.Description != nil {
		if err := validation.ValidateLength("descrição", *in.Description, 0, validation.MaxDescriptionLength); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	return nil
}
