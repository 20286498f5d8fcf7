package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/adotepet/adotepet-backend/internal/models"
)

// FavoriteStore описывает зависимости от хранилища избранного.
type FavoriteStore interface {
	Add(ctx context.Context, favorite *models.Favorite) error
	Remove(ctx context.Context, userID, petID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Favorite, error)
	Exists(ctx context.Context, userID, petID uuid.UUID) (bool, error)
}

// FavoritePetStore проверяет существование питомца.
type FavoritePetStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
}

// FavoriteService управляет избранными питомцами пользователя.
type FavoriteService struct {
	favorites FavoriteStore
	pets      FavoritePetStore
}

// NewFavoriteService создаёт сервис избранного.
func NewFavoriteService(favorites FavoriteStore, pets FavoritePetStore) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		pets:      pets,
	}
}

// Add добавляет питомца в избранное пользователя.
func (s *FavoriteService) Add(ctx context.Context, userID, petID uuid.UUID) (*models.Favorite, error) {
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return nil, err
	}

	favorite := &models.Favorite{
		UserID: userID,
		PetID:  petID,
	}

	if err := s.favorites.Add(ctx, favorite); err != nil {
		return nil, err
	}

	return favorite, nil
}

// Remove убирает питомца из избранного.
func (s *FavoriteService) Remove(ctx context.Context, userID, petID uuid.UUID) error {
	return s.favorites.Remove(ctx, userID, petID)
}

// ListByUser возвращает избранных питомцев пользователя.
func (s *FavoriteService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Favorite, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.favorites.ListByUser(ctx, userID, limit, offset)
}

// Exists проверяет, в избранном ли питомец у пользователя.
func (s *FavoriteService) Exists(ctx context.Context, userID, petID uuid.UUID) (bool, error) {
	return s.favorites.Exists(ctx, userID, petID)
}
