package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
)

type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add добавляет питомца в избранное. Повторное добавление идемпотентно.
func (r *FavoriteRepository) Add(ctx context.Context, favorite *models.Favorite) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO favorites (user_id, pet_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, pet_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, created_at
	`, favorite.UserID, favorite.PetID).
		Scan(&favorite.ID, &favorite.CreatedAt)
	if err != nil {
		return fmt.Errorf("favorite repository: add %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, petID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND pet_id = $2
	`, userID, petID)
	if err != nil {
		return fmt.Errorf("favorite repository: remove %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("favorite repository: remove rows affected %w", err)
	}
	if rowsAffected == 0 {
		return apperror.New(apperror.ErrCodeNotFound, "favorito não encontrado")
	}

	return nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.SelectContext(ctx, &favorites, `
		SELECT * FROM favorites WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("favorite repository: list by user %w", err)
	}
	return favorites, nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, petID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM favorites WHERE user_id = $1 AND pet_id = $2
	`, userID, petID)
	if err != nil {
		return false, fmt.Errorf("favorite repository: exists %w", err)
	}
	return count > 0, nil
}
