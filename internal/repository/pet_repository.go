package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
	"github.com/adotepet/adotepet-backend/internal/repository/common"
)

// PetFilter задаёт параметры выборки питомцев.
type PetFilter struct {
	Species        string
	Size           string
	City           string
	IncludeAdopted bool
	Limit          int
	Offset         int
}

// PetRepository отвечает за работу с анкетами питомцев и их фотографиями.
type PetRepository struct {
	db *sqlx.DB
}

// NewPetRepository создаёт экземпляр репозитория.
func NewPetRepository(db *sqlx.DB) *PetRepository {
	return &PetRepository{db: db}
}

// Create создаёт анкету питомца.
func (r *PetRepository) Create(ctx context.Context, pet *models.Pet) error {
	query := `
		INSERT INTO pets (owner_id, name, species, size, age, sex, castrated, dewormed, vaccinated, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, adopted, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		pet.OwnerID,
		pet.Name,
		pet.Species,
		pet.Size,
		pet.Age,
		pet.Sex,
		pet.Castrated,
		pet.Dewormed,
		pet.Vaccinated,
		pet.Description,
	).Scan(&pet.ID, &pet.Adopted, &pet.CreatedAt, &pet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pet repository: create %w", err)
	}

	return nil
}

// GetByID возвращает питомца вместе с фотографиями.
func (r *PetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	pet, err := common.GetByID[models.Pet](ctx, r.db, "pets", id, apperror.ErrPetNotFound)
	if err != nil {
		return nil, err
	}

	photos, err := r.PhotosByPetID(ctx, pet.ID)
	if err != nil {
		return nil, err
	}
	pet.Photos = photos

	return pet, nil
}

// List возвращает питомцев по фильтру без фотографий.
func (r *PetRepository) List(ctx context.Context, filter PetFilter) ([]models.Pet, error) {
	query := `SELECT p.* FROM pets p WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if !filter.IncludeAdopted {
		query += " AND p.adopted = FALSE"
	}
	if filter.Species != "" {
		query += fmt.Sprintf(" AND p.species = $%d", argIndex)
		args = append(args, filter.Species)
		argIndex++
	}
	if filter.Size != "" {
		query += fmt.Sprintf(" AND p.size = $%d", argIndex)
		args = append(args, filter.Size)
		argIndex++
	}
	if filter.City != "" {
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM users u WHERE u.id = p.owner_id AND u.city = $%d)", argIndex)
		args = append(args, filter.City)
		argIndex++
	}

	query += " ORDER BY p.created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	var pets []models.Pet
	if err := r.db.SelectContext(ctx, &pets, query, args...); err != nil {
		return nil, fmt.Errorf("pet repository: list %w", err)
	}

	return pets, nil
}

// ListByOwner возвращает анкеты, созданные пользователем.
func (r *PetRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Pet, error) {
	var pets []models.Pet
	err := r.db.SelectContext(ctx, &pets, `
		SELECT * FROM pets WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("pet repository: list by owner %w", err)
	}
	return pets, nil
}

// ListFeed возвращает питомцев, с которыми пользователь ещё не взаимодействовал.
func (r *PetRepository) ListFeed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Pet, error) {
	var pets []models.Pet
	err := r.db.SelectContext(ctx, &pets, `
		SELECT p.* FROM pets p
		WHERE p.adopted = FALSE
		  AND p.owner_id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM pet_interactions i
			WHERE i.pet_id = p.id AND i.user_id = $1
		  )
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pet repository: list feed %w", err)
	}
	return pets, nil
}

// Update обновляет анкету питомца.
func (r *PetRepository) Update(ctx context.Context, pet *models.Pet) error {
	query := `
		UPDATE pets
		SET name = $2, species = $3, size = $4, age = $5, sex = $6,
			castrated = $7, dewormed = $8, vaccinated = $9, description = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		pet.ID,
		pet.Name,
		pet.Species,
		pet.Size,
		pet.Age,
		pet.Sex,
		pet.Castrated,
		pet.Dewormed,
		pet.Vaccinated,
		pet.Description,
	).Scan(&pet.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.ErrPetNotFound
		}
		return fmt.Errorf("pet repository: update %w", err)
	}

	return nil
}

// Delete удаляет анкету питомца вместе с фотографиями.
func (r *PetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pet_photos WHERE pet_id = $1`, id); err != nil {
			return fmt.Errorf("pet repository: delete photos %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("pet repository: delete %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("pet repository: delete rows affected %w", err)
		}
		if rowsAffected == 0 {
			return apperror.ErrPetNotFound
		}

		return nil
	})
}

// SetAdopted помечает питомца усыновлённым или снова доступным.
func (r *PetRepository) SetAdopted(ctx context.Context, id uuid.UUID, adopted bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE pets SET adopted = $2, updated_at = NOW() WHERE id = $1
	`, id, adopted)
	if err != nil {
		return fmt.Errorf("pet repository: set adopted %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pet repository: set adopted rows affected %w", err)
	}
	if rowsAffected == 0 {
		return apperror.ErrPetNotFound
	}

	return nil
}

// AddPhoto добавляет фотографию питомцу.
func (r *PetRepository) AddPhoto(ctx context.Context, photo *models.PetPhoto) error {
	query := `
		INSERT INTO pet_photos (pet_id, url, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), -1) + 1 FROM pet_photos WHERE pet_id = $1))
		RETURNING id, position, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, photo.PetID, photo.URL).
		Scan(&photo.ID, &photo.Position, &photo.CreatedAt)
	if err != nil {
		return fmt.Errorf("pet repository: add photo %w", err)
	}

	return nil
}

// PhotosByPetID возвращает фотографии питомца в порядке добавления.
func (r *PetRepository) PhotosByPetID(ctx context.Context, petID uuid.UUID) ([]models.PetPhoto, error) {
	var photos []models.PetPhoto
	err := r.db.SelectContext(ctx, &photos, `
		SELECT * FROM pet_photos WHERE pet_id = $1 ORDER BY position ASC
	`, petID)
	if err != nil {
		return nil, fmt.Errorf("pet repository: photos %w", err)
	}
	return photos, nil
}

// FirstPhotoByPetID возвращает первую фотографию питомца.
// Её использует модерация для передачи изображения в AI.
func (r *PetRepository) FirstPhotoByPetID(ctx context.Context, petID uuid.UUID) (*models.PetPhoto, error) {
	var photo models.PetPhoto
	err := r.db.GetContext(ctx, &photo, `
		SELECT * FROM pet_photos WHERE pet_id = $1 ORDER BY position ASC LIMIT 1
	`, petID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "foto do pet não encontrada")
		}
		return nil, fmt.Errorf("pet repository: first photo %w", err)
	}
	return &photo, nil
}

// DeletePhoto удаляет фотографию питомца.
func (r *PetRepository) DeletePhoto(ctx context.Context, photoID, petID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM pet_photos WHERE id = $1 AND pet_id = $2
	`, photoID, petID)
	if err != nil {
		return fmt.Errorf("pet repository: delete photo %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pet repository: delete photo rows affected %w", err)
	}
	if rowsAffected == 0 {
		return apperror.New(apperror.ErrCodeNotFound, "foto do pet não encontrada")
	}

	return nil
}
