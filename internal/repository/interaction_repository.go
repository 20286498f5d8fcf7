package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adotepet/adotepet-backend/internal/models"
)

type InteractionRepository struct {
	db *sqlx.DB
}

func NewInteractionRepository(db *sqlx.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Upsert записывает взаимодействие пользователя с питомцем.
// Повторное взаимодействие с тем же питомцем перезаписывает тип:
// пользователь мог передумать и вернуть питомца из отклонённых.
func (r *InteractionRepository) Upsert(ctx context.Context, interaction *models.PetInteraction) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO pet_interactions (user_id, pet_id, type)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, pet_id)
		DO UPDATE SET type = EXCLUDED.type, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, interaction.UserID, interaction.PetID, interaction.Type).
		Scan(&interaction.ID, &interaction.CreatedAt, &interaction.UpdatedAt)
	if err != nil {
		return fmt.Errorf("interaction repository: upsert %w", err)
	}
	return nil
}

func (r *InteractionRepository) ListByUser(ctx context.Context, userID uuid.UUID, interactionType string, limit, offset int) ([]models.PetInteraction, error) {
	query := `SELECT * FROM pet_interactions WHERE user_id = $1`
	args := []interface{}{userID}
	argIndex := 2

	if interactionType != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, interactionType)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var interactions []models.PetInteraction
	if err := r.db.SelectContext(ctx, &interactions, query, args...); err != nil {
		return nil, fmt.Errorf("interaction repository: list by user %w", err)
	}
	return interactions, nil
}

// Delete убирает взаимодействие, возвращая питомца в ленту пользователя.
func (r *InteractionRepository) Delete(ctx context.Context, userID, petID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM pet_interactions WHERE user_id = $1 AND pet_id = $2
	`, userID, petID)
	if err != nil {
		return fmt.Errorf("interaction repository: delete %w", err)
	}
	return nil
}
