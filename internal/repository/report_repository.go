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

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create сохраняет жалобу со статусом PENDING.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO reports (pet_id, user_id, report_text)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at, updated_at
	`, report.PetID, report.UserID, report.ReportText).
		Scan(&report.ID, &report.Status, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return common.GetByID[models.Report](ctx, r.db, "reports", id, apperror.ErrReportNotFound)
}

// UpdateStatus выставляет жалобе новый статус. Переходы не проверяются:
// решение модерации может прийти повторно и перезаписать предыдущее.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Report, error) {
	var report models.Report
	err := r.db.GetContext(ctx, &report, `
		UPDATE reports SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: update status %w", err)
	}
	return &report, nil
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return reports, err
}

func (r *ReportRepository) ListByPet(ctx context.Context, petID uuid.UUID, limit, offset int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports WHERE pet_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, petID, limit, offset)
	return reports, err
}

func (r *ReportRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3
	`, status, limit, offset)
	return reports, err
}
