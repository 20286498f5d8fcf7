package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adotepet/adotepet-backend/internal/logger"
	"github.com/adotepet/adotepet-backend/internal/metrics"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
	"github.com/adotepet/adotepet-backend/internal/queue"
	"github.com/adotepet/adotepet-backend/internal/validation"
)

// ReportStore описывает зависимости ReportService от хранилища жалоб.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Report, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Report, error)
	ListByPet(ctx context.Context, petID uuid.UUID, limit, offset int) ([]models.Report, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, error)
}

// ReportPetStore описывает операции над питомцами, нужные при применении решения.
type ReportPetStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetAdopted(ctx context.Context, id uuid.UUID, adopted bool) error
}

// ModerationPublisher отправляет жалобу в очередь модерации.
type ModerationPublisher interface {
	Publish(ctx context.Context, queueName string, msg any) error
}

// ReportNotifier публикует событие об обработанной жалобе.
type ReportNotifier interface {
	PublishReportProcessed(ctx context.Context, userID, reportID, petID uuid.UUID, petName, action string) error
}

// ReportService реализует жизненный цикл жалобы: приём, очередь
// модерации и применение решения.
type ReportService struct {
	reports     ReportStore
	pets        ReportPetStore
	publisher   ModerationPublisher
	notifier    ReportNotifier
	reportQueue string
	log         *logrus.Entry
}

// NewReportService создаёт сервис жалоб.
func NewReportService(reports ReportStore, pets ReportPetStore, publisher ModerationPublisher, notifier ReportNotifier, reportQueue string) *ReportService {
	return &ReportService{
		reports:     reports,
		pets:        pets,
		publisher:   publisher,
		notifier:    notifier,
		reportQueue: reportQueue,
		log:         logger.WithComponent("service.report"),
	}
}

// Submit принимает жалобу: сохраняет её со статусом PENDING и отправляет
// в очередь модерации. Неудача публикации проглатывается: жалоба уже
// сохранена, и это важнее, чем мгновенная постановка в очередь.
func (s *ReportService) Submit(ctx context.Context, petID, userID uuid.UUID, reportText string) (*models.Report, error) {
	if err := validation.ValidateLength("report", reportText, validation.MinReportTextLength, validation.MaxReportTextLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return nil, err
	}

	report := &models.Report{
		PetID:      petID,
		UserID:     userID,
		ReportText: reportText,
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	request := queue.ModerationRequest{
		PetID:      petID,
		UserID:     userID,
		ReportText: reportText,
		ReportID:   report.ID,
	}

	if err := s.publisher.Publish(ctx, s.reportQueue, request); err != nil {
		s.log.WithField("reportId", report.ID).
			Errorf("жалоба сохранена, но не попала в очередь модерации: %v", err)
		metrics.ReportPublishFailures.Inc()
	}

	return report, nil
}

// UpdateStatus применяет решение модерации: обновляет статус жалобы,
// выполняет побочный эффект над питомцем и публикует уведомление.
// Побочный эффект и уведомление не влияют на успех самой операции.
func (s *ReportService) UpdateStatus(ctx context.Context, reportID uuid.UUID, status string) (*models.Report, error) {
	if !models.ValidReportStatus(status) {
		return nil, apperror.New(apperror.ErrCodeValidation, "status inválido")
	}

	// Имя питомца читается до побочного эффекта: после REMOVER
	// анкеты уже не будет.
	var petName string
	if report, err := s.reports.GetByID(ctx, reportID); err == nil {
		if pet, err := s.pets.GetByID(ctx, report.PetID); err == nil {
			petName = pet.Name
		}
	}

	report, err := s.reports.UpdateStatus(ctx, reportID, status)
	if err != nil {
		return nil, err
	}

	s.applyPetSideEffect(ctx, report, status)

	if err := s.notifier.PublishReportProcessed(ctx, report.UserID, report.ID, report.PetID, petName, status); err != nil {
		s.log.WithField("reportId", report.ID).
			Errorf("не удалось опубликовать уведомление о решении: %v", err)
		metrics.SwallowedFailures.WithLabelValues("report_notification_publish").Inc()
	}

	return report, nil
}

// ApplyDecision реализует интерфейс консьюмера очереди статусов.
func (s *ReportService) ApplyDecision(ctx context.Context, reportID uuid.UUID, status string) error {
	_, err := s.UpdateStatus(ctx, reportID, status)
	return err
}

// applyPetSideEffect выполняет действие над питомцем по решению модерации.
// Ошибки проглатываются: статус жалобы отражает решение модерации,
// даже если принудительное действие не удалось. Повторная доставка
// REMOVER по уже удалённому питомцу считается штатным случаем.
func (s *ReportService) applyPetSideEffect(ctx context.Context, report *models.Report, status string) {
	var err error
	switch status {
	case models.ReportStatusRemove:
		err = s.pets.Delete(ctx, report.PetID)
	case models.ReportStatusDeactivate:
		err = s.pets.SetAdopted(ctx, report.PetID, true)
	default:
		return
	}

	if err != nil {
		level := s.log.WithFields(logrus.Fields{
			"reportId": report.ID,
			"petId":    report.PetID,
			"status":   status,
		})
		if apperror.IsNotFound(err) {
			level.Warnf("питомец уже отсутствует: %v", err)
		} else {
			level.Errorf("побочный эффект над питомцем не удался: %v", err)
		}
		metrics.SwallowedFailures.WithLabelValues("pet_side_effect").Inc()
	}
}

// GetByID возвращает жалобу по идентификатору.
func (s *ReportService) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return s.reports.GetByID(ctx, id)
}

// ListByUser возвращает жалобы, отправленные пользователем.
func (s *ReportService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Report, error) {
	return s.reports.ListByUser(ctx, userID, limit, offset)
}

// ListByPet возвращает жалобы на питомца.
func (s *ReportService) ListByPet(ctx context.Context, petID uuid.UUID, limit, offset int) ([]models.Report, error) {
	return s.reports.ListByPet(ctx, petID, limit, offset)
}

// ListByStatus возвращает жалобы с заданным статусом.
func (s *ReportService) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	if !models.ValidReportStatus(status) {
		return nil, apperror.New(apperror.ErrCodeValidation, "status inválido")
	}
	return s.reports.ListByStatus(ctx, status, limit, offset)
}
