package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
	"github.com/adotepet/adotepet-backend/internal/service"
)

type mockReportStore struct {
	reports         map[uuid.UUID]*models.Report
	createErr       error
	updateStatusErr error
}

func newMockReportStore() *mockReportStore {
	return &mockReportStore{reports: make(map[uuid.UUID]*models.Report)}
}

func (m *mockReportStore) Create(ctx context.Context, report *models.Report) error {
	if m.createErr != nil {
		return m.createErr
	}
	report.ID = uuid.New()
	report.Status = models.ReportStatusPending
	m.reports[report.ID] = report
	return nil
}

func (m *mockReportStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, apperror.ErrReportNotFound
}

func (m *mockReportStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Report, error) {
	if m.updateStatusErr != nil {
		return nil, m.updateStatusErr
	}
	r, ok := m.reports[id]
	if !ok {
		return nil, apperror.ErrReportNotFound
	}
	r.Status = status
	return r, nil
}

func (m *mockReportStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Report, error) {
	var out []models.Report
	for _, r := range m.reports {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockReportStore) ListByPet(ctx context.Context, petID uuid.UUID, limit, offset int) ([]models.Report, error) {
	var out []models.Report
	for _, r := range m.reports {
		if r.PetID == petID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockReportStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	var out []models.Report
	for _, r := range m.reports {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

type mockReportPetStore struct {
	pets          map[uuid.UUID]*models.Pet
	deleted       []uuid.UUID
	adopted       []uuid.UUID
	deleteErr     error
	setAdoptedErr error
}

func newMockReportPetStore() *mockReportPetStore {
	return &mockReportPetStore{pets: make(map[uuid.UUID]*models.Pet)}
}

func (m *mockReportPetStore) addPet(name string) *models.Pet {
	pet := &models.Pet{ID: uuid.New(), OwnerID: uuid.New(), Name: name}
	m.pets[pet.ID] = pet
	return pet
}

func (m *mockReportPetStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	if p, ok := m.pets[id]; ok {
		return p, nil
	}
	return nil, apperror.ErrPetNotFound
}

func (m *mockReportPetStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.pets[id]; !ok {
		return apperror.ErrPetNotFound
	}
	delete(m.pets, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockReportPetStore) SetAdopted(ctx context.Context, id uuid.UUID, adopted bool) error {
	if m.setAdoptedErr != nil {
		return m.setAdoptedErr
	}
	p, ok := m.pets[id]
	if !ok {
		return apperror.ErrPetNotFound
	}
	p.Adopted = adopted
	m.adopted = append(m.adopted, id)
	return nil
}

type mockModerationPublisher struct {
	published []any
	queues    []string
	err       error
}

func (m *mockModerationPublisher) Publish(ctx context.Context, queueName string, msg any) error {
	if m.err != nil {
		return m.err
	}
	m.queues = append(m.queues, queueName)
	m.published = append(m.published, msg)
	return nil
}

type mockReportNotifier struct {
	calls []string
	err   error
}

func (m *mockReportNotifier) PublishReportProcessed(ctx context.Context, userID, reportID, petID uuid.UUID, petName, action string) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, action+":"+petName)
	return nil
}

func newReportService() (*service.ReportService, *mockReportStore, *mockReportPetStore, *mockModerationPublisher, *mockReportNotifier) {
	reports := newMockReportStore()
	pets := newMockReportPetStore()
	publisher := &mockModerationPublisher{}
	notifier := &mockReportNotifier{}
	svc := service.NewReportService(reports, pets, publisher, notifier, "reportQueue")
	return svc, reports, pets, publisher, notifier
}

func TestSubmitCreatesPendingReportAndPublishes(t *testing.T) {
	svc, _, pets, publisher, _ := newReportService()
	pet := pets.addPet("Rex")
	userID := uuid.New()

	report, err := svc.Submit(context.Background(), pet.ID, userID, "anúncio parece fraudulento")
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.NotEqual(t, uuid.Nil, report.ID)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "reportQueue", publisher.queues[0])
}

func TestSubmitSurvivesPublishFailure(t *testing.T) {
	svc, reports, pets, publisher, _ := newReportService()
	pet := pets.addPet("Rex")
	publisher.err = errors.New("broker indisponível")

	report, err := svc.Submit(context.Background(), pet.ID, uuid.New(), "anúncio suspeito")
	require.NoError(t, err)

	// Жалоба сохранена несмотря на недоступность очереди.
	saved, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, saved.Status)
}

func TestSubmitRejectsShortText(t *testing.T) {
	svc, _, pets, publisher, _ := newReportService()
	pet := pets.addPet("Rex")

	_, err := svc.Submit(context.Background(), pet.ID, uuid.New(), "abc")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, publisher.published)
}

func TestSubmitUnknownPet(t *testing.T) {
	svc, _, _, publisher, _ := newReportService()

	_, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), "anúncio suspeito")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, publisher.published)
}

func TestUpdateStatusRemoverDeletesPet(t *testing.T) {
	svc, reports, pets, _, notifier := newReportService()
	pet := pets.addPet("Luna")
	report := &models.Report{PetID: pet.ID, UserID: uuid.New(), ReportText: "denúncia"}
	require.NoError(t, reports.Create(context.Background(), report))

	updated, err := svc.UpdateStatus(context.Background(), report.ID, models.ReportStatusRemove)
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusRemove, updated.Status)
	assert.NotContains(t, pets.pets, pet.ID)
	// Имя питомца прочитано до удаления анкеты.
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "REMOVER:Luna", notifier.calls[0])
}

func TestUpdateStatusInativarMarksAdopted(t *testing.T) {
	svc, reports, pets, _, _ := newReportService()
	pet := pets.addPet("Luna")
	report := &models.Report{PetID: pet.ID, UserID: uuid.New(), ReportText: "denúncia"}
	require.NoError(t, reports.Create(context.Background(), report))

	_, err := svc.UpdateStatus(context.Background(), report.ID, models.ReportStatusDeactivate)
	require.NoError(t, err)
	assert.True(t, pets.pets[pet.ID].Adopted)
}

func TestUpdateStatusManterLeavesPetAlone(t *testing.T) {
	svc, reports, pets, _, _ := newReportService()
	pet := pets.addPet("Luna")
	report := &models.Report{PetID: pet.ID, UserID: uuid.New(), ReportText: "denúncia"}
	require.NoError(t, reports.Create(context.Background(), report))

	_, err := svc.UpdateStatus(context.Background(), report.ID, models.ReportStatusKeep)
	require.NoError(t, err)

	assert.Contains(t, pets.pets, pet.ID)
	assert.Empty(t, pets.deleted)
	assert.Empty(t, pets.adopted)
}

func TestUpdateStatusToleratesMissingPet(t *testing.T) {
	svc, reports, _, _, _ := newReportService()
	// Анкета уже удалена, например повторной доставкой REMOVER.
	report := &models.Report{PetID: uuid.New(), UserID: uuid.New(), ReportText: "denúncia"}
	require.NoError(t, reports.Create(context.Background(), report))

	updated, err := svc.UpdateStatus(context.Background(), report.ID, models.ReportStatusRemove)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusRemove, updated.Status)
}

func TestUpdateStatusSwallowsNotifierFailure(t *testing.T) {
	svc, reports, pets, _, notifier := newReportService()
	pet := pets.addPet("Luna")
	notifier.err = errors.New("broker indisponível")
	report := &models.Report{PetID: pet.ID, UserID: uuid.New(), ReportText: "denúncia"}
	require.NoError(t, reports.Create(context.Background(), report))

	updated, err := svc.UpdateStatus(context.Background(), report.ID, models.ReportStatusKeep)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusKeep, updated.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _, _ := newReportService()

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "APROVADO")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestUpdateStatusUnknownReport(t *testing.T) {
	svc, _, _, _, _ := newReportService()

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), models.ReportStatusKeep)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestApplyDecisionDelegatesToUpdateStatus(t *testing.T) {
	svc, reports, pets, _, _ := newReportService()
	pet := pets.addPet("Luna")
	report := &models.Report{PetID: pet.ID, UserID: uuid.New(), ReportText: "denúncia"}
	require.NoError(t, reports.Create(context.Background(), report))

	require.NoError(t, svc.ApplyDecision(context.Background(), report.ID, models.ReportStatusUndetermined))

	saved, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusUndetermined, saved.Status)
}
