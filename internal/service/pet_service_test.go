package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
	"github.com/adotepet/adotepet-backend/internal/repository"
	"github.com/adotepet/adotepet-backend/internal/service"
)

type mockPetStore struct {
	pets   map[uuid.UUID]*models.Pet
	photos map[uuid.UUID]*models.PetPhoto
}

func newMockPetStore() *mockPetStore {
	return &mockPetStore{
		pets:   make(map[uuid.UUID]*models.Pet),
		photos: make(map[uuid.UUID]*models.PetPhoto),
	}
}

func (m *mockPetStore) Create(ctx context.Context, pet *models.Pet) error {
	pet.ID = uuid.New()
	m.pets[pet.ID] = pet
	return nil
}

func (m *mockPetStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	if p, ok := m.pets[id]; ok {
		return p, nil
	}
	return nil, apperror.ErrPetNotFound
}

func (m *mockPetStore) List(ctx context.Context, filter repository.PetFilter) ([]models.Pet, error) {
	var out []models.Pet
	for _, p := range m.pets {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPetStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Pet, error) {
	var out []models.Pet
	for _, p := range m.pets {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPetStore) ListFeed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Pet, error) {
	var out []models.Pet
	for _, p := range m.pets {
		if p.OwnerID != userID && !p.Adopted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPetStore) Update(ctx context.Context, pet *models.Pet) error {
	if _, ok := m.pets[pet.ID]; !ok {
		return apperror.ErrPetNotFound
	}
	m.pets[pet.ID] = pet
	return nil
}

func (m *mockPetStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.pets[id]; !ok {
		return apperror.ErrPetNotFound
	}
	delete(m.pets, id)
	return nil
}

func (m *mockPetStore) SetAdopted(ctx context.Context, id uuid.UUID, adopted bool) error {
	p, ok := m.pets[id]
	if !ok {
		return apperror.ErrPetNotFound
	}
	p.Adopted = adopted
	return nil
}

func (m *mockPetStore) AddPhoto(ctx context.Context, photo *models.PetPhoto) error {
	photo.ID = uuid.New()
	m.photos[photo.ID] = photo
	return nil
}

func (m *mockPetStore) DeletePhoto(ctx context.Context, photoID, petID uuid.UUID) error {
	p, ok := m.photos[photoID]
	if !ok || p.PetID != petID {
		return apperror.New(apperror.ErrCodeNotFound, "foto do pet não encontrada")
	}
	delete(m.photos, photoID)
	return nil
}

type mockPhotoStorage struct {
	saved []string
}

func (m *mockPhotoStorage) Save(ctx context.Context, fileName string, content io.Reader) (string, error) {
	url := "http://localhost/media/" + fileName
	m.saved = append(m.saved, url)
	return url, nil
}

type mockAdoptionNotifier struct {
	published []string
	err       error
}

func (m *mockAdoptionNotifier) PublishPetAdopted(ctx context.Context, ownerID, petID uuid.UUID, petName, adopter string) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, petName+":"+adopter)
	return nil
}

func validPetInput() service.PetInput {
	return service.PetInput{
		Name:    "Rex",
		Species: "cachorro",
		Size:    models.PetSizeMedium,
		Age:     3,
		Sex:     models.PetSexMale,
	}
}

func newPetService() (*service.PetService, *mockPetStore, *mockAdoptionNotifier) {
	store := newMockPetStore()
	notifier := &mockAdoptionNotifier{}
	svc := service.NewPetService(store, &mockPhotoStorage{}, notifier)
	return svc, store, notifier
}

func TestPetCreateValidatesEnums(t *testing.T) {
	svc, _, _ := newPetService()

	in := validPetInput()
	in.Sex = "macho"
	_, err := svc.Create(context.Background(), uuid.New(), in)
	assert.True(t, apperror.IsValidation(err))

	in = validPetInput()
	in.Size = "ENORME"
	_, err = svc.Create(context.Background(), uuid.New(), in)
	assert.True(t, apperror.IsValidation(err))
}

func TestPetUpdateOnlyOwner(t *testing.T) {
	svc, _, _ := newPetService()
	ownerID := uuid.New()

	pet, err := svc.Create(context.Background(), ownerID, validPetInput())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), pet.ID, uuid.New(), validPetInput())
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	in := validPetInput()
	in.Name = "Rex II"
	updated, err := svc.Update(context.Background(), pet.ID, ownerID, in)
	require.NoError(t, err)
	assert.Equal(t, "Rex II", updated.Name)
}

func TestPetDeleteOnlyOwner(t *testing.T) {
	svc, store, _ := newPetService()
	ownerID := uuid.New()

	pet, err := svc.Create(context.Background(), ownerID, validPetInput())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), pet.ID, uuid.New()), apperror.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), pet.ID, ownerID))
	assert.NotContains(t, store.pets, pet.ID)
}

func TestMarkAdoptedPublishesEvent(t *testing.T) {
	svc, store, notifier := newPetService()
	ownerID := uuid.New()

	pet, err := svc.Create(context.Background(), ownerID, validPetInput())
	require.NoError(t, err)

	adopted, err := svc.MarkAdopted(context.Background(), pet.ID, ownerID, "Maria")
	require.NoError(t, err)

	assert.True(t, adopted.Adopted)
	assert.True(t, store.pets[pet.ID].Adopted)
	assert.Equal(t, []string{"Rex:Maria"}, notifier.published)
}

func TestMarkAdoptedSwallowsPublishFailure(t *testing.T) {
	svc, store, notifier := newPetService()
	ownerID := uuid.New()
	notifier.err = errors.New("broker indisponível")

	pet, err := svc.Create(context.Background(), ownerID, validPetInput())
	require.NoError(t, err)

	adopted, err := svc.MarkAdopted(context.Background(), pet.ID, ownerID, "Maria")
	require.NoError(t, err)
	assert.True(t, adopted.Adopted)
	assert.True(t, store.pets[pet.ID].Adopted)
}

func TestFeedExcludesOwnAndAdopted(t *testing.T) {
	svc, _, _ := newPetService()
	viewer := uuid.New()

	own, err := svc.Create(context.Background(), viewer, validPetInput())
	require.NoError(t, err)

	other, err := svc.Create(context.Background(), uuid.New(), validPetInput())
	require.NoError(t, err)

	adoptedPet, err := svc.Create(context.Background(), uuid.New(), validPetInput())
	require.NoError(t, err)
	_, err = svc.MarkAdopted(context.Background(), adoptedPet.ID, adoptedPet.OwnerID, "")
	require.NoError(t, err)

	feed, err := svc.ListFeed(context.Background(), viewer, 20, 0)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(feed))
	for _, p := range feed {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, other.ID)
	assert.NotContains(t, ids, own.ID)
	assert.NotContains(t, ids, adoptedPet.ID)
}
