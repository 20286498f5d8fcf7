package moderation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
	"github.com/adotepet/adotepet-backend/internal/queue"
)

var testPNG = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}

type stubClassifier struct {
	decision string
	err      error
	gotText  string
	gotImage *Image
}

func (s *stubClassifier) Classify(ctx context.Context, reportText string, img *Image) (string, error) {
	s.gotText = reportText
	s.gotImage = img
	return s.decision, s.err
}

type stubPhotoSource struct {
	photo *models.PetPhoto
	err   error
}

func (s *stubPhotoSource) FirstPhotoByPetID(ctx context.Context, petID uuid.UUID) (*models.PetPhoto, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.photo, nil
}

func TestModerateClassifiesWithPhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(testPNG)
	}))
	defer srv.Close()

	classifier := &stubClassifier{decision: models.ReportStatusRemove}
	photos := &stubPhotoSource{photo: &models.PetPhoto{URL: srv.URL + "/rex.png"}}

	w := NewWorker(WorkerConfig{ClassifyTimeout: time.Second}, classifier, photos)

	decision, err := w.moderate(context.Background(), queue.ModerationRequest{
		PetID:      uuid.New(),
		ReportID:   uuid.New(),
		ReportText: "anúncio suspeito",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusRemove, decision)
	assert.Equal(t, "anúncio suspeito", classifier.gotText)
	require.NotNil(t, classifier.gotImage)
	assert.Equal(t, "image/png", classifier.gotImage.MimeType)
	assert.NotEmpty(t, classifier.gotImage.Base64)
}

func TestModerateFailsWithoutPhoto(t *testing.T) {
	classifier := &stubClassifier{decision: models.ReportStatusKeep}
	photos := &stubPhotoSource{err: apperror.New(apperror.ErrCodeNotFound, "foto do pet não encontrada")}

	w := NewWorker(WorkerConfig{ClassifyTimeout: time.Second}, classifier, photos)

	_, err := w.moderate(context.Background(), queue.ModerationRequest{PetID: uuid.New()})
	require.Error(t, err)
}

func TestModerateFailsOnImageDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	classifier := &stubClassifier{decision: models.ReportStatusKeep}
	photos := &stubPhotoSource{photo: &models.PetPhoto{URL: srv.URL + "/sumiu.png"}}

	w := NewWorker(WorkerConfig{ClassifyTimeout: time.Second}, classifier, photos)

	_, err := w.moderate(context.Background(), queue.ModerationRequest{PetID: uuid.New()})
	require.Error(t, err)
}

func TestFetchImageSniffsMimeType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Content-Type отсутствует, тип определяется по содержимому.
		w.Header()["Content-Type"] = nil
		_, _ = w.Write(testPNG)
	}))
	defer srv.Close()

	img, err := FetchImage(context.Background(), srv.Client(), srv.URL+"/foto")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
}
