package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
)

// Минимальный валидный заголовок PNG.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func newTestStorage(t *testing.T) *PhotoStorage {
	t.Helper()
	s, err := NewPhotoStorage(t.TempDir(), "http://localhost:4040/media", 1)
	require.NoError(t, err)
	return s
}

func TestSaveValidImage(t *testing.T) {
	s := newTestStorage(t)

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x00}, 64)...)
	url, err := s.Save(context.Background(), "rex.png", bytes.NewReader(content))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:4040/media/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	// Файл действительно лежит в хранилище.
	saved, err := os.ReadFile(filepath.Join(s.rootPath, filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestSaveRejectsNonImage(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Save(context.Background(), "nota.txt", strings.NewReader("apenas texto, não é imagem"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	s := newTestStorage(t)

	// Лимит хранилища 1 МБ, содержимое больше.
	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x00}, 1024*1024+1)...)
	_, err := s.Save(context.Background(), "rex.png", bytes.NewReader(content))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// Временные файлы не остаются после отказа.
	entries, err := os.ReadDir(s.rootPath)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteByURL(t *testing.T) {
	s := newTestStorage(t)

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x00}, 16)...)
	url, err := s.Save(context.Background(), "rex.png", bytes.NewReader(content))
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(s.rootPath, filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))

	// Повторное удаление не считается ошибкой.
	assert.NoError(t, s.Delete(context.Background(), url))
}
