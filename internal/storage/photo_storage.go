package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/adotepet/adotepet-backend/internal/pkg/apperror"
)

// PhotoStorage отвечает за файловое хранилище фотографий питомцев.
// Файлы раздаются статикой под baseURL.
type PhotoStorage struct {
	rootPath       string
	baseURL        string
	maxUploadBytes int64
}

// NewPhotoStorage создаёт файловое хранилище.
func NewPhotoStorage(rootPath, baseURL string, maxUploadMB int64) (*PhotoStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &PhotoStorage{
		rootPath:       rootPath,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save проверяет, что содержимое является изображением, сохраняет файл
// и возвращает его публичный URL.
func (s *PhotoStorage) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Для определения типа достаточно первых 261 байт.
	header := make([]byte, 261)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	header = header[:n]

	kind, err := filetype.Match(header)
	if err != nil || !filetype.IsImage(header) {
		return "", apperror.New(apperror.ErrCodeValidation, "o arquivo deve ser uma imagem")
	}

	fileName := fmt.Sprintf("%s_%d.%s", uuid.NewString(), time.Now().UnixNano(), kind.Extension)
	targetPath := filepath.Join(s.rootPath, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(header), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", apperror.New(apperror.ErrCodeValidation, "arquivo excede o tamanho máximo permitido")
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return s.baseURL + "/" + fileName, nil
}

// Delete удаляет файл по его публичному URL.
func (s *PhotoStorage) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fileName := filepath.Base(url)
	target := filepath.Join(s.rootPath, fileName)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}
