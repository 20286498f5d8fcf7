package moderation

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/h2non/filetype"
)

// Image хранит скачанную фотографию питомца, готовую к отправке в AI.
type Image struct {
	MimeType string
	Base64   string
}

// FetchImage скачивает изображение по URL и кодирует его в base64.
// MIME тип берётся из заголовка ответа, при его отсутствии
// определяется по сигнатуре файла.
func FetchImage(ctx context.Context, client *http.Client, url string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("moderation: не удалось создать запрос изображения: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation: не удалось скачать изображение: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("moderation: изображение недоступно, код ответа %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("moderation: не удалось прочитать изображение: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		kind, err := filetype.Match(data)
		if err != nil || kind == filetype.Unknown {
			return nil, fmt.Errorf("moderation: не удалось определить тип изображения")
		}
		mimeType = kind.MIME.Value
	}

	return &Image{
		MimeType: mimeType,
		Base64:   base64.StdEncoding.EncodeToString(data),
	}, nil
}
