package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adotepet/adotepet-backend/internal/models"
)

// Classifier вызывает Gemini-совместимый generateContent API
// и извлекает из ответа решение модерации.
type Classifier struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewClassifier создаёт клиент классификации жалоб.
func NewClassifier(baseURL, model, apiKey string, timeout time.Duration) *Classifier {
	return &Classifier{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

const classifyPrompt = `Analise o texto e a imagem abaixo, enviados por um usuário denunciando um post.
Responda apenas com "REMOVER" se houver qualquer violação das regras (ex: conteúdo não relacionado a animais, imagens impróprias, etc),
"INATIVAR" se for algo moderado, ou "MANTER" se não houver violação.
Texto: %q`

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Classify отправляет текст жалобы и фотографию питомца в AI
// и возвращает одно из решений модерации. Пустой или непонятный
// ответ модели трактуется как INDETERMINADO.
func (c *Classifier) Classify(ctx context.Context, reportText string, img *Image) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("moderation: GEMINI_API_KEY не задан")
	}

	parts := []generatePart{{Text: fmt.Sprintf(classifyPrompt, reportText)}}
	if img != nil {
		parts = append(parts, generatePart{InlineData: &inlineData{
			MimeType: img.MimeType,
			Data:     img.Base64,
		}})
	}

	payload := generateRequest{Contents: []generateContent{{Parts: parts}}}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("moderation: не удалось сериализовать запрос: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("moderation: не удалось создать запрос: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("moderation: запрос к AI не удался: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errorBody)
		return "", fmt.Errorf("moderation: код ответа AI %d: %v", resp.StatusCode, errorBody)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("moderation: не удалось распарсить ответ AI: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return models.ReportStatusUndetermined, nil
	}

	return extractDecision(result.Candidates[0].Content.Parts[0].Text), nil
}

// extractDecision ищет токен решения в свободном тексте ответа модели.
// Модель иногда оборачивает ответ в markdown или поясняющую фразу.
func extractDecision(text string) string {
	normalized := strings.ToUpper(strings.TrimSpace(text))

	switch normalized {
	case models.ReportStatusRemove, models.ReportStatusDeactivate,
		models.ReportStatusKeep, models.ReportStatusUndetermined:
		return normalized
	}

	// Порядок проверки важен: более строгое решение выигрывает,
	// если модель упомянула несколько токенов сразу.
	for _, token := range []string{
		models.ReportStatusRemove,
		models.ReportStatusDeactivate,
		models.ReportStatusKeep,
	} {
		if strings.Contains(normalized, token) {
			return token
		}
	}

	return models.ReportStatusUndetermined
}
