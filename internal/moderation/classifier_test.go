package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotepet/adotepet-backend/internal/models"
)

func geminiResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{{"text": text}},
				},
			},
		},
	}
}

func newTestServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.URL.Query().Get("key"))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestClassifyExtractsDecision(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, geminiResponse("REMOVER"))
	defer srv.Close()

	c := NewClassifier(srv.URL, "gemini-1.5-flash-latest", "test-key", 5*time.Second)
	decision, err := c.Classify(context.Background(), "anúncio suspeito", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusRemove, decision)
}

func TestClassifySendsImagePart(t *testing.T) {
	var captured generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(geminiResponse("MANTER"))
	}))
	defer srv.Close()

	c := NewClassifier(srv.URL, "gemini-1.5-flash-latest", "test-key", 5*time.Second)
	img := &Image{MimeType: "image/png", Base64: "aGVsbG8="}

	decision, err := c.Classify(context.Background(), "denúncia", img)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusKeep, decision)

	require.Len(t, captured.Contents, 1)
	require.Len(t, captured.Contents[0].Parts, 2)
	assert.Contains(t, captured.Contents[0].Parts[0].Text, "denúncia")
	require.NotNil(t, captured.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/png", captured.Contents[0].Parts[1].InlineData.MimeType)
}

func TestClassifyRequiresAPIKey(t *testing.T) {
	c := NewClassifier("http://localhost", "model", "", time.Second)
	_, err := c.Classify(context.Background(), "texto", nil)
	require.Error(t, err)
}

func TestClassifyErrorStatus(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, map[string]any{"error": "quota"})
	defer srv.Close()

	c := NewClassifier(srv.URL, "model", "test-key", time.Second)
	_, err := c.Classify(context.Background(), "texto", nil)
	require.Error(t, err)
}

func TestClassifyEmptyCandidates(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, map[string]any{"candidates": []any{}})
	defer srv.Close()

	c := NewClassifier(srv.URL, "model", "test-key", time.Second)
	decision, err := c.Classify(context.Background(), "texto", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusUndetermined, decision)
}

func TestExtractDecision(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"exact", "MANTER", models.ReportStatusKeep},
		{"lowercase", "remover", models.ReportStatusRemove},
		{"whitespace", "  INATIVAR\n", models.ReportStatusDeactivate},
		{"markdown", "**REMOVER**", models.ReportStatusRemove},
		{"sentence", "A decisão correta é MANTER o post.", models.ReportStatusKeep},
		{"strictest wins", "Entre MANTER e REMOVER, escolho REMOVER.", models.ReportStatusRemove},
		{"garbage", "não sei dizer", models.ReportStatusUndetermined},
		{"empty", "", models.ReportStatusUndetermined},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractDecision(tc.in))
		})
	}
}
