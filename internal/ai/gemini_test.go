package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGeminiModelRequiresKey(t *testing.T) {
	_, err := NewGeminiModel(context.Background(), GeminiConfig{APIKey: "  "})
	require.Error(t, err)
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": "Nf6"}},
				},
			}},
		})
	}))
	defer srv.Close()

	m, err := NewGeminiModel(context.Background(), GeminiConfig{
		APIKey:     "test-key",
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL + "/",
	})
	require.NoError(t, err)

	reply, err := m.Generate(context.Background(), Request{
		Model:       "gemini-3-flash-preview",
		Prompt:      "play",
		Temperature: 0.1,
	})
	require.NoError(t, err)
	require.Equal(t, "Nf6", reply)
	require.True(t, strings.HasSuffix(gotPath, "gemini-3-flash-preview:generateContent"), gotPath)
	require.Contains(t, gotBody, `"thinkingBudget":0`)
}

func TestGeminiGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":503,"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m, err := NewGeminiModel(context.Background(), GeminiConfig{
		APIKey:     "test-key",
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL + "/",
	})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), Request{Model: "gemini-3-flash-preview", Prompt: "play"})
	require.Error(t, err)
}
