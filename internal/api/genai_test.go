package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-backend/internal/genai"
	pkgapi "companion-backend/pkg/api"
)

type upstreamContent struct {
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts"`
	Role string `json:"role"`
}

type upstreamRequest struct {
	Contents          []upstreamContent `json:"contents"`
	SystemInstruction *upstreamContent  `json:"systemInstruction"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		TopP            float64 `json:"topP"`
		TopK            int     `json:"topK"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
	SafetySettings []struct {
		Category  string `json:"category"`
		Threshold string `json:"threshold"`
	} `json:"safetySettings"`
}

func setupGenAIRouter(t *testing.T, upstream http.HandlerFunc) chi.Router {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	service := NewGenAIService(genai.NewClient("test-key", server.URL), ProviderKeys{
		GeminiKey:         "test-key",
		ElevenLabsKey:     "el-key",
		ElevenLabsVoiceID: "voice-1",
	})
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		service.AddRoutes(r)
	})
	return router
}

func TestChatRequiresMessage(t *testing.T) {
	router := setupGenAIRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called for an invalid request")
	})

	rec := doRequest(t, router, http.MethodPost, "/api/ai/chat", pkgapi.GenerateChatRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse[map[string]string](t, rec)
	assert.Equal(t, "Message is required", resp["error"])
}

func TestChatForwardsPersonaAndHistory(t *testing.T) {
	var captured upstreamRequest
	var capturedKey string

	router := setupGenAIRouter(t, func(w http.ResponseWriter, r *http.Request) {
		capturedKey = r.Header.Get("X-Goog-Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "Aww, hi habibi!"}]}}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 6, "totalTokenCount": 18}
		}`))
	})

	rec := doRequest(t, router, http.MethodPost, "/api/ai/chat", pkgapi.GenerateChatRequest{
		Message: "How was your day?",
		ConversationHistory: []pkgapi.HistoryItem{
			{Role: "user", Content: "Salam!"},
			{Role: "assistant", Content: "Salam habibi!"},
			{Role: "system", Content: "ignored"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse[pkgapi.GenerateChatResponse](t, rec)
	assert.Equal(t, "Aww, hi habibi!", resp.Response)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 18, resp.Usage.TotalTokenCount)

	assert.Equal(t, "test-key", capturedKey)

	// Persona preamble (4 turns) + 2 history entries (system skipped) + the
	// new message.
	require.Len(t, captured.Contents, 7)
	assert.Equal(t, "user", captured.Contents[4].Role)
	assert.Equal(t, "Salam!", captured.Contents[4].Parts[0].Text)
	assert.Equal(t, "model", captured.Contents[5].Role)
	assert.Equal(t, "Salam habibi!", captured.Contents[5].Parts[0].Text)
	last := captured.Contents[len(captured.Contents)-1]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "How was your day?", last.Parts[0].Text)

	require.NotNil(t, captured.SystemInstruction)
	assert.NotEmpty(t, captured.SystemInstruction.Parts[0].Text)

	assert.Equal(t, 0.8, captured.GenerationConfig.Temperature)
	assert.Equal(t, 0.9, captured.GenerationConfig.TopP)
	assert.Equal(t, 40, captured.GenerationConfig.TopK)
	assert.Equal(t, 1000, captured.GenerationConfig.MaxOutputTokens)

	require.Len(t, captured.SafetySettings, 4)
	for _, setting := range captured.SafetySettings {
		assert.Equal(t, "BLOCK_NONE", setting.Threshold)
	}
}

func TestChatFallbackReplyOnEmptyCandidates(t *testing.T) {
	router := setupGenAIRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	rec := doRequest(t, router, http.MethodPost, "/api/ai/chat", pkgapi.GenerateChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse[pkgapi.GenerateChatResponse](t, rec)
	assert.Equal(t, "Sorry, I couldn't generate a response.", resp.Response)
}

func TestChatRelaysUpstreamFailure(t *testing.T) {
	router := setupGenAIRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	})

	rec := doRequest(t, router, http.MethodPost, "/api/ai/chat", pkgapi.GenerateChatRequest{Message: "hello"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	resp := decodeResponse[map[string]string](t, rec)
	assert.Equal(t, "Gemini API error: 429", resp["error"])
	assert.Contains(t, resp["details"], "rate limited")
}

func TestGetConfigKeys(t *testing.T) {
	router := setupGenAIRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := doRequest(t, router, http.MethodGet, "/api/config/keys", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	keys := decodeResponse[pkgapi.ConfigKeysResponse](t, rec)
	assert.Empty(t, keys.OpenAIKey)
	assert.Equal(t, "test-key", keys.GeminiKey)
	assert.Equal(t, "el-key", keys.ElevenLabsKey)
	assert.Equal(t, "voice-1", keys.ElevenLabsVoiceID)
}
