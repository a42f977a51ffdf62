package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"companion-backend/internal/genai"
	"companion-backend/pkg/api"
)

// ProviderKeys holds the API keys exposed to the browser front-end via the
// config endpoint.
type ProviderKeys struct {
	GeminiKey         string
	ElevenLabsKey     string
	ElevenLabsVoiceID string
}

type GenAIService struct {
	client *genai.Client
	keys   ProviderKeys
}

func NewGenAIService(client *genai.Client, keys ProviderKeys) *GenAIService {
	return &GenAIService{client: client, keys: keys}
}

func (s *GenAIService) AddRoutes(r chi.Router) {
	r.Post("/ai/chat", RestHandler(s.Chat))
	r.Get("/config/keys", RestHandler(s.GetConfigKeys))
}

func (s *GenAIService) Chat(r *http.Request) (any, error) {
	req, err := ParseRequest[api.GenerateChatRequest](r)
	if err != nil {
		return nil, err
	}

	if req.Message == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "Message is required")
	}

	reply, usage, err := s.client.Generate(r.Context(), req.Message, req.ConversationHistory)
	if err != nil {
		var perr *genai.ProxyError
		if errors.As(err, &perr) {
			slog.Error("generative api error", "status", perr.Status, "body", perr.Body)
			return nil, UpstreamError(perr.Status, fmt.Sprintf("Gemini API error: %d", perr.Status), perr.Body)
		}
		slog.Error("generative api proxy error", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "Internal server error")
	}

	return api.GenerateChatResponse{Response: reply, Usage: usage}, nil
}

func (s *GenAIService) GetConfigKeys(r *http.Request) (any, error) {
	return api.ConfigKeysResponse{
		OpenAIKey:         "",
		GeminiKey:         s.keys.GeminiKey,
		ElevenLabsKey:     s.keys.ElevenLabsKey,
		ElevenLabsVoiceID: s.keys.ElevenLabsVoiceID,
	}, nil
}
