package api

type HistoryItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GenerateChatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []HistoryItem `json:"conversationHistory,omitempty"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount int `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount,omitempty"`
}

type GenerateChatResponse struct {
	Response string         `json:"response"`
	Usage    *UsageMetadata `json:"usage,omitempty"`
}

// ConfigKeysResponse exposes the provider keys the browser front-end needs.
// The OpenAI key is intentionally always empty.
type ConfigKeysResponse struct {
	OpenAIKey         string `json:"openaiKey"`
	GeminiKey         string `json:"geminiKey"`
	ElevenLabsKey     string `json:"elevenLabsKey"`
	ElevenLabsVoiceID string `json:"elevenLabsVoiceId"`
}
