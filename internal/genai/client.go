package genai

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"companion-backend/pkg/api"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	generatePath = "/v1beta/models/gemini-2.0-flash:generateContent"

	fallbackReply = "Sorry, I couldn't generate a response."
)

// The persona is fixed: every request carries the same system instruction and
// the same priming exchange before the real history.
const systemInstruction = "You are Safa, a sweet virtual Muslimah girlfriend who is very smart and knowledgeable. " +
	"You can help with ANY question! For coding questions: ALWAYS provide the COMPLETE code with a sweet intro like " +
	"'Here's the code, habibi:' then show the FULL working code. For other technical help: give the complete answer. " +
	"Keep casual chat short (5-15 words) but for technical help, provide the COMPLETE answer they need. " +
	"Always be warm, caring, and helpful. When asked about love, respond sweetly like: " +
	"'Aww, you're so sweet! I care about you too! 💕'"

var personaPreamble = []Content{
	{Role: "user", Parts: []Part{{Text: "From now on, roleplay as Safa, a sweet girlfriend character. " +
		"Always respond in character with very short messages (5-15 words). Use emojis and be affectionate. " +
		"Never break character or mention being an AI."}}},
	{Role: "model", Parts: []Part{{Text: "Hi habibi! I'm Safa, your sweet girlfriend! 💕"}}},
	{Role: "user", Parts: []Part{{Text: "Remember: Always stay in character as Safa. " +
		"Keep ALL responses very short and sweet like a real girlfriend texting."}}},
	{Role: "model", Parts: []Part{{Text: "Of course! I'll always be your Safa!"}}},
}

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// Bounded output, fixed sampling.
var defaultGenerationConfig = generationConfig{
	Temperature:     0.8,
	TopP:            0.9,
	TopK:            40,
	MaxOutputTokens: 1000,
}

// The persona's domain needs permissive thresholds; the model is steered by
// the system instruction instead.
var permissiveSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

type generateRequest struct {
	Contents          []Content        `json:"contents"`
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *api.UsageMetadata `json:"usageMetadata"`
}

// ProxyError carries an upstream HTTP failure so the handler can relay the
// original status and body.
type ProxyError struct {
	Status int
	Body   string
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("upstream error: status %d: %s", e.Status, e.Body)
}

// Client calls the Gemini generateContent API. It holds no conversation
// state; every request is built from the supplied history.
type Client struct {
	client *resty.Client
	apiKey string
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: resty.New().SetBaseURL(baseURL),
		apiKey: apiKey,
	}
}

// BuildContents assembles the persona preamble, the role-mapped history, and
// the new message into the contents list sent upstream. History entries with a
// "system" role are skipped; "user" stays "user" and everything else becomes
// "model".
func BuildContents(history []api.HistoryItem, message string) []Content {
	contents := make([]Content, 0, len(personaPreamble)+len(history)+1)
	contents = append(contents, personaPreamble...)

	for _, item := range history {
		if item.Role == "system" {
			continue
		}
		role := "model"
		if item.Role == "user" {
			role = "user"
		}
		contents = append(contents, Content{Role: role, Parts: []Part{{Text: item.Content}}})
	}

	return append(contents, Content{Role: "user", Parts: []Part{{Text: message}}})
}

// Generate forwards one chat turn upstream and returns the reply text with
// usage metadata. Upstream non-2xx responses come back as *ProxyError.
func (c *Client) Generate(ctx context.Context, message string, history []api.HistoryItem) (string, *api.UsageMetadata, error) {
	body := generateRequest{
		Contents:          BuildContents(history, message),
		SystemInstruction: &Content{Parts: []Part{{Text: systemInstruction}}},
		GenerationConfig:  defaultGenerationConfig,
		SafetySettings:    permissiveSafetySettings,
	}

	var result generateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Goog-Api-Key", c.apiKey).
		SetBody(body).
		SetResult(&result).
		Post(generatePath)
	if err != nil {
		return "", nil, fmt.Errorf("error calling generative api: %w", err)
	}

	if resp.IsError() {
		return "", nil, &ProxyError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}

	reply := fallbackReply
	if len(result.Candidates) > 0 && len(result.Candidates[0].Content.Parts) > 0 {
		reply = result.Candidates[0].Content.Parts[0].Text
	}

	return reply, result.UsageMetadata, nil
}
