package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GeminiClient ходит в Google Generative Language API. Ключ передается заголовком x-goog-api-key.
type GeminiClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	http      httpDoer
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiConfig    `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// NewGeminiClient создает клиент Gemini.
func NewGeminiClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *GeminiClient {
	return &GeminiClient{
		apiKey:    strings.TrimSpace(apiKey),
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		maxTokens: maxTokens,
		http:      newHTTPClient(timeout),
	}
}

// Chat отправляет диалог в Gemini; системные сообщения уходят в systemInstruction.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if c.apiKey == "" {
		return "", nil, ErrMissingAPIKey
	}

	request, err := buildGeminiRequest(messages, resolveMaxTokens(c.maxTokens))
	if err != nil {
		return "", nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	body, err := postJSON(ctx, c.http, providerGemini, endpoint, map[string]string{"x-goog-api-key": c.apiKey}, request)
	if err != nil {
		return "", body, err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", body, err
	}
	if len(parsed.Candidates) == 0 {
		return "", body, errors.New("gemini response missing candidates")
	}

	candidate := parsed.Candidates[0]
	if candidate.FinishReason == "MAX_TOKENS" {
		return "", body, errors.New("gemini response truncated")
	}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		builder.WriteString(part.Text)
	}
	if builder.Len() == 0 {
		return "", body, errors.New("gemini response missing content")
	}

	return builder.String(), body, nil
}

func buildGeminiRequest(messages []Message, maxTokens int) (geminiRequest, error) {
	request := geminiRequest{
		Contents: make([]geminiContent, 0, len(messages)),
		GenerationConfig: geminiConfig{
			Temperature:      adviceTemperature,
			MaxOutputTokens:  maxTokens,
			ResponseMimeType: contentTypeJSON,
		},
	}

	var system []geminiPart
	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(message.Role)) {
		case roleSystem:
			system = append(system, geminiPart{Text: text})
		case roleAssistant, roleModel:
			request.Contents = append(request.Contents, geminiContent{Role: roleModel, Parts: []geminiPart{{Text: text}}})
		default:
			request.Contents = append(request.Contents, geminiContent{Role: roleUser, Parts: []geminiPart{{Text: text}}})
		}
	}

	if len(request.Contents) == 0 {
		return request, errors.New("gemini request has no user content")
	}
	if len(system) > 0 {
		request.SystemInstruction = &geminiContent{Parts: system}
	}

	return request, nil
}
