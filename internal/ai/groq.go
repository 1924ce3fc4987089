package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// GroqClient ходит в OpenAI-совместимый chat completions API Groq в режиме JSON-ответа.
type GroqClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	http      httpDoer
}

type groqChatRequest struct {
	Model          string              `json:"model"`
	Messages       []Message           `json:"messages"`
	Temperature    float64             `json:"temperature"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	ResponseFormat *groqResponseFormat `json:"response_format,omitempty"`
}

type groqResponseFormat struct {
	Type string `json:"type"`
}

type groqChatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// NewGroqClient создает клиент Groq.
func NewGroqClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *GroqClient {
	return &GroqClient{
		apiKey:    strings.TrimSpace(apiKey),
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		maxTokens: maxTokens,
		http:      newHTTPClient(timeout),
	}
}

// Chat отправляет диалог в Groq.
func (c *GroqClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if c.apiKey == "" {
		return "", nil, ErrMissingAPIKey
	}

	request := groqChatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    adviceTemperature,
		MaxTokens:      resolveMaxTokens(c.maxTokens),
		ResponseFormat: &groqResponseFormat{Type: responseFormatJSON},
	}

	body, err := postJSON(ctx, c.http, providerGroq, c.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.apiKey}, request)
	if err != nil {
		return "", body, err
	}

	var parsed groqChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", body, err
	}
	if len(parsed.Choices) == 0 {
		return "", body, errors.New("groq response missing choices")
	}
	if parsed.Choices[0].FinishReason == "length" {
		return "", body, errors.New("groq response truncated")
	}

	return parsed.Choices[0].Message.Content, body, nil
}
