package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultMaxTokens   = 1024
	adviceTemperature  = 0.2
	maxResponseBytes   = 1 << 20
	providerGroq       = "groq"
	providerGemini     = "gemini"
	contentTypeJSON    = "application/json"
	roleSystem         = "system"
	roleAssistant      = "assistant"
	roleModel          = "model"
	roleUser           = "user"
	responseFormatJSON = "json_object"
)

// ErrMissingAPIKey возвращается, если ключ провайдера не задан; обработчик в этом случае отдает запасные советы.
var ErrMissingAPIKey = errors.New("ai api key is missing")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client отправляет диалог модели и возвращает текст ответа и сырое тело ответа API.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, []byte, error)
}

type httpDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

type apiErrorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}
	return defaultMaxTokens
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// postJSON отправляет payload и возвращает тело ответа. Статус вне 2xx превращается в ошибку
// с сообщением провайдера; тело при этом тоже возвращается для журнала запросов.
func postJSON(ctx context.Context, httpClient httpDoer, provider, endpoint string, headers map[string]string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", contentTypeJSON)
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", provider, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var apiErr apiErrorBody
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			return body, fmt.Errorf("%s api error (%d): %s", provider, response.StatusCode, apiErr.Error.Message)
		}
		return body, fmt.Errorf("%s api error (%d): %s", provider, response.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
