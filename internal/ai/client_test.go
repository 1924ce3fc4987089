package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testMessages = []Message{
	{Role: roleSystem, Content: "Respond with JSON."},
	{Role: roleUser, Content: "Advise on January spending."},
}

// TestGroqChat проверяет запрос в JSON-режиме и разбор ответа Groq.
func TestGroqChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req groqChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != responseFormatJSON {
			t.Errorf("expected json response format, got %+v", req.ResponseFormat)
		}
		if req.MaxTokens != defaultMaxTokens || len(req.Messages) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewGroqClient("test-key", server.URL+"/", "llama", time.Second, 0)
	content, raw, err := client.Chat(context.Background(), testMessages)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if content != `{"summary":"ok"}` {
		t.Fatalf("unexpected content: %s", content)
	}
	if len(raw) == 0 {
		t.Fatal("expected raw response")
	}
}

// TestGroqChatAPIError проверяет сообщение об ошибке провайдера и сохранение сырого тела.
func TestGroqChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit reached"}}`))
	}))
	defer server.Close()

	client := NewGroqClient("test-key", server.URL, "llama", time.Second, 0)
	_, raw, err := client.Chat(context.Background(), testMessages)
	if err == nil || !strings.Contains(err.Error(), "rate limit reached") || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected raw body for the request log")
	}
}

// TestGroqChatTruncated проверяет отказ от обрезанного ответа.
func TestGroqChatTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"summ"},"finish_reason":"length"}]}`))
	}))
	defer server.Close()

	client := NewGroqClient("test-key", server.URL, "llama", time.Second, 0)
	if _, _, err := client.Chat(context.Background(), testMessages); err == nil {
		t.Fatal("expected truncated response error")
	}
}

// TestGeminiChat проверяет заголовок ключа, systemInstruction и склейку частей ответа.
func TestGeminiChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-flash:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query string, got %s", r.URL.RawQuery)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.SystemInstruction == nil || len(req.Contents) != 1 || req.Contents[0].Role != roleUser {
			t.Errorf("unexpected request: %+v", req)
		}

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"summary\":"},{"text":"\"ok\"}"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL, "gemini-flash", time.Second, 512)
	content, _, err := client.Chat(context.Background(), testMessages)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if content != `{"summary":"ok"}` {
		t.Fatalf("unexpected content: %s", content)
	}
}

// TestBuildGeminiRequestRoles проверяет распределение ролей по запросу Gemini.
func TestBuildGeminiRequestRoles(t *testing.T) {
	request, err := buildGeminiRequest([]Message{
		{Role: "System", Content: "rules"},
		{Role: roleUser, Content: "question"},
		{Role: roleAssistant, Content: "answer"},
		{Role: roleUser, Content: "   "},
	}, 256)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(request.Contents) != 2 || request.Contents[1].Role != roleModel {
		t.Fatalf("unexpected contents: %+v", request.Contents)
	}
	if request.SystemInstruction == nil || request.SystemInstruction.Parts[0].Text != "rules" {
		t.Fatalf("unexpected system instruction: %+v", request.SystemInstruction)
	}
	if request.GenerationConfig.MaxOutputTokens != 256 {
		t.Fatalf("unexpected max tokens: %d", request.GenerationConfig.MaxOutputTokens)
	}

	if _, err := buildGeminiRequest([]Message{{Role: roleSystem, Content: "rules"}}, 256); err == nil {
		t.Fatal("expected error without user content")
	}
}

// TestChatMissingAPIKey проверяет, что без ключа запрос не отправляется.
func TestChatMissingAPIKey(t *testing.T) {
	clients := []Client{
		NewGroqClient(" ", "http://127.0.0.1:0", "llama", time.Second, 0),
		NewGeminiClient("", "http://127.0.0.1:0", "gemini-flash", time.Second, 0),
	}

	for _, client := range clients {
		if _, _, err := client.Chat(context.Background(), testMessages); !errors.Is(err, ErrMissingAPIKey) {
			t.Fatalf("expected missing key error, got %v", err)
		}
	}
}
