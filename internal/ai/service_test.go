package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubClient struct {
	content string
	err     error
	calls   int
}

func (c *stubClient) Chat(_ context.Context, messages []Message) (string, []byte, error) {
	c.calls++
	if len(messages) != 2 {
		return "", nil, errors.New("unexpected messages")
	}
	return c.content, []byte(c.content), c.err
}

// TestAdviseSpendingParsesFencedJSON проверяет разбор ответа в блоке кода.
func TestAdviseSpendingParsesFencedJSON(t *testing.T) {
	client := &stubClient{content: "```json\n{\"summary\":\"ok\",\"advices\":[{\"content\":\"Cook at home\",\"type\":\"\"}]}\n```"}
	service := NewService(client)

	response, prompt, _, err := service.AdviseSpending(context.Background(), AdviseSpendingInput{Month: "2026-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "\"month\": \"2026-01\"") {
		t.Fatalf("expected prompt to embed input, got %s", prompt)
	}
	if len(response.Advices) != 1 || response.Advices[0].Type != adviceTypeTip {
		t.Fatalf("unexpected advices: %+v", response.Advices)
	}
}

// TestAdviseSpendingRejectsInvalidType проверяет валидацию типа совета.
func TestAdviseSpendingRejectsInvalidType(t *testing.T) {
	client := &stubClient{content: `{"advices":[{"content":"x","type":"joke"}]}`}

	if _, _, _, err := NewService(client).AdviseSpending(context.Background(), AdviseSpendingInput{}); err == nil {
		t.Fatal("expected validation error")
	}
}

// TestAdviseSpendingClientError проверяет проброс ошибки клиента.
func TestAdviseSpendingClientError(t *testing.T) {
	client := &stubClient{err: errors.New("timeout")}

	_, prompt, _, err := NewService(client).AdviseSpending(context.Background(), AdviseSpendingInput{})
	if err == nil {
		t.Fatal("expected error")
	}
	if prompt == "" {
		t.Fatal("expected prompt to be returned for logging")
	}
}

// TestAdviseSpendingWithoutClient проверяет ошибку без настроенного клиента.
func TestAdviseSpendingWithoutClient(t *testing.T) {
	var service *Service
	if _, _, _, err := service.AdviseSpending(context.Background(), AdviseSpendingInput{}); err == nil {
		t.Fatal("expected error")
	}
}

// TestFallbackAdvice проверяет детерминированные советы.
func TestFallbackAdvice(t *testing.T) {
	input := AdviseSpendingInput{
		Month:               "2026-01",
		VariableBudgetCents: 100000,
		VariableSpentCents:  120000,
		Categories: []CategorySpend{
			{Category: "food", Count: 3, SpentCents: 30000},
			{Category: "fun", Count: 2, SpentCents: 90000},
		},
		Cards: []CardDebt{
			{Name: "Visa", BalanceCents: 50000, DaysUntilDue: 3},
			{Name: "Amex", BalanceCents: 50000, DaysUntilDue: 20},
		},
		SavingsPerPaycheckCents:  50000,
		AvailableForSavingsCents: 10000,
	}

	response := FallbackAdvice(input)
	if len(response.Advices) != 4 {
		t.Fatalf("expected 4 advices, got %+v", response.Advices)
	}
	if response.Advices[0].Category != "fun" {
		t.Fatalf("expected top category fun, got %s", response.Advices[0].Category)
	}
	if !strings.Contains(response.Advices[0].Content, "75%") {
		t.Fatalf("expected share in advice, got %s", response.Advices[0].Content)
	}
	if !strings.Contains(response.Advices[1].Content, "$200.00") {
		t.Fatalf("expected overspend amount, got %s", response.Advices[1].Content)
	}
	if !strings.Contains(response.Advices[2].Content, "Visa") {
		t.Fatalf("expected Visa reminder, got %s", response.Advices[2].Content)
	}
	if response.Advices[3].Type != adviceTypeSaving {
		t.Fatalf("expected saving advice, got %s", response.Advices[3].Type)
	}
	if err := validateAdviceResponse(response); err != nil {
		t.Fatalf("fallback must pass validation: %v", err)
	}
}

// TestFallbackAdviceEmpty проверяет совет при пустом месяце.
func TestFallbackAdviceEmpty(t *testing.T) {
	response := FallbackAdvice(AdviseSpendingInput{Month: "2026-02"})
	if len(response.Advices) != 1 {
		t.Fatalf("expected single advice, got %+v", response.Advices)
	}
}

// TestFormatCents проверяет форматирование сумм.
func TestFormatCents(t *testing.T) {
	if got := formatCents(-53429); got != "-$534.29" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := formatCents(5); got != "$0.05" {
		t.Fatalf("unexpected format: %s", got)
	}
}
