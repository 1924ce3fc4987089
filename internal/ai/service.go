package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	adviceTypeTip     = "tip"
	adviceTypeWarning = "warning"
	adviceTypeSaving  = "saving"

	maxAdvices       = 6
	maxAdviceLength  = 500
	maxSummaryLength = 300
)

type Service struct {
	client Client
}

// NewService создает сервис работы с AI-клиентом.
func NewService(client Client) *Service {
	return &Service{client: client}
}

// AdviseSpending запрашивает у AI советы по расходам месяца и валидирует ответ.
// Возвращает также промпт и сырой ответ API для журнала запросов.
func (s *Service) AdviseSpending(ctx context.Context, input AdviseSpendingInput) (AdviceResponse, string, []byte, error) {
	if s == nil || s.client == nil {
		return AdviceResponse{}, "", nil, errors.New("ai client is not configured")
	}

	prompt, err := buildAdvicePrompt(input)
	if err != nil {
		return AdviceResponse{}, "", nil, err
	}

	messages := []Message{
		{Role: roleSystem, Content: "You are a personal finance assistant for a household that pays with credit cards. Respond with JSON only, without extra text."},
		{Role: roleUser, Content: prompt},
	}

	content, raw, err := s.client.Chat(ctx, messages)
	if err != nil {
		return AdviceResponse{}, prompt, raw, err
	}

	var response AdviceResponse
	if err := parseJSON(content, &response); err != nil {
		return AdviceResponse{}, prompt, raw, err
	}

	normalizeAdviceResponse(&response)
	if err := validateAdviceResponse(response); err != nil {
		return AdviceResponse{}, prompt, raw, err
	}

	return response, prompt, raw, nil
}

// FallbackAdvice строит детерминированные советы без обращения к модели.
func FallbackAdvice(input AdviseSpendingInput) AdviceResponse {
	advices := make([]Advice, 0, 4)

	categories := append([]CategorySpend(nil), input.Categories...)
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].SpentCents > categories[j].SpentCents
	})

	if len(categories) > 0 && categories[0].SpentCents > 0 {
		top := categories[0]
		content := fmt.Sprintf("Your largest category this month is %s with %s across %d purchases.",
			top.Category, formatCents(top.SpentCents), top.Count)
		if input.VariableSpentCents > 0 {
			share := top.SpentCents * 100 / input.VariableSpentCents
			content = fmt.Sprintf("%s It is %d%% of variable spending.", content, share)
		}
		advices = append(advices, Advice{Content: content, Type: adviceTypeTip, Category: top.Category})
	}

	if input.VariableBudgetCents > 0 && input.VariableSpentCents > input.VariableBudgetCents {
		advices = append(advices, Advice{
			Content: fmt.Sprintf("Variable spending is %s over the monthly budget of %s.",
				formatCents(input.VariableSpentCents-input.VariableBudgetCents), formatCents(input.VariableBudgetCents)),
			Type: adviceTypeWarning,
		})
	}

	for _, card := range input.Cards {
		if card.StatementPaid || card.BalanceCents <= 0 || card.DaysUntilDue < 0 || card.DaysUntilDue > 7 {
			continue
		}
		advices = append(advices, Advice{
			Content: fmt.Sprintf("%s statement of %s is due in %d days.", card.Name, formatCents(card.BalanceCents), card.DaysUntilDue),
			Type:    adviceTypeWarning,
		})
	}

	switch {
	case input.AvailableForSavingsCents >= input.SavingsPerPaycheckCents && input.SavingsPerPaycheckCents > 0:
		advices = append(advices, Advice{
			Content: fmt.Sprintf("You can move %s to savings and stay above your comfort buffer.", formatCents(input.AvailableForSavingsCents)),
			Type:    adviceTypeSaving,
		})
	case input.SavingsPerPaycheckCents > 0:
		advices = append(advices, Advice{
			Content: fmt.Sprintf("Only %s is free for savings before the next paycheck; the goal is %s.",
				formatCents(max64(input.AvailableForSavingsCents, 0)), formatCents(input.SavingsPerPaycheckCents)),
			Type: adviceTypeSaving,
		})
	}

	if len(advices) == 0 {
		advices = append(advices, Advice{Content: "No spending recorded yet this month.", Type: adviceTypeTip})
	}

	return AdviceResponse{
		Summary: fmt.Sprintf("Spent %s on variable expenses in %s.", formatCents(input.VariableSpentCents), input.Month),
		Advices: advices,
	}
}

func buildAdvicePrompt(input AdviseSpendingInput) (string, error) {
	payload, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Analyze this month's spending and return concise advice as JSON.

Requirements:
- Output JSON only, no code fences.
- All amounts in the input are integer cents.
- Schema:
{
  "summary": string,
  "advices": [
    {"content": string, "type": "tip" | "warning" | "saving", "category": string}
  ]
}
- Provide 3-5 actionable advices.
- Mention upcoming card payments when a statement is due within 7 days.
- Keep the summary to one sentence.

Input:
%s`, string(payload))

	return prompt, nil
}

func parseJSON(input string, target interface{}) error {
	payload := extractJSON(input)
	if payload == "" {
		return errors.New("ai response does not contain json")
	}

	return json.Unmarshal([]byte(payload), target)
}

func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}

func normalizeAdviceResponse(response *AdviceResponse) {
	response.Summary = strings.TrimSpace(response.Summary)
	for i := range response.Advices {
		response.Advices[i].Content = strings.TrimSpace(response.Advices[i].Content)
		response.Advices[i].Type = strings.ToLower(strings.TrimSpace(response.Advices[i].Type))
		if response.Advices[i].Type == "" {
			response.Advices[i].Type = adviceTypeTip
		}
	}
	if len(response.Advices) > maxAdvices {
		response.Advices = response.Advices[:maxAdvices]
	}
}

func validateAdviceResponse(response AdviceResponse) error {
	if len(response.Advices) == 0 {
		return errors.New("advices are required")
	}
	if len(response.Summary) > maxSummaryLength {
		return errors.New("summary is too long")
	}

	for _, advice := range response.Advices {
		if advice.Content == "" {
			return errors.New("advice content is required")
		}
		if len(advice.Content) > maxAdviceLength {
			return errors.New("advice content is too long")
		}
		if !isAdviceType(advice.Type) {
			return fmt.Errorf("invalid advice type: %s", advice.Type)
		}
	}

	return nil
}

func isAdviceType(value string) bool {
	switch value {
	case adviceTypeTip, adviceTypeWarning, adviceTypeSaving:
		return true
	default:
		return false
	}
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
