package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/ai"
	"example.com/card-planner/backend/internal/planner"
	"example.com/card-planner/backend/internal/repository"
)

const (
	aiRequestSpendingAdvice = "spending_advice"
	defaultCurrency         = "USD"
	defaultHistoryLimit     = 10
)

type InsightHandler struct {
	Service  *ai.Service
	State    stateLoader
	Stats    *repository.StatsRepository
	AIRepo   *repository.AIRepository
	Clock    Clock
	Provider string
	Model    string
}

// NewInsightHandler создает обработчик AI-советов по расходам.
func NewInsightHandler(
	service *ai.Service,
	plannerHandler *PlannerHandler,
	stats *repository.StatsRepository,
	aiRepo *repository.AIRepository,
	provider, model string,
) *InsightHandler {
	return &InsightHandler{
		Service:  service,
		State:    plannerHandler.State,
		Stats:    stats,
		AIRepo:   aiRepo,
		Clock:    plannerHandler.Clock,
		Provider: provider,
		Model:    model,
	}
}

type AdviceRequest struct {
	Month    string `json:"month" validate:"omitempty,month"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type AdviceResponse struct {
	Month    string      `json:"month"`
	Source   string      `json:"source"`
	Summary  string      `json:"summary"`
	Advices  []ai.Advice `json:"advices"`
	Fallback bool        `json:"fallback"`
}

// Advice возвращает советы по расходам месяца; при сбое модели отдает детерминированные советы.
func (h *InsightHandler) Advice(c echo.Context) error {
	var req AdviceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	today := h.Clock.Today()
	month := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	if req.Month != "" {
		parsed, err := time.ParseInLocation(monthLayout, req.Month, today.Location())
		if err != nil {
			return badRequest(c, "invalid month")
		}
		month = parsed
	}

	ctx := c.Request().Context()
	state, err := h.State.load(ctx, today)
	if err != nil {
		return serverError(c)
	}
	categories, err := h.Stats.SpendingByCategory(ctx, month, month.AddDate(0, 1, 0))
	if err != nil {
		return serverError(c)
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	input := buildAdviceInput(state, month, currency, categories)

	inputPayload, _ := json.Marshal(input)
	advice, prompt, raw, err := h.Service.AdviseSpending(ctx, input)
	responsePayload := []byte(nil)
	if err == nil {
		responsePayload, _ = json.Marshal(advice)
	}

	if !errors.Is(err, ai.ErrMissingAPIKey) {
		h.logAIRequest(ctx, input.Month, prompt, inputPayload, responsePayload, raw, err)
	}

	response := AdviceResponse{Month: input.Month, Source: h.Provider}
	if err != nil {
		advice = ai.FallbackAdvice(input)
		response.Source = "fallback"
		response.Fallback = true
		slog.Warn("ai advice fallback used", slog.String("month", input.Month), slog.String("error", err.Error()))
	} else {
		slog.Info("ai advice generated", slog.String("month", input.Month), slog.Int("advices", len(advice.Advices)))
	}
	response.Summary = advice.Summary
	response.Advices = advice.Advices

	return c.JSON(http.StatusOK, response)
}

type AdviceHistoryItem struct {
	ID        string          `json:"id"`
	Month     *string         `json:"month"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Success   bool            `json:"success"`
	Error     *string         `json:"error,omitempty"`
	Advice    json.RawMessage `json:"advice,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// History возвращает последние обращения за советами вместе с ответами модели.
func (h *InsightHandler) History(c echo.Context) error {
	limit, err := parseHistoryLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	entries, err := h.AIRepo.Recent(c.Request().Context(), aiRequestSpendingAdvice, limit)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toAdviceHistory(entries))
}

func parseHistoryLimit(value string) (int, error) {
	if value == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return limit, nil
}

func toAdviceHistory(entries []repository.AIRequestEntry) []AdviceHistoryItem {
	items := make([]AdviceHistoryItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, AdviceHistoryItem{
			ID:        entry.ID.String(),
			Month:     entry.Month,
			Provider:  entry.Provider,
			Model:     entry.Model,
			Success:   entry.Success,
			Error:     entry.ErrorMessage,
			Advice:    entry.Response,
			CreatedAt: entry.CreatedAt,
		})
	}
	return items
}

func (h *InsightHandler) logAIRequest(ctx context.Context, month, prompt string, requestPayload, responsePayload []byte, raw []byte, err error) {
	if h.AIRepo == nil {
		return
	}

	log := repository.AIRequestLog{
		RequestType:     aiRequestSpendingAdvice,
		Month:           month,
		Provider:        h.Provider,
		Model:           h.Model,
		Prompt:          prompt,
		RequestPayload:  requestPayload,
		ResponsePayload: responsePayload,
		RawResponse:     string(raw),
		Success:         err == nil,
	}
	if err != nil {
		errMsg := err.Error()
		log.ErrorMessage = &errMsg
	}

	if logErr := h.AIRepo.LogRequest(ctx, log); logErr != nil {
		slog.Warn("ai request log failed", slog.String("error", logErr.Error()))
	}
}

func buildAdviceInput(state FinancialState, month time.Time, currency string, categories []repository.CategorySpend) ai.AdviseSpendingInput {
	input := ai.AdviseSpendingInput{
		Month:                month.Format(monthLayout),
		Currency:             currency,
		CheckingBalanceCents: state.Checking.BalanceCents,
		SavingsBalanceCents:  state.Savings.BalanceCents,
		Categories:           make([]ai.CategorySpend, 0, len(categories)),
	}

	for _, category := range categories {
		input.Categories = append(input.Categories, ai.CategorySpend{
			Category:   category.Category,
			Count:      category.Count,
			SpentCents: category.SpentCents,
		})
		input.VariableSpentCents += category.SpentCents
	}

	for _, e := range state.Fixed {
		input.FixedMonthlyCents += e.AmountCents
	}

	if state.Income != nil {
		input.MonthlyIncomeCents = state.Income.AmountCents * 2
	}
	if state.Goal != nil {
		input.SavingsPerPaycheckCents = state.Goal.AmountPerPaycheckCents
		input.VariableBudgetCents = state.Goal.VariableExpensesMonthlyCents
	}
	if state.Income != nil && state.Goal != nil {
		availability := state.SavingsAvailability()
		input.AvailableForSavingsCents = planner.ToCents(availability.AvailableForSavings)
	}

	statements := state.Statements()
	for i, card := range state.Cards {
		st := statements[i]
		input.Cards = append(input.Cards, ai.CardDebt{
			Name:          card.Name,
			BalanceCents:  card.ClosedBalanceCents,
			LimitCents:    card.CreditLimitCents,
			DaysUntilDue:  st.DaysUntilPreviousPayment,
			StatementPaid: st.ClosedStatus == planner.StatementPaid,
		})
	}

	return input
}
