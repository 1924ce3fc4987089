package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/planner"
	"example.com/card-planner/backend/internal/repository"
)

const monthLayout = "2006-01"

type StatsHandler struct {
	Stats *repository.StatsRepository
	Clock Clock
}

// NewStatsHandler создает обработчик статистики.
func NewStatsHandler(stats *repository.StatsRepository, clock Clock) *StatsHandler {
	return &StatsHandler{Stats: stats, Clock: clock}
}

type CategorySpendingResponse struct {
	Month      string                     `json:"month"`
	Total      float64                    `json:"total"`
	Categories []CategorySpendingCategory `json:"categories"`
	Summary    MonthSummaryResponse       `json:"summary"`
}

type CategorySpendingCategory struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Spent    float64 `json:"spent"`
	Share    float64 `json:"share"`
}

type MonthSummaryResponse struct {
	FixedPaid    float64 `json:"fixed_paid"`
	Variable     float64 `json:"variable"`
	CardPayments float64 `json:"card_payments"`
	CardCharges  float64 `json:"card_charges"`
	CashSpent    float64 `json:"cash_spent"`
}

// Categories возвращает траты по категориям за месяц (?month=YYYY-MM, по умолчанию текущий).
func (h *StatsHandler) Categories(c echo.Context) error {
	month, err := h.parseMonth(c.QueryParam("month"))
	if err != nil {
		return badRequest(c, "invalid month")
	}

	ctx := c.Request().Context()
	items, err := h.Stats.SpendingByCategory(ctx, month, month.AddDate(0, 1, 0))
	if err != nil {
		return serverError(c)
	}
	summary, err := h.Stats.MonthSummary(ctx, month.Month(), month.Year())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, buildCategorySpending(month, items, summary))
}

func (h *StatsHandler) parseMonth(value string) (time.Time, error) {
	today := h.Clock.Today()
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), nil
	}
	return time.ParseInLocation(monthLayout, value, today.Location())
}

func buildCategorySpending(month time.Time, items []repository.CategorySpend, summary repository.MonthSummary) CategorySpendingResponse {
	var total int64
	for _, item := range items {
		total += item.SpentCents
	}

	categories := make([]CategorySpendingCategory, 0, len(items))
	for _, item := range items {
		share := 0.0
		if total > 0 {
			share = float64(item.SpentCents) / float64(total) * 100
		}
		categories = append(categories, CategorySpendingCategory{
			Category: item.Category,
			Count:    item.Count,
			Spent:    money(item.SpentCents),
			Share:    planner.Round1(share),
		})
	}

	return CategorySpendingResponse{
		Month:      month.Format(monthLayout),
		Total:      money(total),
		Categories: categories,
		Summary: MonthSummaryResponse{
			FixedPaid:    money(summary.FixedPaidCents),
			Variable:     money(summary.VariableCents),
			CardPayments: money(summary.CardPaymentsCents),
			CardCharges:  money(summary.CardChargesCents),
			CashSpent:    money(summary.CashSpentCents),
		},
	}
}
