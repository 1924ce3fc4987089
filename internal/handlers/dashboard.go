package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/models"
	"example.com/card-planner/backend/internal/planner"
)

type DashboardResponse struct {
	Today           string                 `json:"today"`
	Configured      bool                   `json:"configured"`
	CheckingBalance float64                `json:"checking_balance"`
	Savings         SavingsAccountResponse `json:"savings"`
	Cards           []CardResponse         `json:"cards"`
	Income          *IncomeResponse        `json:"income"`
	SavingsGoal     *SavingsGoalResponse   `json:"savings_goal"`
	DebtSummary     DebtSummaryResponse    `json:"debt_summary"`
	NextPaycheck    *string                `json:"next_paycheck_date"`
	PendingFixed    float64                `json:"pending_fixed_expenses"`
}

type SavingsAccountResponse struct {
	Balance float64 `json:"balance"`
	Target  float64 `json:"target"`
}

type IncomeResponse struct {
	Amount            float64 `json:"amount"`
	FirstPaycheckDay  int     `json:"first_paycheck_day"`
	SecondPaycheckDay int     `json:"second_paycheck_day"`
}

type SavingsGoalResponse struct {
	AmountPerPaycheck       float64 `json:"amount_per_paycheck"`
	MinBalanceComfort       float64 `json:"min_balance_comfort"`
	VariableExpensesMonthly float64 `json:"variable_expenses_monthly"`
}

type DebtSummaryResponse struct {
	TotalClosed float64           `json:"total_closed"`
	TotalOpen   float64           `json:"total_open"`
	TotalDebt   float64           `json:"total_debt"`
	ClosedCards []DebtCardSummary `json:"closed_cards"`
	OpenCards   []DebtCardSummary `json:"open_cards"`
}

type DebtCardSummary struct {
	CardID           uuid.UUID `json:"card_id"`
	Name             string    `json:"name"`
	Balance          float64   `json:"balance"`
	PaymentDate      string    `json:"payment_date"`
	DaysUntilPayment int       `json:"days_until_payment"`
}

type SavingsAvailabilityResponse struct {
	CurrentBalance      float64 `json:"current_balance"`
	MinBalanceRequired  float64 `json:"min_balance_required"`
	UpcomingExpenses    float64 `json:"upcoming_expenses"`
	AvailableForSavings float64 `json:"available_for_savings"`
	RecommendedTransfer float64 `json:"recommended_transfer"`
	GoalPerPaycheck     float64 `json:"goal_per_paycheck"`
	WouldMeetGoal       bool    `json:"would_meet_goal"`
	NextPaycheckDate    string  `json:"next_paycheck_date"`
	CurrentPeriod       string  `json:"current_period"`
}

// Dashboard возвращает балансы, выписки карт и сводку долга.
func (h *PlannerHandler) Dashboard(c echo.Context) error {
	state, err := h.State.load(c.Request().Context(), h.Clock.Today())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, buildDashboard(state))
}

// SavingsAvailable считает, сколько можно перевести на сбережения до следующей зарплаты.
func (h *PlannerHandler) SavingsAvailable(c echo.Context) error {
	state, err := h.State.load(c.Request().Context(), h.Clock.Today())
	if err != nil {
		return serverError(c)
	}
	if state.Income == nil || state.Goal == nil {
		return badRequest(c, setupRequiredMessage)
	}

	return c.JSON(http.StatusOK, toSavingsAvailabilityResponse(state.SavingsAvailability()))
}

func buildDashboard(state FinancialState) DashboardResponse {
	statements := state.Statements()

	response := DashboardResponse{
		Today:           formatDate(state.Today),
		Configured:      state.Configured(),
		CheckingBalance: money(state.Checking.BalanceCents),
		Savings: SavingsAccountResponse{
			Balance: money(state.Savings.BalanceCents),
			Target:  money(state.Savings.TargetCents),
		},
		Cards: make([]CardResponse, 0, len(state.Cards)),
		DebtSummary: DebtSummaryResponse{
			ClosedCards: make([]DebtCardSummary, 0),
			OpenCards:   make([]DebtCardSummary, 0),
		},
	}

	var totalClosed, totalOpen float64
	for i, card := range state.Cards {
		st := statements[i]
		response.Cards = append(response.Cards, toCardResponse(card, st))

		totalClosed += st.ClosedBalance
		totalOpen += st.OpenBalance
		if st.ClosedBalance > 0 {
			response.DebtSummary.ClosedCards = append(response.DebtSummary.ClosedCards, DebtCardSummary{
				CardID:           card.ID,
				Name:             card.Name,
				Balance:          planner.Round2(st.ClosedBalance),
				PaymentDate:      formatDate(st.PreviousPaymentDate),
				DaysUntilPayment: st.DaysUntilPreviousPayment,
			})
		}
		if st.OpenBalance > 0 {
			response.DebtSummary.OpenCards = append(response.DebtSummary.OpenCards, DebtCardSummary{
				CardID:           card.ID,
				Name:             card.Name,
				Balance:          planner.Round2(st.OpenBalance),
				PaymentDate:      formatDate(st.CurrentPaymentDate),
				DaysUntilPayment: st.DaysUntilCurrentPayment,
			})
		}
	}
	response.DebtSummary.TotalClosed = planner.Round2(totalClosed)
	response.DebtSummary.TotalOpen = planner.Round2(totalOpen)
	response.DebtSummary.TotalDebt = planner.Round2(totalClosed + totalOpen)

	if state.Income != nil {
		income := toIncomeResponse(*state.Income)
		response.Income = &income

		next := planner.NextPaycheck(state.Income.Planner(), state.Today)
		if !next.IsZero() {
			response.NextPaycheck = formatDatePtr(&next)
		}
	}
	if state.Goal != nil {
		goal := toSavingsGoalResponse(*state.Goal)
		response.SavingsGoal = &goal
	}

	pending, _ := planner.PendingFixed(state.obligations(), state.Paid)
	response.PendingFixed = planner.Round2(pending)

	return response
}

func toIncomeResponse(income models.IncomeSchedule) IncomeResponse {
	return IncomeResponse{
		Amount:            money(income.AmountCents),
		FirstPaycheckDay:  income.FirstPaycheckDay,
		SecondPaycheckDay: income.SecondPaycheckDay,
	}
}

func toSavingsGoalResponse(goal models.SavingsGoal) SavingsGoalResponse {
	return SavingsGoalResponse{
		AmountPerPaycheck:       money(goal.AmountPerPaycheckCents),
		MinBalanceComfort:       money(goal.MinBalanceComfortCents),
		VariableExpensesMonthly: money(goal.VariableExpensesMonthlyCents),
	}
}

func toSavingsAvailabilityResponse(a planner.SavingsAvailability) SavingsAvailabilityResponse {
	return SavingsAvailabilityResponse{
		CurrentBalance:      planner.Round2(a.CurrentBalance),
		MinBalanceRequired:  planner.Round2(a.MinBalanceRequired),
		UpcomingExpenses:    planner.Round2(a.UpcomingExpenses),
		AvailableForSavings: planner.Round2(a.AvailableForSavings),
		RecommendedTransfer: planner.Round2(a.RecommendedTransfer),
		GoalPerPaycheck:     planner.Round2(a.GoalPerPaycheck),
		WouldMeetGoal:       a.WouldMeetGoal,
		NextPaycheckDate:    formatDate(a.NextPaycheckDate),
		CurrentPeriod:       a.CurrentPeriod,
	}
}
