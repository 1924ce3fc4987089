package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/notifications"
	"example.com/card-planner/backend/internal/planner"
	"example.com/card-planner/backend/internal/repository"
)

type AccountHandler struct {
	Accounts *repository.AccountRepository
	Notifier *notifications.Hub
}

// NewAccountHandler создает обработчик счетов и настроек.
func NewAccountHandler(accounts *repository.AccountRepository, notifier *notifications.Hub) *AccountHandler {
	return &AccountHandler{Accounts: accounts, Notifier: notifier}
}

type BalanceRequest struct {
	Balance *float64 `json:"balance" validate:"required"`
}

type IncomeRequest struct {
	Amount            float64 `json:"amount" validate:"gt=0"`
	FirstPaycheckDay  int     `json:"first_paycheck_day" validate:"min=1,max=31"`
	SecondPaycheckDay int     `json:"second_paycheck_day" validate:"min=1,max=31"`
}

type SavingsGoalRequest struct {
	AmountPerPaycheck       float64 `json:"amount_per_paycheck" validate:"gte=0"`
	MinBalanceComfort       float64 `json:"min_balance_comfort" validate:"gte=0"`
	VariableExpensesMonthly float64 `json:"variable_expenses_monthly" validate:"gte=0"`
}

type TransferResponse struct {
	CheckingBalance float64 `json:"checking_balance"`
	SavingsBalance  float64 `json:"savings_balance"`
	Transferred     float64 `json:"transferred"`
}

// UpdateBalance задает баланс расчетного счета вручную.
func (h *AccountHandler) UpdateBalance(c echo.Context) error {
	var req BalanceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "balance is required")
	}

	account, err := h.Accounts.SetCheckingBalance(c.Request().Context(), planner.ToCents(*req.Balance))
	if err != nil {
		return serverError(c)
	}

	publishBalanceUpdate(h.Notifier, &account, nil)
	return c.JSON(http.StatusOK, map[string]float64{"checking_balance": money(account.BalanceCents)})
}

// TransferToSavings переводит деньги на сберегательный счет.
func (h *AccountHandler) TransferToSavings(c echo.Context) error {
	var req AmountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "amount must be positive")
	}

	amountCents := planner.ToCents(req.Amount)
	account, savings, err := h.Accounts.TransferToSavings(c.Request().Context(), amountCents)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			return unprocessable(c, "insufficient checking balance")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "amount must be positive")
		default:
			return serverError(c)
		}
	}

	publishBalanceUpdate(h.Notifier, &account, nil)
	return c.JSON(http.StatusOK, TransferResponse{
		CheckingBalance: money(account.BalanceCents),
		SavingsBalance:  money(savings.BalanceCents),
		Transferred:     money(amountCents),
	})
}

// UpdateIncome сохраняет график зарплат.
func (h *AccountHandler) UpdateIncome(c echo.Context) error {
	var req IncomeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	income, err := h.Accounts.UpsertIncomeSchedule(c.Request().Context(), planner.ToCents(req.Amount), req.FirstPaycheckDay, req.SecondPaycheckDay)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "validation failed")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// UpdateSavingsGoal сохраняет цель сбережений.
func (h *AccountHandler) UpdateSavingsGoal(c echo.Context) error {
	var req SavingsGoalRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	goal, err := h.Accounts.UpsertSavingsGoal(c.Request().Context(),
		planner.ToCents(req.AmountPerPaycheck),
		planner.ToCents(req.MinBalanceComfort),
		planner.ToCents(req.VariableExpensesMonthly),
	)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "validation failed")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toSavingsGoalResponse(goal))
}
