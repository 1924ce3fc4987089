package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/models"
	"example.com/card-planner/backend/internal/notifications"
	"example.com/card-planner/backend/internal/planner"
	"example.com/card-planner/backend/internal/repository"
)

type ExpenseHandler struct {
	Expenses *repository.ExpenseRepository
	Notifier *notifications.Hub
	Clock    Clock
}

// NewExpenseHandler создает обработчик постоянных и переменных расходов.
func NewExpenseHandler(expenses *repository.ExpenseRepository, notifier *notifications.Hub, clock Clock) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses, Notifier: notifier, Clock: clock}
}

type FixedExpenseRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	DueDay   int     `json:"due_day" validate:"min=1,max=31"`
	Category string  `json:"category" validate:"max=50"`
	Active   *bool   `json:"active"`
}

type MarkPaidRequest struct {
	Amount           float64 `json:"amount" validate:"gte=0"`
	PaymentMethod    string  `json:"payment_method" validate:"omitempty,oneof=cash card"`
	CardID           *string `json:"card_id"`
	Date             string  `json:"date"`
	AlreadyInBalance bool    `json:"already_in_balance"`
}

type VariableExpenseRequest struct {
	Description string  `json:"description" validate:"required,max=200"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Category    string  `json:"category" validate:"max=50"`
	CardID      *string `json:"card_id"`
	Date        string  `json:"date"`
}

type FixedExpenseResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Amount   float64   `json:"amount"`
	DueDay   int       `json:"due_day"`
	Category string    `json:"category"`
	Active   bool      `json:"active"`
	Paid     bool      `json:"paid_this_month"`
}

type ExpensePaymentResponse struct {
	ID            uuid.UUID            `json:"id"`
	ExpenseID     uuid.UUID            `json:"expense_id"`
	Month         int                  `json:"month"`
	Year          int                  `json:"year"`
	Amount        float64              `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	CardID        *uuid.UUID           `json:"card_id,omitempty"`
	PaidAt        time.Time            `json:"paid_at"`
}

type VariableExpenseResponse struct {
	ID               uuid.UUID  `json:"id"`
	Description      string     `json:"description"`
	Amount           float64    `json:"amount"`
	Category         string     `json:"category"`
	CardID           *uuid.UUID `json:"card_id,omitempty"`
	Date             string     `json:"date"`
	RecommendationID *uuid.UUID `json:"recommendation_id,omitempty"`
}

type ThisMonthResponse struct {
	Month         string                    `json:"month"`
	Fixed         []FixedExpenseResponse    `json:"fixed"`
	Payments      []ExpensePaymentResponse  `json:"payments"`
	Variable      []VariableExpenseResponse `json:"variable"`
	FixedTotal    float64                   `json:"fixed_total"`
	FixedPaid     float64                   `json:"fixed_paid"`
	FixedPending  float64                   `json:"fixed_pending"`
	VariableTotal float64                   `json:"variable_total"`
}

// ListFixed возвращает постоянные расходы с отметкой оплаты в текущем месяце.
func (h *ExpenseHandler) ListFixed(c echo.Context) error {
	ctx := c.Request().Context()
	today := h.Clock.Today()

	expenses, err := h.Expenses.ListFixed(ctx, false)
	if err != nil {
		return serverError(c)
	}
	paid, err := h.Expenses.PaidExpenseIDs(ctx, today.Month(), today.Year())
	if err != nil {
		return serverError(c)
	}

	response := make([]FixedExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		response = append(response, toFixedExpenseResponse(e, paid[e.ID]))
	}

	return c.JSON(http.StatusOK, map[string][]FixedExpenseResponse{"fixed_expenses": response})
}

// CreateFixed добавляет постоянный расход.
func (h *ExpenseHandler) CreateFixed(c echo.Context) error {
	input, err := bindFixedExpense(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expense, err := h.Expenses.CreateFixed(c.Request().Context(), input)
	if err != nil {
		return writeExpenseError(c, err)
	}

	return c.JSON(http.StatusCreated, toFixedExpenseResponse(expense, false))
}

// UpdateFixed меняет постоянный расход.
func (h *ExpenseHandler) UpdateFixed(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid expense id")
	}

	input, err := bindFixedExpense(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expense, err := h.Expenses.UpdateFixed(c.Request().Context(), id, input)
	if err != nil {
		return writeExpenseError(c, err)
	}

	return c.JSON(http.StatusOK, toFixedExpenseResponse(expense, false))
}

// PayFixed отмечает постоянный расход оплаченным за месяц указанной даты.
func (h *ExpenseHandler) PayFixed(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid expense id")
	}

	var req MarkPaidRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	paidAt, err := h.dateOrToday(req.Date)
	if err != nil {
		return badRequest(c, "invalid date")
	}
	cardID, err := parseOptionalID(req.CardID)
	if err != nil {
		return badRequest(c, "invalid card id")
	}

	method := models.PaymentMethod(req.PaymentMethod)
	if method == models.PaymentMethodCard && cardID == nil {
		return badRequest(c, "card_id is required for card payments")
	}

	payment, change, err := h.Expenses.MarkFixedPaid(c.Request().Context(), repository.MarkPaidInput{
		ExpenseID:        id,
		PaidAt:           paidAt,
		AmountCents:      planner.ToCents(req.Amount),
		Method:           method,
		CardID:           cardID,
		AlreadyInBalance: req.AlreadyInBalance,
	})
	if err != nil {
		return writeExpenseError(c, err)
	}

	publishBalanceUpdate(h.Notifier, change.Account, change.Card)
	return c.JSON(http.StatusOK, toExpensePaymentResponse(payment))
}

// AddVariable записывает переменный расход наличными или картой.
func (h *ExpenseHandler) AddVariable(c echo.Context) error {
	var req VariableExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return badRequest(c, "description is required")
	}
	date, err := h.dateOrToday(req.Date)
	if err != nil {
		return badRequest(c, "invalid date")
	}
	cardID, err := parseOptionalID(req.CardID)
	if err != nil {
		return badRequest(c, "invalid card id")
	}

	expense, change, err := h.Expenses.AddVariable(c.Request().Context(), repository.VariableExpenseInput{
		Description: description,
		AmountCents: planner.ToCents(req.Amount),
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		CardID:      cardID,
		ExpenseDate: date,
	})
	if err != nil {
		return writeExpenseError(c, err)
	}

	publishBalanceUpdate(h.Notifier, change.Account, change.Card)
	return c.JSON(http.StatusCreated, toVariableExpenseResponse(expense))
}

// DeleteVariable удаляет переменный расход и возвращает деньги на счет или карту.
func (h *ExpenseHandler) DeleteVariable(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid expense id")
	}

	change, err := h.Expenses.DeleteVariable(c.Request().Context(), id)
	if err != nil {
		return writeExpenseError(c, err)
	}

	publishBalanceUpdate(h.Notifier, change.Account, change.Card)
	return c.NoContent(http.StatusNoContent)
}

// ThisMonth возвращает расходы текущего месяца.
func (h *ExpenseHandler) ThisMonth(c echo.Context) error {
	ctx := c.Request().Context()
	today := h.Clock.Today()
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	end := start.AddDate(0, 1, 0)

	fixed, err := h.Expenses.ListFixed(ctx, true)
	if err != nil {
		return serverError(c)
	}
	payments, err := h.Expenses.PaymentsForMonth(ctx, today.Month(), today.Year())
	if err != nil {
		return serverError(c)
	}
	variable, err := h.Expenses.VariableBetween(ctx, start, end)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, buildThisMonth(start, fixed, payments, variable))
}

func buildThisMonth(month time.Time, fixed []models.FixedExpense, payments []models.ExpensePayment, variable []models.VariableExpense) ThisMonthResponse {
	paid := make(map[uuid.UUID]bool, len(payments))
	response := ThisMonthResponse{
		Month:    month.Format("2006-01"),
		Fixed:    make([]FixedExpenseResponse, 0, len(fixed)),
		Payments: make([]ExpensePaymentResponse, 0, len(payments)),
		Variable: make([]VariableExpenseResponse, 0, len(variable)),
	}

	var paidCents, fixedCents, pendingCents, variableCents int64
	for _, p := range payments {
		paid[p.ExpenseID] = true
		paidCents += p.AmountCents
		response.Payments = append(response.Payments, toExpensePaymentResponse(p))
	}
	for _, e := range fixed {
		fixedCents += e.AmountCents
		if !paid[e.ID] {
			pendingCents += e.AmountCents
		}
		response.Fixed = append(response.Fixed, toFixedExpenseResponse(e, paid[e.ID]))
	}
	for _, v := range variable {
		variableCents += v.AmountCents
		response.Variable = append(response.Variable, toVariableExpenseResponse(v))
	}

	response.FixedTotal = money(fixedCents)
	response.FixedPaid = money(paidCents)
	response.FixedPending = money(pendingCents)
	response.VariableTotal = money(variableCents)
	return response
}

func (h *ExpenseHandler) dateOrToday(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return h.Clock.Today(), nil
	}
	return h.Clock.parseDate(value)
}

func bindFixedExpense(c echo.Context) (repository.FixedExpenseInput, error) {
	var req FixedExpenseRequest
	if err := c.Bind(&req); err != nil {
		return repository.FixedExpenseInput{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return repository.FixedExpenseInput{}, errors.New("validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return repository.FixedExpenseInput{}, errors.New("name is required")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return repository.FixedExpenseInput{
		Name:        name,
		AmountCents: planner.ToCents(req.Amount),
		DueDay:      req.DueDay,
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Active:      active,
	}, nil
}

func parseOptionalID(value *string) (*uuid.UUID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*value))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func writeExpenseError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, "expense or card not found")
	case errors.Is(err, repository.ErrAlreadyPaid):
		return conflict(c, "expense already paid this month")
	case errors.Is(err, repository.ErrInvalid):
		return badRequest(c, "invalid expense data")
	default:
		return serverError(c)
	}
}

func toFixedExpenseResponse(e models.FixedExpense, paid bool) FixedExpenseResponse {
	return FixedExpenseResponse{
		ID:       e.ID,
		Name:     e.Name,
		Amount:   money(e.AmountCents),
		DueDay:   e.DueDay,
		Category: e.Category,
		Active:   e.Active,
		Paid:     paid,
	}
}

func toExpensePaymentResponse(p models.ExpensePayment) ExpensePaymentResponse {
	return ExpensePaymentResponse{
		ID:            p.ID,
		ExpenseID:     p.ExpenseID,
		Month:         p.Month,
		Year:          p.Year,
		Amount:        money(p.AmountCents),
		PaymentMethod: p.PaymentMethod,
		CardID:        p.CardID,
		PaidAt:        p.PaidAt,
	}
}

func toVariableExpenseResponse(v models.VariableExpense) VariableExpenseResponse {
	return VariableExpenseResponse{
		ID:               v.ID,
		Description:      v.Description,
		Amount:           money(v.AmountCents),
		Category:         v.Category,
		CardID:           v.CardID,
		Date:             formatDate(v.ExpenseDate),
		RecommendationID: v.RecommendationID,
	}
}
