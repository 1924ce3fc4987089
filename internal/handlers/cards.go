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

type CardHandler struct {
	Cards    *repository.CardRepository
	Notifier *notifications.Hub
	Clock    Clock
}

// NewCardHandler создает обработчик кредитных карт.
func NewCardHandler(cards *repository.CardRepository, notifier *notifications.Hub, clock Clock) *CardHandler {
	return &CardHandler{Cards: cards, Notifier: notifier, Clock: clock}
}

type CardRequest struct {
	Name              string  `json:"name" validate:"required,max=100"`
	ClosingDay        int     `json:"closing_day" validate:"min=1,max=31"`
	PaymentDueDay     int     `json:"payment_due_day" validate:"min=1,max=31"`
	CreditLimit       float64 `json:"credit_limit" validate:"gte=0"`
	ClosedBalance     float64 `json:"closed_balance" validate:"gte=0"`
	OpenBalance       float64 `json:"open_balance" validate:"gte=0"`
	ManualPaymentDate *string `json:"manual_payment_date"`
	APR               float64 `json:"apr" validate:"gte=0,lte=200"`
}

type AmountRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

type CardResponse struct {
	ID              uuid.UUID               `json:"id"`
	Name            string                  `json:"name"`
	ClosingDay      int                     `json:"closing_day"`
	PaymentDueDay   int                     `json:"payment_due_day"`
	CreditLimit     float64                 `json:"credit_limit"`
	APR             float64                 `json:"apr"`
	ClosedStatement ClosedStatementResponse `json:"closed_statement"`
	OpenStatement   OpenStatementResponse   `json:"open_statement"`
	TotalBalance    float64                 `json:"current_balance"`
	AvailableCredit float64                 `json:"available_credit"`
	Utilization     float64                 `json:"utilization"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

type ClosedStatementResponse struct {
	Balance          float64 `json:"balance"`
	CloseDate        string  `json:"close_date"`
	PaymentDate      string  `json:"payment_date"`
	DaysUntilPayment int     `json:"days_until_payment"`
	Status           string  `json:"status"`
	ManualDate       bool    `json:"manual_payment_date"`
}

type OpenStatementResponse struct {
	Balance          float64 `json:"balance"`
	CloseDate        string  `json:"close_date"`
	DaysUntilClose   int     `json:"days_until_close"`
	PaymentDate      string  `json:"payment_date"`
	DaysUntilPayment int     `json:"days_until_payment"`
}

type CardPaymentResultResponse struct {
	Card            CardResponse `json:"card"`
	CheckingBalance float64      `json:"checking_balance"`
	AmountPaid      float64      `json:"amount_paid"`
	PaidAt          time.Time    `json:"paid_at"`
}

// List возвращает карты с текущими выписками.
func (h *CardHandler) List(c echo.Context) error {
	cards, err := h.Cards.List(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	today := h.Clock.Today()
	response := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		response = append(response, toCardResponse(card, planner.CardStatement(card.PlannerAccount(), today)))
	}

	return c.JSON(http.StatusOK, map[string][]CardResponse{"cards": response})
}

// Create добавляет карту.
func (h *CardHandler) Create(c echo.Context) error {
	input, err := h.bindCard(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	lastClosed := planner.PreviousClosingDate(input.ClosingDay, h.Clock.Today())
	input.LastClosedOn = &lastClosed

	card, err := h.Cards.Create(c.Request().Context(), input)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, h.response(card))
}

// Update меняет параметры карты.
func (h *CardHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid card id")
	}

	input, err := h.bindCard(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	card, err := h.Cards.Update(c.Request().Context(), id, input)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, h.response(card))
}

// Delete удаляет карту.
func (h *CardHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid card id")
	}

	if err := h.Cards.Delete(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Pay оплачивает карту с расчетного счета.
func (h *CardHandler) Pay(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid card id")
	}

	var req AmountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "amount must be positive")
	}

	result, err := h.Cards.Pay(c.Request().Context(), id, planner.ToCents(req.Amount))
	if err != nil {
		return h.writeError(c, err)
	}

	publishBalanceUpdate(h.Notifier, &result.Account, &result.Card)

	return c.JSON(http.StatusOK, CardPaymentResultResponse{
		Card:            h.response(result.Card),
		CheckingBalance: money(result.Account.BalanceCents),
		AmountPaid:      money(result.Payment.AmountCents),
		PaidAt:          result.Payment.PaidAt,
	})
}

func (h *CardHandler) bindCard(c echo.Context) (repository.CardInput, error) {
	var req CardRequest
	if err := c.Bind(&req); err != nil {
		return repository.CardInput{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return repository.CardInput{}, errors.New("validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return repository.CardInput{}, errors.New("name is required")
	}

	input := repository.CardInput{
		Name:             name,
		ClosingDay:       req.ClosingDay,
		PaymentDueDay:    req.PaymentDueDay,
		CreditLimitCents: planner.ToCents(req.CreditLimit),
		ClosedBalance:    planner.ToCents(req.ClosedBalance),
		OpenBalance:      planner.ToCents(req.OpenBalance),
		APR:              req.APR,
	}

	if req.ManualPaymentDate != nil && strings.TrimSpace(*req.ManualPaymentDate) != "" {
		date, err := h.Clock.parseDate(*req.ManualPaymentDate)
		if err != nil {
			return repository.CardInput{}, errors.New("invalid manual_payment_date")
		}
		input.ManualPaymentDate = &date
	}

	return input, nil
}

func (h *CardHandler) response(card models.Card) CardResponse {
	return toCardResponse(card, planner.CardStatement(card.PlannerAccount(), h.Clock.Today()))
}

func (h *CardHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, "card not found")
	case errors.Is(err, repository.ErrConflict):
		return conflict(c, "card name already exists")
	case errors.Is(err, repository.ErrInvalid):
		return badRequest(c, "invalid card data")
	case errors.Is(err, repository.ErrInsufficientFunds):
		return unprocessable(c, "insufficient checking balance")
	default:
		return serverError(c)
	}
}

func toCardResponse(card models.Card, st planner.Statement) CardResponse {
	return CardResponse{
		ID:            card.ID,
		Name:          card.Name,
		ClosingDay:    card.ClosingDay,
		PaymentDueDay: card.PaymentDueDay,
		CreditLimit:   money(card.CreditLimitCents),
		APR:           card.APR,
		ClosedStatement: ClosedStatementResponse{
			Balance:          planner.Round2(st.ClosedBalance),
			CloseDate:        formatDate(st.PreviousClose),
			PaymentDate:      formatDate(st.PreviousPaymentDate),
			DaysUntilPayment: st.DaysUntilPreviousPayment,
			Status:           st.ClosedStatus,
			ManualDate:       card.ManualPaymentDate != nil && st.ClosedBalance > 0,
		},
		OpenStatement: OpenStatementResponse{
			Balance:          planner.Round2(st.OpenBalance),
			CloseDate:        formatDate(st.CurrentClose),
			DaysUntilClose:   st.DaysUntilCurrentClose,
			PaymentDate:      formatDate(st.CurrentPaymentDate),
			DaysUntilPayment: st.DaysUntilCurrentPayment,
		},
		TotalBalance:    planner.Round2(st.TotalBalance),
		AvailableCredit: planner.Round2(st.CreditLimit - st.TotalBalance),
		Utilization:     planner.Round1(st.Utilization),
		UpdatedAt:       card.UpdatedAt,
	}
}
