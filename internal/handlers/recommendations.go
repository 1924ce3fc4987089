package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/models"
	"example.com/card-planner/backend/internal/notifications"
	"example.com/card-planner/backend/internal/repository"
)

type RecommendationHandler struct {
	Recommendations *repository.RecommendationRepository
	Notifier        *notifications.Hub
}

// NewRecommendationHandler создает обработчик сохраненных рекомендаций.
func NewRecommendationHandler(recommendations *repository.RecommendationRepository, notifier *notifications.Hub) *RecommendationHandler {
	return &RecommendationHandler{Recommendations: recommendations, Notifier: notifier}
}

type BatchRequest struct {
	IDs []string `json:"recommendation_ids" validate:"required,min=1,max=50"`
}

type RecommendationResponse struct {
	ID               uuid.UUID                   `json:"id"`
	Description      string                      `json:"description"`
	Amount           float64                     `json:"amount"`
	PurchaseDate     string                      `json:"purchase_date"`
	IsDeferred       bool                        `json:"is_deferred"`
	NumPayments      *int                        `json:"num_payments,omitempty"`
	PaymentFrequency *string                     `json:"payment_frequency,omitempty"`
	PaymentAmount    float64                     `json:"payment_amount"`
	CardID           uuid.UUID                   `json:"card_id"`
	CardName         string                      `json:"card_name"`
	Score            float64                     `json:"score"`
	LiquidityStatus  models.LiquidityStatus      `json:"liquidity_status"`
	Status           models.RecommendationStatus `json:"status"`
	CreatedAt        time.Time                   `json:"created_at"`
	ExecutedAt       *time.Time                  `json:"executed_at,omitempty"`
	Schedule         []DeferredPaymentResponse   `json:"schedule"`
}

type DeferredPaymentResponse struct {
	PaymentNumber      int     `json:"payment_number"`
	Amount             float64 `json:"payment_amount"`
	ExpectedDate       string  `json:"expected_date"`
	StatementCloseDate string  `json:"statement_close_date"`
}

type ExecutionResponse struct {
	Recommendation RecommendationResponse `json:"recommendation"`
	ExpenseID      uuid.UUID              `json:"expense_id"`
	CardBalance    *float64               `json:"card_open_balance,omitempty"`
}

type BatchFailureResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type BatchResponse struct {
	Executed []ExecutionResponse    `json:"executed"`
	Failed   []BatchFailureResponse `json:"failed"`
}

// List возвращает ожидающие рекомендации.
func (h *RecommendationHandler) List(c echo.Context) error {
	items, err := h.Recommendations.ListPending(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	response := make([]RecommendationResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toRecommendationResponse(item))
	}

	return c.JSON(http.StatusOK, map[string][]RecommendationResponse{"recommendations": response})
}

// Execute превращает рекомендацию в реальный расход по карте.
func (h *RecommendationHandler) Execute(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid recommendation id")
	}

	execution, err := h.Recommendations.Execute(c.Request().Context(), id)
	if err != nil {
		return writeRecommendationError(c, err)
	}

	response := h.executed(execution)
	return c.JSON(http.StatusOK, response)
}

// Cancel отменяет рекомендацию.
func (h *RecommendationHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid recommendation id")
	}

	rec, err := h.Recommendations.Cancel(c.Request().Context(), id)
	if err != nil {
		return writeRecommendationError(c, err)
	}

	return c.JSON(http.StatusOK, toRecommendationResponse(repository.RecommendationWithSchedule{Recommendation: rec}))
}

// ExecuteBatch исполняет несколько рекомендаций; ошибки собираются по каждой.
func (h *RecommendationHandler) ExecuteBatch(c echo.Context) error {
	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "recommendation_ids are required")
	}

	ids, failed := parseIDs(req.IDs)
	executed, failures := h.Recommendations.ExecuteBatch(c.Request().Context(), ids)

	response := BatchResponse{
		Executed: make([]ExecutionResponse, 0, len(executed)),
		Failed:   failed,
	}
	for _, execution := range executed {
		response.Executed = append(response.Executed, h.executed(execution))
	}
	for _, failure := range failures {
		response.Failed = append(response.Failed, BatchFailureResponse{
			ID:    failure.ID.String(),
			Error: recommendationErrorMessage(failure.Error),
		})
	}

	slog.Info("recommendations batch executed",
		slog.Int("executed", len(response.Executed)),
		slog.Int("failed", len(response.Failed)),
	)

	return c.JSON(http.StatusOK, response)
}

func (h *RecommendationHandler) executed(execution repository.Execution) ExecutionResponse {
	rec := toRecommendationResponse(repository.RecommendationWithSchedule{Recommendation: execution.Recommendation})
	response := ExecutionResponse{
		Recommendation: rec,
		ExpenseID:      execution.Expense.ID,
	}
	if execution.Card != nil {
		balance := money(execution.Card.OpenBalanceCents)
		response.CardBalance = &balance
	}

	publishRecommendation(h.Notifier, notifications.EventRecommendationExecuted, rec)
	publishBalanceUpdate(h.Notifier, nil, execution.Card)
	return response
}

func parseIDs(values []string) ([]uuid.UUID, []BatchFailureResponse) {
	ids := make([]uuid.UUID, 0, len(values))
	failed := make([]BatchFailureResponse, 0)
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			failed = append(failed, BatchFailureResponse{ID: value, Error: "invalid recommendation id"})
			continue
		}
		ids = append(ids, id)
	}
	return ids, failed
}

func recommendationErrorMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "recommendation not found"
	case errors.Is(err, repository.ErrAlreadyExecuted):
		return "recommendation is not pending"
	default:
		return "internal server error"
	}
}

func writeRecommendationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, recommendationErrorMessage(err))
	case errors.Is(err, repository.ErrAlreadyExecuted):
		return conflict(c, recommendationErrorMessage(err))
	default:
		return serverError(c)
	}
}

func toRecommendationResponse(item repository.RecommendationWithSchedule) RecommendationResponse {
	rec := item.Recommendation

	paymentAmount := money(rec.AmountCents)
	if rec.IsDeferred && rec.NumPayments != nil && *rec.NumPayments > 0 {
		paymentAmount = money(rec.AmountCents / int64(*rec.NumPayments))
	}

	schedule := make([]DeferredPaymentResponse, 0, len(item.Schedule))
	for _, p := range item.Schedule {
		schedule = append(schedule, DeferredPaymentResponse{
			PaymentNumber:      p.PaymentNumber,
			Amount:             money(p.AmountCents),
			ExpectedDate:       formatDate(p.ExpectedDate),
			StatementCloseDate: formatDate(p.StatementCloseDate),
		})
	}

	return RecommendationResponse{
		ID:               rec.ID,
		Description:      rec.Description,
		Amount:           money(rec.AmountCents),
		PurchaseDate:     formatDate(rec.PurchaseDate),
		IsDeferred:       rec.IsDeferred,
		NumPayments:      rec.NumPayments,
		PaymentFrequency: rec.PaymentFrequency,
		PaymentAmount:    paymentAmount,
		CardID:           rec.CardID,
		CardName:         rec.CardName,
		Score:            rec.Score,
		LiquidityStatus:  rec.LiquidityStatus,
		Status:           rec.Status,
		CreatedAt:        rec.CreatedAt,
		ExecutedAt:       rec.ExecutedAt,
		Schedule:         schedule,
	}
}
