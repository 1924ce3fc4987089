package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math"
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

const setupRequiredMessage = "setup required: configure cards, income schedule and savings goal"

type PlannerHandler struct {
	State           stateLoader
	Recommendations *repository.RecommendationRepository
	Notifier        *notifications.Hub
	Clock           Clock
}

// NewPlannerHandler создает обработчик рекомендаций и дашборда.
func NewPlannerHandler(
	accounts *repository.AccountRepository,
	cards *repository.CardRepository,
	expenses *repository.ExpenseRepository,
	recommendations *repository.RecommendationRepository,
	notifier *notifications.Hub,
	clock Clock,
	minComfort float64,
) *PlannerHandler {
	return &PlannerHandler{
		State: stateLoader{
			accounts:   accounts,
			cards:      cards,
			expenses:   expenses,
			minComfort: minComfort,
		},
		Recommendations: recommendations,
		Notifier:        notifier,
		Clock:           clock,
	}
}

type RecommendRequest struct {
	Amount           *float64 `json:"amount" validate:"required"`
	Date             string   `json:"date"`
	IsDeferred       bool     `json:"is_deferred"`
	NumPayments      int      `json:"num_payments"`
	PaymentFrequency string   `json:"payment_frequency"`
	Description      string   `json:"description" validate:"max=200"`
	Save             *bool    `json:"save"`
}

type RecommendResponse struct {
	PurchaseDate          string                  `json:"purchase_date"`
	CanAffordNow          bool                    `json:"can_afford_now"`
	SuggestedWaitDate     *string                 `json:"suggested_wait_date"`
	Liquidity             LiquidityResponse       `json:"liquidity_analysis"`
	Recommendations       []CardScoreResponse     `json:"recommendations"`
	PaymentPerInstallment float64                 `json:"payment_per_installment"`
	DeferredSchedule      *ScheduleResponse       `json:"deferred_schedule"`
	SavedRecommendation   *RecommendationResponse `json:"saved_recommendation"`
}

type LiquidityResponse struct {
	CanAfford          bool                  `json:"can_afford"`
	Status             string                `json:"liquidity_status"`
	Color              string                `json:"status_color"`
	CurrentBalance     float64               `json:"current_balance"`
	ProjectedBalance   float64               `json:"projected_balance"`
	RentUpcoming       bool                  `json:"rent_upcoming"`
	RentAmount         float64               `json:"rent_amount"`
	CardPaymentsTotal  float64               `json:"card_payments_total"`
	CardPayments       []CardPaymentResponse `json:"card_payments"`
	OtherFixedPending  float64               `json:"other_fixed_pending"`
	BufferRequired     float64               `json:"buffer_required"`
	SavingsReserved    float64               `json:"savings_reserved"`
	AvailableBalance   float64               `json:"available_balance"`
	FirstPaymentAmount float64               `json:"first_payment_amount"`
	Remaining          float64               `json:"remaining_after_purchase"`
	NextPaycheckDate   string                `json:"next_paycheck_date"`
	Warning            string                `json:"warning,omitempty"`
}

type CardPaymentResponse struct {
	CardID    uuid.UUID `json:"card_id"`
	CardName  string    `json:"card_name"`
	Amount    float64   `json:"amount"`
	DueDate   string    `json:"payment_date"`
	DaysUntil int       `json:"days_until"`
}

type CardScoreResponse struct {
	Rank             int         `json:"rank"`
	CardID           uuid.UUID   `json:"card_id"`
	CardName         string      `json:"card_name"`
	TotalScore       float64     `json:"total_score"`
	Scores           ScoreBucket `json:"scores"`
	PaymentDate      string      `json:"payment_date"`
	DaysUntilPayment int         `json:"days_until_payment"`
	ProjectedBalance float64     `json:"projected_balance"`
	CycleAmount      float64     `json:"cycle_amount"`
	PaycheckHalf     string      `json:"paycheck_half"`
	AvailableCredit  float64     `json:"available_credit"`
	Reasoning        string      `json:"reasoning"`
}

type ScoreBucket struct {
	Timing       float64 `json:"timing"`
	Liquidity    float64 `json:"liquidity"`
	Savings      float64 `json:"savings"`
	Utilization  float64 `json:"utilization"`
	Distribution float64 `json:"distribution"`
}

type ScheduleResponse struct {
	CardID        string                    `json:"card_id"`
	CardName      string                    `json:"card_name"`
	TotalAmount   float64                   `json:"total_amount"`
	NumPayments   int                       `json:"num_payments"`
	PaymentAmount float64                   `json:"payment_amount"`
	Frequency     string                    `json:"frequency"`
	Payments      []ScheduledPaymentResponse `json:"schedule"`
}

type ScheduledPaymentResponse struct {
	PaymentNumber      int     `json:"payment_number"`
	Amount             float64 `json:"payment_amount"`
	ExpectedDate       string  `json:"expected_date"`
	StatementCloseDate string  `json:"statement_close_date"`
	DaysUntil          int     `json:"days_until"`
}

// Recommend ранжирует карты для покупки и проверяет ликвидность.
func (h *PlannerHandler) Recommend(c echo.Context) error {
	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	today := h.Clock.Today()
	purchaseDate := today
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := h.Clock.parseDate(req.Date)
		if err != nil {
			return badRequest(c, "invalid date")
		}
		purchaseDate = parsed
	}

	purchase := planner.PurchaseRequest{
		Amount:       *req.Amount,
		PurchaseDate: purchaseDate,
		IsDeferred:   req.IsDeferred,
		NumPayments:  req.NumPayments,
		Frequency:    planner.Frequency(strings.ToLower(strings.TrimSpace(req.PaymentFrequency))),
	}
	if err := validatePurchase(purchase); err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	state, err := h.State.load(ctx, today)
	if err != nil {
		return serverError(c)
	}
	if !state.Configured() {
		return badRequest(c, setupRequiredMessage)
	}

	engine, err := planner.New(state.Snapshot(purchaseDate))
	if err != nil {
		if errors.Is(err, planner.ErrNotConfigured) {
			return badRequest(c, setupRequiredMessage)
		}
		return serverError(c)
	}

	rec, err := engine.Recommend(purchase)
	if err != nil {
		if isPurchaseError(err) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	response := toRecommendResponse(rec)

	if req.Save == nil || *req.Save {
		saved, err := h.save(ctx, req, rec)
		if err != nil {
			slog.Error("save recommendation failed", slog.String("error", err.Error()))
			return serverError(c)
		}
		if saved != nil {
			response.SavedRecommendation = saved
			publishRecommendation(h.Notifier, notifications.EventRecommendationSaved, *saved)
		}
	}

	slog.Info("recommendation computed",
		slog.Float64("amount", purchase.Amount),
		slog.String("purchase_date", formatDate(rec.PurchaseDate)),
		slog.String("liquidity_status", string(rec.Liquidity.Tier)),
		slog.Int("cards", len(rec.Scores)),
	)

	return c.JSON(http.StatusOK, response)
}

func (h *PlannerHandler) save(ctx context.Context, req RecommendRequest, rec planner.Recommendation) (*RecommendationResponse, error) {
	best, ok := rec.Best()
	if !ok {
		return nil, nil
	}

	input := recommendationInput(req, rec, best)
	saved, err := h.Recommendations.Save(ctx, input)
	if err != nil {
		return nil, err
	}

	response := toRecommendationResponse(saved)
	return &response, nil
}

func recommendationInput(req RecommendRequest, rec planner.Recommendation, best planner.CardScore) repository.RecommendationInput {
	input := repository.RecommendationInput{
		Description:     strings.TrimSpace(req.Description),
		AmountCents:     planner.ToCents(*req.Amount),
		PurchaseDate:    rec.PurchaseDate,
		IsDeferred:      req.IsDeferred,
		CardID:          best.Card.ID,
		CardName:        best.Card.Name,
		Score:           planner.Round1(best.TotalScore),
		LiquidityStatus: models.LiquidityStatus(rec.Liquidity.Tier),
	}

	if req.IsDeferred && rec.Schedule != nil {
		numPayments := rec.Schedule.NumPayments
		frequency := string(rec.Schedule.Frequency)
		input.NumPayments = &numPayments
		input.PaymentFrequency = &frequency

		input.Schedule = make([]repository.DeferredPaymentInput, 0, len(rec.Schedule.Payments))
		for _, p := range rec.Schedule.Payments {
			input.Schedule = append(input.Schedule, repository.DeferredPaymentInput{
				PaymentNumber:      p.PaymentNumber,
				AmountCents:        planner.ToCents(p.Amount),
				ExpectedDate:       p.ExpectedDate,
				StatementCloseDate: p.StatementCloseDate,
			})
		}
	}

	return input
}

// validatePurchase повторяет проверки движка до обращения к базе.
func validatePurchase(req planner.PurchaseRequest) error {
	if !(req.Amount > 0) || math.IsInf(req.Amount, 0) {
		return planner.ErrInvalidAmount
	}
	if req.IsDeferred && req.NumPayments < 1 {
		return planner.ErrInstallmentsRequired
	}
	if _, err := planner.ParseFrequency(string(req.Frequency)); err != nil {
		return err
	}
	return nil
}

func isPurchaseError(err error) bool {
	return errors.Is(err, planner.ErrInvalidAmount) ||
		errors.Is(err, planner.ErrInstallmentsRequired) ||
		errors.Is(err, planner.ErrInvalidFrequency)
}

func toRecommendResponse(rec planner.Recommendation) RecommendResponse {
	response := RecommendResponse{
		PurchaseDate:          formatDate(rec.PurchaseDate),
		CanAffordNow:          rec.CanAffordNow,
		SuggestedWaitDate:     formatDatePtr(rec.SuggestedWaitDate),
		Liquidity:             toLiquidityResponse(rec.Liquidity, rec.PurchaseDate),
		Recommendations:       make([]CardScoreResponse, 0, len(rec.Scores)),
		PaymentPerInstallment: planner.Round2(rec.PaymentPerInstallment),
	}

	for _, score := range rec.Scores {
		response.Recommendations = append(response.Recommendations, toCardScoreResponse(score, rec.PurchaseDate))
	}

	if rec.Schedule != nil {
		schedule := toScheduleResponse(*rec.Schedule)
		response.DeferredSchedule = &schedule
	}

	return response
}

func toLiquidityResponse(result planner.LiquidityResult, purchaseDate time.Time) LiquidityResponse {
	payments := make([]CardPaymentResponse, 0, len(result.CardPayments))
	for _, p := range result.CardPayments {
		payments = append(payments, CardPaymentResponse{
			CardID:    p.CardID,
			CardName:  p.CardName,
			Amount:    planner.Round2(p.Amount),
			DueDate:   formatDate(p.DueDate),
			DaysUntil: planner.DaysBetween(purchaseDate, p.DueDate),
		})
	}

	return LiquidityResponse{
		CanAfford:          result.CanAfford,
		Status:             string(result.Tier),
		Color:              result.Tier.Color(),
		CurrentBalance:     planner.Round2(result.CurrentBalance),
		ProjectedBalance:   planner.Round2(result.ProjectedBalance),
		RentUpcoming:       result.RentUpcoming,
		RentAmount:         planner.Round2(result.RentAmount),
		CardPaymentsTotal:  planner.Round2(result.CardPaymentsTotal),
		CardPayments:       payments,
		OtherFixedPending:  planner.Round2(result.OtherFixedPending),
		BufferRequired:     planner.Round2(result.BufferRequired),
		SavingsReserved:    planner.Round2(result.SavingsReserved),
		AvailableBalance:   planner.Round2(result.AvailableBalance),
		FirstPaymentAmount: planner.Round2(result.FirstPaymentAmount),
		Remaining:          planner.Round2(result.Remaining),
		NextPaycheckDate:   formatDate(result.NextPaycheckDate),
		Warning:            result.Warning,
	}
}

func toCardScoreResponse(score planner.CardScore, purchaseDate time.Time) CardScoreResponse {
	return CardScoreResponse{
		Rank:       score.Rank,
		CardID:     score.Card.ID,
		CardName:   score.Card.Name,
		TotalScore: planner.Round1(score.TotalScore),
		Scores: ScoreBucket{
			Timing:       planner.Round1(score.TimingScore),
			Liquidity:    planner.Round1(score.LiquidityScore),
			Savings:      planner.Round1(score.SavingsScore),
			Utilization:  planner.Round1(score.UtilizationScore),
			Distribution: planner.Round1(score.DistributionScore),
		},
		PaymentDate:      formatDate(score.PaymentDate),
		DaysUntilPayment: planner.DaysBetween(purchaseDate, score.PaymentDate),
		ProjectedBalance: planner.Round2(score.ProjectedBalance),
		CycleAmount:      planner.Round2(score.CycleAmount),
		PaycheckHalf:     score.PaycheckHalf,
		AvailableCredit:  planner.Round2(score.Card.CreditLimit - score.Card.CurrentBalance),
		Reasoning:        score.Reasoning,
	}
}

func toScheduleResponse(schedule planner.Schedule) ScheduleResponse {
	payments := make([]ScheduledPaymentResponse, 0, len(schedule.Payments))
	for _, p := range schedule.Payments {
		payments = append(payments, ScheduledPaymentResponse{
			PaymentNumber:      p.PaymentNumber,
			Amount:             planner.Round2(p.Amount),
			ExpectedDate:       formatDate(p.ExpectedDate),
			StatementCloseDate: formatDate(p.StatementCloseDate),
			DaysUntil:          p.DaysUntil,
		})
	}

	return ScheduleResponse{
		CardID:        schedule.CardID,
		CardName:      schedule.CardName,
		TotalAmount:   planner.Round2(schedule.TotalAmount),
		NumPayments:   schedule.NumPayments,
		PaymentAmount: planner.Round2(schedule.PaymentAmount),
		Frequency:     string(schedule.Frequency),
		Payments:      payments,
	}
}
