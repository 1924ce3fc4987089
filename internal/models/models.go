package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

type RecommendationStatus string

type LiquidityStatus string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"

	RecommendationPending   RecommendationStatus = "pending"
	RecommendationExecuted  RecommendationStatus = "executed"
	RecommendationCancelled RecommendationStatus = "cancelled"

	LiquiditySafe     LiquidityStatus = "safe"
	LiquidityTight    LiquidityStatus = "tight"
	LiquidityCritical LiquidityStatus = "critical"
)

// Account описывает расчетный счет. В системе он один.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	BalanceCents int64     `json:"balance_cents"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SavingsAccount struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	BalanceCents int64     `json:"balance_cents"`
	TargetCents  int64     `json:"target_cents"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type IncomeSchedule struct {
	ID                uuid.UUID `json:"id"`
	AmountCents       int64     `json:"amount_cents"`
	FirstPaycheckDay  int       `json:"first_paycheck_day"`
	SecondPaycheckDay int       `json:"second_paycheck_day"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type SavingsGoal struct {
	ID                           uuid.UUID `json:"id"`
	AmountPerPaycheckCents       int64     `json:"amount_per_paycheck_cents"`
	MinBalanceComfortCents       int64     `json:"min_balance_comfort_cents"`
	VariableExpensesMonthlyCents int64     `json:"variable_expenses_monthly_cents"`
	UpdatedAt                    time.Time `json:"updated_at"`
}

// Card хранит баланс закрытой выписки отдельно от открытого цикла.
type Card struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	ClosingDay         int        `json:"closing_day"`
	PaymentDueDay      int        `json:"payment_due_day"`
	CreditLimitCents   int64      `json:"credit_limit_cents"`
	ClosedBalanceCents int64      `json:"closed_balance_cents"`
	OpenBalanceCents   int64      `json:"open_balance_cents"`
	ManualPaymentDate  *time.Time `json:"manual_payment_date,omitempty"`
	APR                float64    `json:"apr"`
	LastClosedOn       *time.Time `json:"last_closed_on,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type CardPayment struct {
	ID          uuid.UUID `json:"id"`
	CardID      uuid.UUID `json:"card_id"`
	AmountCents int64     `json:"amount_cents"`
	PaidAt      time.Time `json:"paid_at"`
}

type FixedExpense struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	DueDay      int       `json:"due_day"`
	Category    string    `json:"category"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpensePayment отмечает оплату постоянного расхода за конкретный месяц.
type ExpensePayment struct {
	ID            uuid.UUID     `json:"id"`
	ExpenseID     uuid.UUID     `json:"expense_id"`
	Month         int           `json:"month"`
	Year          int           `json:"year"`
	AmountCents   int64         `json:"amount_cents"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CardID        *uuid.UUID    `json:"card_id,omitempty"`
	PaidAt        time.Time     `json:"paid_at"`
}

type VariableExpense struct {
	ID               uuid.UUID  `json:"id"`
	Description      string     `json:"description"`
	AmountCents      int64      `json:"amount_cents"`
	Category         string     `json:"category"`
	CardID           *uuid.UUID `json:"card_id,omitempty"`
	ExpenseDate      time.Time  `json:"expense_date"`
	RecommendationID *uuid.UUID `json:"recommendation_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type PurchaseRecommendation struct {
	ID               uuid.UUID            `json:"id"`
	Description      string               `json:"description"`
	AmountCents      int64                `json:"amount_cents"`
	PurchaseDate     time.Time            `json:"purchase_date"`
	IsDeferred       bool                 `json:"is_deferred"`
	NumPayments      *int                 `json:"num_payments,omitempty"`
	PaymentFrequency *string              `json:"payment_frequency,omitempty"`
	CardID           uuid.UUID            `json:"card_id"`
	CardName         string               `json:"card_name"`
	Score            float64              `json:"score"`
	LiquidityStatus  LiquidityStatus      `json:"liquidity_status"`
	Status           RecommendationStatus `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
	ExecutedAt       *time.Time           `json:"executed_at,omitempty"`
}

type DeferredPayment struct {
	ID                 uuid.UUID `json:"id"`
	RecommendationID   uuid.UUID `json:"recommendation_id"`
	PaymentNumber      int       `json:"payment_number"`
	AmountCents        int64     `json:"amount_cents"`
	ExpectedDate       time.Time `json:"expected_date"`
	StatementCloseDate time.Time `json:"statement_close_date"`
}
