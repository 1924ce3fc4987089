package planner

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

var (
	ErrInvalidAmount        = errors.New("purchase amount must be greater than zero")
	ErrInstallmentsRequired = errors.New("num_payments required when is_deferred is true")
	ErrInvalidFrequency     = errors.New("payment_frequency must be weekly, biweekly or monthly")
	ErrNotConfigured        = errors.New("cards, income schedule and savings goal must be configured")
)

// Card описывает кредитную карту так, как ее видит движок.
type Card struct {
	ID             uuid.UUID
	Name           string
	ClosingDay     int
	PaymentDueDay  int
	CreditLimit    float64
	CurrentBalance float64
}

type IncomeSchedule struct {
	Amount            float64
	FirstPaycheckDay  int
	SecondPaycheckDay int
}

type SavingsGoal struct {
	AmountPerPaycheck       float64
	MinBalanceComfort       float64
	VariableExpensesMonthly float64
}

// CardPaymentDue описывает известный платеж по закрытой выписке карты.
type CardPaymentDue struct {
	CardID   uuid.UUID
	CardName string
	Amount   float64
	DueDate  time.Time
}

// Snapshot содержит все входные данные одного расчета рекомендации.
type Snapshot struct {
	Today                time.Time
	CheckingBalance      float64
	Income               IncomeSchedule
	Savings              SavingsGoal
	HasSavingsGoal       bool
	Cards                []Card
	FixedExpensesMonthly float64
	RentAmount           float64
	CardPayments         []CardPaymentDue
}

type PurchaseRequest struct {
	Amount       float64
	PurchaseDate time.Time
	IsDeferred   bool
	NumPayments  int
	Frequency    Frequency
}

// IntervalDays возвращает интервал между платежами в днях.
func (f Frequency) IntervalDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	default:
		return 30
	}
}

// ParseFrequency разбирает частоту платежей; пустая строка означает monthly.
func ParseFrequency(value string) (Frequency, error) {
	switch Frequency(value) {
	case "":
		return FrequencyMonthly, nil
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return Frequency(value), nil
	default:
		return "", ErrInvalidFrequency
	}
}

func (c Card) utilization() float64 {
	if c.CreditLimit <= 0 {
		return 0
	}
	return c.CurrentBalance / c.CreditLimit
}
