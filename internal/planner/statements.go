package planner

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatementPaid    = "PAID"
	StatementPending = "PENDING"
)

// CardAccount хранит карту вместе с разбивкой баланса на закрытую и открытую выписки.
type CardAccount struct {
	Card              Card
	ClosedBalance     float64
	OpenBalance       float64
	ManualPaymentDate *time.Time
}

// Statement описывает закрытую и текущую выписки карты относительно today.
type Statement struct {
	CardID                   uuid.UUID
	CardName                 string
	CreditLimit              float64
	PreviousClose            time.Time
	PreviousPaymentDate      time.Time
	CurrentClose             time.Time
	CurrentPaymentDate       time.Time
	DaysUntilPreviousPayment int
	DaysUntilCurrentClose    int
	DaysUntilCurrentPayment  int
	ClosedBalance            float64
	OpenBalance              float64
	TotalBalance             float64
	ClosedStatus             string
	Utilization              float64
}

// PreviousClosingDate возвращает последнюю дату закрытия цикла строго раньше today.
// В сам день закрытия это дата закрытия прошлого месяца.
func PreviousClosingDate(closingDay int, today time.Time) time.Time {
	today = DateOnly(today)
	if today.Day() > closingDay {
		return ClampDay(today.Year(), today.Month(), closingDay, today.Location())
	}
	return AddMonths(today, -1, closingDay)
}

// CardStatement считает циклы выписки карты на день today.
func CardStatement(account CardAccount, today time.Time) Statement {
	today = DateOnly(today)
	card := account.Card

	previousClose := PreviousClosingDate(card.ClosingDay, today)
	currentClose := AddMonths(previousClose, 1, card.ClosingDay)

	previousPayment := AddMonths(previousClose, 1, card.PaymentDueDay)
	if account.ManualPaymentDate != nil && account.ClosedBalance > 0 {
		previousPayment = DateOnly(*account.ManualPaymentDate)
	}
	currentPayment := AddMonths(currentClose, 1, card.PaymentDueDay)

	total := account.ClosedBalance + account.OpenBalance
	status := StatementPaid
	if account.ClosedBalance > 0 {
		status = StatementPending
	}

	utilization := 0.0
	if card.CreditLimit > 0 {
		utilization = total / card.CreditLimit * 100
	}

	return Statement{
		CardID:                   card.ID,
		CardName:                 card.Name,
		CreditLimit:              card.CreditLimit,
		PreviousClose:            previousClose,
		PreviousPaymentDate:      previousPayment,
		CurrentClose:             currentClose,
		CurrentPaymentDate:       currentPayment,
		DaysUntilPreviousPayment: DaysBetween(today, previousPayment),
		DaysUntilCurrentClose:    DaysBetween(today, currentClose),
		DaysUntilCurrentPayment:  DaysBetween(today, currentPayment),
		ClosedBalance:            account.ClosedBalance,
		OpenBalance:              account.OpenBalance,
		TotalBalance:             total,
		ClosedStatus:             status,
		Utilization:              utilization,
	}
}

// UpcomingCardPayments возвращает закрытые выписки, платеж по которым наступает
// в течение 30 дней после покупки.
func UpcomingCardPayments(statements []Statement, purchaseDate time.Time) []CardPaymentDue {
	var due []CardPaymentDue
	for _, st := range statements {
		if st.ClosedBalance <= 0 {
			continue
		}
		days := DaysBetween(purchaseDate, st.PreviousPaymentDate)
		if days < 0 || days > cardPaymentWindowDays {
			continue
		}
		due = append(due, CardPaymentDue{
			CardID:   st.CardID,
			CardName: st.CardName,
			Amount:   st.ClosedBalance,
			DueDate:  st.PreviousPaymentDate,
		})
	}
	return due
}
