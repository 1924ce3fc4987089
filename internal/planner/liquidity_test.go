package planner

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestClassifyBoundaries проверяет точные границы уровней.
func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		remaining float64
		want      Tier
	}{
		{1500.00, TierSafe},
		{1499.99, TierTight},
		{500.00, TierTight},
		{499.99, TierCritical},
		{-10000, TierCritical},
	}

	for _, tc := range cases {
		if got := Classify(tc.remaining); got != tc.want {
			t.Fatalf("remaining %.2f: expected %s, got %s", tc.remaining, tc.want, got)
		}
	}
}

func gateFor(balance float64, payments []CardPaymentDue) *Gate {
	today := date(2026, time.January, 10)
	snapshot := Snapshot{
		Today:           today,
		CheckingBalance: balance,
		Income:          IncomeSchedule{Amount: 3300, FirstPaycheckDay: 9, SecondPaycheckDay: 23},
		Savings:         SavingsGoal{AmountPerPaycheck: 500},
		CardPayments:    payments,
	}
	projector := NewProjector(today, balance, 0, snapshot.Income, snapshot.Savings)
	return NewGate(projector, snapshot)
}

// TestGateTiers проверяет пороги через полный расчет вычетов.
func TestGateTiers(t *testing.T) {
	req := PurchaseRequest{Amount: 100, PurchaseDate: date(2026, time.January, 10)}

	safe := gateFor(3100, nil).Check(req, req.Amount)
	if safe.Remaining != 1500 || safe.Tier != TierSafe || !safe.CanAfford {
		t.Fatalf("expected safe at 1500, got %s %.2f", safe.Tier, safe.Remaining)
	}
	if safe.SuggestedWaitDate != nil || safe.Warning != "" {
		t.Fatalf("safe result must not suggest waiting")
	}

	tight := gateFor(2100, nil).Check(req, req.Amount)
	if tight.Remaining != 500 || tight.Tier != TierTight || !tight.CanAfford {
		t.Fatalf("expected tight at 500, got %s %.2f", tight.Tier, tight.Remaining)
	}
	if tight.SuggestedWaitDate == nil || tight.Warning == "" {
		t.Fatalf("tight result must carry a warning and suggested date")
	}
	if tight.Tier.Color() != "yellow" {
		t.Fatalf("expected yellow, got %s", tight.Tier.Color())
	}
}

// TestGateCardPaymentsWindow проверяет учет платежей по картам в окне 0..30 дней.
func TestGateCardPaymentsWindow(t *testing.T) {
	payments := []CardPaymentDue{
		{CardID: uuid.New(), CardName: "past", Amount: 1000, DueDate: date(2026, time.January, 5)},
		{CardID: uuid.New(), CardName: "same day", Amount: 200, DueDate: date(2026, time.January, 10)},
		{CardID: uuid.New(), CardName: "edge", Amount: 300, DueDate: date(2026, time.February, 9)},
		{CardID: uuid.New(), CardName: "late", Amount: 5000, DueDate: date(2026, time.February, 10)},
	}

	res := gateFor(5000, payments).Check(PurchaseRequest{Amount: 100, PurchaseDate: date(2026, time.January, 10)}, 100)
	if res.CardPaymentsTotal != 500 {
		t.Fatalf("expected 500 in card payments, got %.2f", res.CardPaymentsTotal)
	}
	if len(res.CardPayments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(res.CardPayments))
	}
	if res.Remaining != 2900 {
		t.Fatalf("expected remaining 2900, got %.2f", res.Remaining)
	}
}

// TestNextPaycheckSuggestion проверяет фиксированный опорный день 15.
func TestNextPaycheckSuggestion(t *testing.T) {
	if got := nextPaycheckSuggestion(date(2026, time.January, 14)); !got.Equal(date(2026, time.January, 15)) {
		t.Fatalf("expected Jan 15, got %s", got.Format(time.DateOnly))
	}
	if got := nextPaycheckSuggestion(date(2026, time.December, 15)); !got.Equal(date(2027, time.January, 15)) {
		t.Fatalf("expected Jan 15 2027, got %s", got.Format(time.DateOnly))
	}
}

// TestFormatMoney проверяет форматирование сумм в пояснениях.
func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:          "$0.00",
		1234.5:     "$1,234.50",
		-534.289:   "-$534.29",
		1000000.25: "$1,000,000.25",
	}
	for in, want := range cases {
		if got := formatMoney(in); got != want {
			t.Fatalf("%v: expected %s, got %s", in, want, got)
		}
	}
}
