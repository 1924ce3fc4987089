package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/card-planner/backend/internal/models"
	"example.com/card-planner/backend/internal/planner"
)

var (
	visaID      = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	amexID      = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	rentID      = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	phoneID     = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	insuranceID = uuid.MustParse("55555555-5555-5555-5555-555555555555")
)

func sampleState() FinancialState {
	return FinancialState{
		Today:    time.Date(2026, time.January, 11, 0, 0, 0, 0, time.UTC),
		Checking: models.Account{BalanceCents: 500000},
		Savings:  models.SavingsAccount{BalanceCents: 100000, TargetCents: 500000},
		Income: &models.IncomeSchedule{
			AmountCents:       250000,
			FirstPaycheckDay:  1,
			SecondPaycheckDay: 15,
		},
		Goal: &models.SavingsGoal{
			AmountPerPaycheckCents:       50000,
			VariableExpensesMonthlyCents: 60000,
		},
		Cards: []models.Card{
			{
				ID:                 visaID,
				Name:               "Visa",
				ClosingDay:         10,
				PaymentDueDay:      5,
				CreditLimitCents:   500000,
				ClosedBalanceCents: 30000,
				OpenBalanceCents:   5000,
			},
			{
				ID:               amexID,
				Name:             "Amex",
				ClosingDay:       25,
				PaymentDueDay:    20,
				CreditLimitCents: 1000000,
				OpenBalanceCents: 12000,
			},
		},
		Fixed: []models.FixedExpense{
			{ID: rentID, Name: "Rent", AmountCents: 150000, DueDay: 1, Active: true},
			{ID: phoneID, Name: "Phone", AmountCents: 5000, DueDay: 20, Active: true},
			{ID: insuranceID, Name: "Insurance", AmountCents: 180000, DueDay: 5, Active: true},
		},
		Paid:       map[uuid.UUID]bool{insuranceID: true},
		MinComfort: 2000,
	}
}

// TestFinancialStateConfigured проверяет требования к настройке перед расчетом.
func TestFinancialStateConfigured(t *testing.T) {
	state := sampleState()
	if !state.Configured() {
		t.Fatal("expected configured state")
	}

	state.Goal = nil
	if state.Configured() {
		t.Fatal("expected missing goal to be unconfigured")
	}

	state = sampleState()
	state.Cards = nil
	if state.Configured() {
		t.Fatal("expected missing cards to be unconfigured")
	}
}

// TestSnapshotUsesPendingFixedExpenses проверяет, что оплаченные расходы не попадают в снимок.
func TestSnapshotUsesPendingFixedExpenses(t *testing.T) {
	state := sampleState()
	snapshot := state.Snapshot(state.Today)

	if snapshot.FixedExpensesMonthly != 1550 {
		t.Fatalf("expected pending fixed 1550, got %v", snapshot.FixedExpensesMonthly)
	}
	if snapshot.RentAmount != 1500 {
		t.Fatalf("expected rent 1500, got %v", snapshot.RentAmount)
	}
	if snapshot.CheckingBalance != 5000 {
		t.Fatalf("expected balance 5000, got %v", snapshot.CheckingBalance)
	}
	if len(snapshot.Cards) != 2 || snapshot.Cards[0].CurrentBalance != 350 {
		t.Fatalf("unexpected cards: %+v", snapshot.Cards)
	}
	if snapshot.Income.Amount != 2500 || snapshot.Savings.AmountPerPaycheck != 500 || !snapshot.HasSavingsGoal {
		t.Fatalf("unexpected income or goal: %+v %+v", snapshot.Income, snapshot.Savings)
	}
}

// TestSnapshotCardPaymentWindow проверяет окно платежей по закрытым выпискам относительно даты покупки.
func TestSnapshotCardPaymentWindow(t *testing.T) {
	state := sampleState()

	snapshot := state.Snapshot(state.Today)
	if len(snapshot.CardPayments) != 1 {
		t.Fatalf("expected one card payment, got %d", len(snapshot.CardPayments))
	}
	payment := snapshot.CardPayments[0]
	if payment.CardID != visaID || payment.Amount != 300 {
		t.Fatalf("unexpected payment: %+v", payment)
	}
	if payment.DueDate.Format(dateLayout) != "2026-02-05" {
		t.Fatalf("unexpected due date: %s", payment.DueDate.Format(dateLayout))
	}

	early := state.Snapshot(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	if len(early.CardPayments) != 0 {
		t.Fatalf("expected payment outside window, got %+v", early.CardPayments)
	}
}

// TestSavingsAvailabilityFallsBackToMinComfort проверяет подстановку комфортного остатка из конфигурации.
func TestSavingsAvailabilityFallsBackToMinComfort(t *testing.T) {
	state := sampleState()
	availability := state.SavingsAvailability()

	if availability.MinBalanceRequired != 2000 {
		t.Fatalf("expected fallback comfort 2000, got %v", availability.MinBalanceRequired)
	}
	if availability.UpcomingExpenses != 80 {
		t.Fatalf("expected upcoming 80, got %v", availability.UpcomingExpenses)
	}
	if availability.AvailableForSavings != 2920 {
		t.Fatalf("expected available 2920, got %v", availability.AvailableForSavings)
	}
	if availability.RecommendedTransfer != 500 || !availability.WouldMeetGoal {
		t.Fatalf("unexpected transfer: %+v", availability)
	}
	if availability.NextPaycheckDate.Format(dateLayout) != "2026-01-15" {
		t.Fatalf("unexpected next paycheck: %s", availability.NextPaycheckDate.Format(dateLayout))
	}
	if availability.CurrentPeriod != planner.PaycheckHalfFirst {
		t.Fatalf("unexpected period: %s", availability.CurrentPeriod)
	}
}

// TestSavingsAvailabilityUsesGoalComfort проверяет, что заданный в цели остаток важнее конфигурации.
func TestSavingsAvailabilityUsesGoalComfort(t *testing.T) {
	state := sampleState()
	state.Goal.MinBalanceComfortCents = 300000

	availability := state.SavingsAvailability()
	if availability.MinBalanceRequired != 3000 {
		t.Fatalf("expected goal comfort 3000, got %v", availability.MinBalanceRequired)
	}
	if availability.AvailableForSavings != 1920 {
		t.Fatalf("expected available 1920, got %v", availability.AvailableForSavings)
	}
}
