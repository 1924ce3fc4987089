package planner

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestCardStatementCycles проверяет циклы выписки до и после дня закрытия.
func TestCardStatementCycles(t *testing.T) {
	account := CardAccount{
		Card:          Card{ID: uuid.New(), Name: "Visa", ClosingDay: 19, PaymentDueDay: 24, CreditLimit: 5000},
		ClosedBalance: 800,
		OpenBalance:   200,
	}

	before := CardStatement(account, date(2026, time.January, 10))
	if !before.PreviousClose.Equal(date(2025, time.December, 19)) || !before.CurrentClose.Equal(date(2026, time.January, 19)) {
		t.Fatalf("unexpected cycles: %s / %s", before.PreviousClose.Format(time.DateOnly), before.CurrentClose.Format(time.DateOnly))
	}
	if !before.PreviousPaymentDate.Equal(date(2026, time.January, 24)) {
		t.Fatalf("expected payment Jan 24, got %s", before.PreviousPaymentDate.Format(time.DateOnly))
	}
	if before.TotalBalance != 1000 || before.ClosedStatus != StatementPending || before.Utilization != 20 {
		t.Fatalf("unexpected balances: %+v", before)
	}

	after := CardStatement(account, date(2026, time.January, 20))
	if !after.PreviousClose.Equal(date(2026, time.January, 19)) || !after.CurrentPaymentDate.Equal(date(2026, time.March, 24)) {
		t.Fatalf("unexpected cycles after close: %+v", after)
	}
}

// TestCardStatementManualPaymentDate проверяет ручную дату платежа закрытой выписки.
func TestCardStatementManualPaymentDate(t *testing.T) {
	manual := date(2026, time.January, 28)
	account := CardAccount{
		Card:              Card{ID: uuid.New(), Name: "Amex", ClosingDay: 19, PaymentDueDay: 24},
		ClosedBalance:     300,
		ManualPaymentDate: &manual,
	}

	st := CardStatement(account, date(2026, time.January, 10))
	if !st.PreviousPaymentDate.Equal(manual) {
		t.Fatalf("expected manual date, got %s", st.PreviousPaymentDate.Format(time.DateOnly))
	}

	account.ClosedBalance = 0
	st = CardStatement(account, date(2026, time.January, 10))
	if !st.PreviousPaymentDate.Equal(date(2026, time.January, 24)) || st.ClosedStatus != StatementPaid {
		t.Fatalf("manual date must be ignored for a paid statement: %+v", st)
	}
}

// TestUpcomingCardPayments проверяет отбор закрытых выписок для проверки ликвидности.
func TestUpcomingCardPayments(t *testing.T) {
	today := date(2026, time.January, 10)
	statements := []Statement{
		CardStatement(CardAccount{Card: Card{ID: uuid.New(), Name: "due", ClosingDay: 19, PaymentDueDay: 24}, ClosedBalance: 400}, today),
		CardStatement(CardAccount{Card: Card{ID: uuid.New(), Name: "paid", ClosingDay: 19, PaymentDueDay: 24}, OpenBalance: 900}, today),
		CardStatement(CardAccount{Card: Card{ID: uuid.New(), Name: "overdue", ClosingDay: 28, PaymentDueDay: 5}, ClosedBalance: 50}, today),
	}

	due := UpcomingCardPayments(statements, today)
	if len(due) != 1 || due[0].CardName != "due" || due[0].Amount != 400 {
		t.Fatalf("unexpected payments: %+v", due)
	}
}

// TestPendingFixed проверяет сумму и максимум неоплаченных расходов.
func TestPendingFixed(t *testing.T) {
	rent := uuid.New()
	phone := uuid.New()
	gym := uuid.New()
	expenses := []FixedObligation{
		{ID: rent, Name: "Rent", Amount: 3100, DueDay: 1, Active: true},
		{ID: phone, Name: "Phone", Amount: 80, DueDay: 12, Active: true},
		{ID: gym, Name: "Gym", Amount: 40, DueDay: 3, Active: false},
	}

	total, largest := PendingFixed(expenses, map[uuid.UUID]bool{rent: true})
	if total != 80 || largest != 80 {
		t.Fatalf("expected 80/80, got %.2f/%.2f", total, largest)
	}

	total, largest = PendingFixed(expenses, nil)
	if total != 3180 || largest != 3100 {
		t.Fatalf("expected 3180/3100, got %.2f/%.2f", total, largest)
	}
}

// TestAvailableForSavings проверяет рекомендуемый перевод в сбережения.
func TestAvailableForSavings(t *testing.T) {
	income := IncomeSchedule{Amount: 3300, FirstPaycheckDay: 9, SecondPaycheckDay: 23}
	savings := SavingsGoal{AmountPerPaycheck: 500, MinBalanceComfort: 2000, VariableExpensesMonthly: 300}
	fixed := []FixedObligation{
		{ID: uuid.New(), Amount: 100, DueDay: 15, Active: true},
		{ID: uuid.New(), Amount: 900, DueDay: 1, Active: true},
	}
	payments := []CardPaymentDue{{Amount: 250, DueDate: date(2026, time.January, 20)}}

	res := AvailableForSavings(date(2026, time.January, 10), 5000, income, savings, fixed, payments)
	if !res.NextPaycheckDate.Equal(date(2026, time.January, 23)) {
		t.Fatalf("expected next paycheck Jan 23, got %s", res.NextPaycheckDate.Format(time.DateOnly))
	}
	// 250 по карте + 100 постоянных + 13 дней переменных расходов по 10.
	if res.UpcomingExpenses != 480 {
		t.Fatalf("expected upcoming 480, got %.2f", res.UpcomingExpenses)
	}
	if res.RecommendedTransfer != 500 || !res.WouldMeetGoal {
		t.Fatalf("expected full transfer, got %+v", res)
	}

	poor := AvailableForSavings(date(2026, time.January, 10), 2100, income, savings, fixed, payments)
	if poor.RecommendedTransfer != 0 || poor.WouldMeetGoal {
		t.Fatalf("expected no transfer, got %+v", poor)
	}
	if poor.CurrentPeriod != PaycheckHalfSecond {
		t.Fatalf("expected second period, got %s", poor.CurrentPeriod)
	}
}

// TestPreviousClosingDate проверяет последнюю дату закрытия, включая короткие месяцы.
func TestPreviousClosingDate(t *testing.T) {
	cases := []struct {
		closingDay int
		today      time.Time
		want       time.Time
	}{
		{10, date(2026, time.January, 10), date(2025, time.December, 10)},
		{10, date(2026, time.January, 11), date(2026, time.January, 10)},
		{10, date(2026, time.January, 12), date(2026, time.January, 10)},
		{31, date(2026, time.February, 28), date(2026, time.January, 31)},
		{31, date(2026, time.March, 1), date(2026, time.February, 28)},
	}

	for _, tc := range cases {
		got := PreviousClosingDate(tc.closingDay, tc.today)
		if !got.Equal(tc.want) {
			t.Fatalf("closing day %d on %s: expected %s, got %s", tc.closingDay,
				tc.today.Format(time.DateOnly), tc.want.Format(time.DateOnly), got.Format(time.DateOnly))
		}
	}
}
