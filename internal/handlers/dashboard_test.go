package handlers

import "testing"

// TestBuildDashboardDebtSummary проверяет разбивку долга на закрытые и открытые выписки.
func TestBuildDashboardDebtSummary(t *testing.T) {
	response := buildDashboard(sampleState())

	if response.Today != "2026-01-11" || !response.Configured {
		t.Fatalf("unexpected header: %s configured=%v", response.Today, response.Configured)
	}
	if response.CheckingBalance != 5000 {
		t.Fatalf("unexpected checking balance: %v", response.CheckingBalance)
	}

	debt := response.DebtSummary
	if debt.TotalClosed != 300 || debt.TotalOpen != 170 || debt.TotalDebt != 470 {
		t.Fatalf("unexpected totals: %+v", debt)
	}
	if len(debt.ClosedCards) != 1 || debt.ClosedCards[0].Name != "Visa" {
		t.Fatalf("unexpected closed cards: %+v", debt.ClosedCards)
	}
	if debt.ClosedCards[0].PaymentDate != "2026-02-05" || debt.ClosedCards[0].DaysUntilPayment != 25 {
		t.Fatalf("unexpected closed payment: %+v", debt.ClosedCards[0])
	}
	if len(debt.OpenCards) != 2 {
		t.Fatalf("expected two open cards, got %d", len(debt.OpenCards))
	}

	if response.NextPaycheck == nil || *response.NextPaycheck != "2026-01-15" {
		t.Fatalf("unexpected next paycheck: %v", response.NextPaycheck)
	}
	if response.PendingFixed != 1550 {
		t.Fatalf("unexpected pending fixed: %v", response.PendingFixed)
	}
}

// TestBuildDashboardCards проверяет состояние выписок в карточках дашборда.
func TestBuildDashboardCards(t *testing.T) {
	response := buildDashboard(sampleState())
	if len(response.Cards) != 2 {
		t.Fatalf("expected two cards, got %d", len(response.Cards))
	}

	visa := response.Cards[0]
	if visa.ClosedStatement.Status != "PENDING" || visa.ClosedStatement.CloseDate != "2026-01-10" {
		t.Fatalf("unexpected visa closed statement: %+v", visa.ClosedStatement)
	}
	if visa.TotalBalance != 350 || visa.AvailableCredit != 4650 || visa.Utilization != 7 {
		t.Fatalf("unexpected visa totals: %+v", visa)
	}

	amex := response.Cards[1]
	if amex.ClosedStatement.Status != "PAID" {
		t.Fatalf("expected paid amex statement, got %s", amex.ClosedStatement.Status)
	}
	if amex.OpenStatement.CloseDate != "2026-01-25" || amex.OpenStatement.DaysUntilClose != 14 {
		t.Fatalf("unexpected amex open statement: %+v", amex.OpenStatement)
	}
}

// TestBuildDashboardWithoutSetup проверяет пустой дашборд до настройки.
func TestBuildDashboardWithoutSetup(t *testing.T) {
	state := sampleState()
	state.Income = nil
	state.Goal = nil
	state.Cards = nil

	response := buildDashboard(state)
	if response.Configured {
		t.Fatal("expected unconfigured dashboard")
	}
	if response.NextPaycheck != nil || response.Income != nil || response.SavingsGoal != nil {
		t.Fatalf("unexpected setup fields: %+v", response)
	}
	if len(response.Cards) != 0 || response.DebtSummary.TotalDebt != 0 {
		t.Fatalf("unexpected cards: %+v", response.Cards)
	}
}
