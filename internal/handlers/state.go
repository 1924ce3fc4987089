package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"example.com/card-planner/backend/internal/models"
	"example.com/card-planner/backend/internal/planner"
	"example.com/card-planner/backend/internal/repository"
)

// FinancialState содержит данные для движка и дашборда, прочитанные из базы за один раз.
type FinancialState struct {
	Today    time.Time
	Checking models.Account
	Savings  models.SavingsAccount
	Income   *models.IncomeSchedule
	Goal     *models.SavingsGoal
	Cards    []models.Card
	Fixed    []models.FixedExpense
	Paid     map[uuid.UUID]bool

	// MinComfort подставляется, если в цели сбережений комфортный остаток не задан.
	MinComfort float64
}

type stateLoader struct {
	accounts   *repository.AccountRepository
	cards      *repository.CardRepository
	expenses   *repository.ExpenseRepository
	minComfort float64
}

func (l stateLoader) load(ctx context.Context, today time.Time) (FinancialState, error) {
	state := FinancialState{Today: today, MinComfort: l.minComfort}

	checking, err := l.accounts.Checking(ctx)
	if err != nil {
		return state, err
	}
	state.Checking = checking

	savings, err := l.accounts.Savings(ctx)
	if err != nil {
		return state, err
	}
	state.Savings = savings

	income, err := l.accounts.IncomeSchedule(ctx)
	switch {
	case err == nil:
		state.Income = &income
	case !errors.Is(err, repository.ErrNotFound):
		return state, err
	}

	goal, err := l.accounts.SavingsGoal(ctx)
	switch {
	case err == nil:
		state.Goal = &goal
	case !errors.Is(err, repository.ErrNotFound):
		return state, err
	}

	if state.Cards, err = l.cards.List(ctx); err != nil {
		return state, err
	}
	if state.Fixed, err = l.expenses.ListFixed(ctx, true); err != nil {
		return state, err
	}
	if state.Paid, err = l.expenses.PaidExpenseIDs(ctx, today.Month(), today.Year()); err != nil {
		return state, err
	}

	return state, nil
}

// Configured сообщает, хватает ли данных для расчета рекомендаций.
func (s FinancialState) Configured() bool {
	return len(s.Cards) > 0 && s.Income != nil && s.Income.AmountCents > 0 && s.Goal != nil
}

func (s FinancialState) obligations() []planner.FixedObligation {
	out := make([]planner.FixedObligation, 0, len(s.Fixed))
	for _, e := range s.Fixed {
		out = append(out, e.Obligation())
	}
	return out
}

// Statements считает выписки всех карт на сегодня.
func (s FinancialState) Statements() []planner.Statement {
	statements := make([]planner.Statement, 0, len(s.Cards))
	for _, card := range s.Cards {
		statements = append(statements, planner.CardStatement(card.PlannerAccount(), s.Today))
	}
	return statements
}

// Snapshot собирает входные данные движка: неоплаченные в этом месяце постоянные расходы,
// самый крупный из них как аренду и платежи по закрытым выпискам в окне после покупки.
func (s FinancialState) Snapshot(purchaseDate time.Time) planner.Snapshot {
	pending, largest := planner.PendingFixed(s.obligations(), s.Paid)

	snapshot := planner.Snapshot{
		Today:                s.Today,
		CheckingBalance:      planner.FromCents(s.Checking.BalanceCents),
		FixedExpensesMonthly: pending,
		RentAmount:           largest,
		CardPayments:         planner.UpcomingCardPayments(s.Statements(), purchaseDate),
	}
	if s.Income != nil {
		snapshot.Income = s.Income.Planner()
	}
	if s.Goal != nil {
		snapshot.Savings = s.Goal.Planner()
		snapshot.HasSavingsGoal = true
	}

	snapshot.Cards = make([]planner.Card, 0, len(s.Cards))
	for _, card := range s.Cards {
		snapshot.Cards = append(snapshot.Cards, card.PlannerCard())
	}

	return snapshot
}

// SavingsAvailability считает, сколько можно отложить до следующей зарплаты.
func (s FinancialState) SavingsAvailability() planner.SavingsAvailability {
	var income planner.IncomeSchedule
	var goal planner.SavingsGoal
	if s.Income != nil {
		income = s.Income.Planner()
	}
	if s.Goal != nil {
		goal = s.Goal.Planner()
	}
	if goal.MinBalanceComfort == 0 {
		goal.MinBalanceComfort = s.MinComfort
	}

	unpaid := make([]planner.FixedObligation, 0, len(s.Fixed))
	for _, o := range s.obligations() {
		if !s.Paid[o.ID] {
			unpaid = append(unpaid, o)
		}
	}

	due := planner.UpcomingCardPayments(s.Statements(), s.Today)
	return planner.AvailableForSavings(s.Today, planner.FromCents(s.Checking.BalanceCents), income, goal, unpaid, due)
}
