package models

import "example.com/card-planner/backend/internal/planner"

// PlannerCard переводит карту в снимок движка; текущий долг включает обе выписки.
func (c Card) PlannerCard() planner.Card {
	return planner.Card{
		ID:             c.ID,
		Name:           c.Name,
		ClosingDay:     c.ClosingDay,
		PaymentDueDay:  c.PaymentDueDay,
		CreditLimit:    planner.FromCents(c.CreditLimitCents),
		CurrentBalance: planner.FromCents(c.ClosedBalanceCents + c.OpenBalanceCents),
	}
}

func (c Card) PlannerAccount() planner.CardAccount {
	return planner.CardAccount{
		Card:              c.PlannerCard(),
		ClosedBalance:     planner.FromCents(c.ClosedBalanceCents),
		OpenBalance:       planner.FromCents(c.OpenBalanceCents),
		ManualPaymentDate: c.ManualPaymentDate,
	}
}

func (i IncomeSchedule) Planner() planner.IncomeSchedule {
	return planner.IncomeSchedule{
		Amount:            planner.FromCents(i.AmountCents),
		FirstPaycheckDay:  i.FirstPaycheckDay,
		SecondPaycheckDay: i.SecondPaycheckDay,
	}
}

func (g SavingsGoal) Planner() planner.SavingsGoal {
	return planner.SavingsGoal{
		AmountPerPaycheck:       planner.FromCents(g.AmountPerPaycheckCents),
		MinBalanceComfort:       planner.FromCents(g.MinBalanceComfortCents),
		VariableExpensesMonthly: planner.FromCents(g.VariableExpensesMonthlyCents),
	}
}

func (e FixedExpense) Obligation() planner.FixedObligation {
	return planner.FixedObligation{
		ID:     e.ID,
		Name:   e.Name,
		Amount: planner.FromCents(e.AmountCents),
		DueDay: e.DueDay,
		Active: e.Active,
	}
}
