package ai

type CategorySpend struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	SpentCents int64  `json:"spent_cents"`
}

type CardDebt struct {
	Name          string `json:"name"`
	BalanceCents  int64  `json:"balance_cents"`
	LimitCents    int64  `json:"limit_cents"`
	DaysUntilDue  int    `json:"days_until_due"`
	StatementPaid bool   `json:"statement_paid"`
}

// AdviseSpendingInput описывает месяц, который уходит в промпт.
type AdviseSpendingInput struct {
	Month                    string          `json:"month"`
	Currency                 string          `json:"currency"`
	CheckingBalanceCents     int64           `json:"checking_balance_cents"`
	SavingsBalanceCents      int64           `json:"savings_balance_cents"`
	MonthlyIncomeCents       int64           `json:"monthly_income_cents"`
	SavingsPerPaycheckCents  int64           `json:"savings_per_paycheck_cents"`
	FixedMonthlyCents        int64           `json:"fixed_monthly_cents"`
	VariableBudgetCents      int64           `json:"variable_budget_cents"`
	VariableSpentCents       int64           `json:"variable_spent_cents"`
	Categories               []CategorySpend `json:"categories"`
	Cards                    []CardDebt      `json:"cards,omitempty"`
	AvailableForSavingsCents int64           `json:"available_for_savings_cents"`
}

type AdviceResponse struct {
	Summary string   `json:"summary"`
	Advices []Advice `json:"advices"`
}

type Advice struct {
	Content  string `json:"content"`
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
}
