package planner

import "time"

type SavingsAvailability struct {
	CurrentBalance      float64
	MinBalanceRequired  float64
	UpcomingExpenses    float64
	AvailableForSavings float64
	RecommendedTransfer float64
	GoalPerPaycheck     float64
	WouldMeetGoal       bool
	NextPaycheckDate    time.Time
	CurrentPeriod       string
}

// AvailableForSavings считает, сколько можно перевести на сбережения до следующей зарплаты,
// сохранив минимальный комфортный остаток.
func AvailableForSavings(today time.Time, balance float64, income IncomeSchedule, savings SavingsGoal,
	fixed []FixedObligation, cardPayments []CardPaymentDue) SavingsAvailability {
	today = DateOnly(today)
	next := NextPaycheck(income, today)
	if next.IsZero() {
		next = today
	}

	upcoming := upcomingExpenses(today, next, savings, fixed, cardPayments)
	available := balance - savings.MinBalanceComfort - upcoming

	transfer := available
	if transfer > savings.AmountPerPaycheck {
		transfer = savings.AmountPerPaycheck
	}
	if transfer < 0 {
		transfer = 0
	}

	return SavingsAvailability{
		CurrentBalance:      balance,
		MinBalanceRequired:  savings.MinBalanceComfort,
		UpcomingExpenses:    upcoming,
		AvailableForSavings: available,
		RecommendedTransfer: transfer,
		GoalPerPaycheck:     savings.AmountPerPaycheck,
		WouldMeetGoal:       transfer >= savings.AmountPerPaycheck,
		NextPaycheckDate:    next,
		CurrentPeriod:       PaycheckPeriod(income, today),
	}
}

func upcomingExpenses(start, end time.Time, savings SavingsGoal, fixed []FixedObligation, cardPayments []CardPaymentDue) float64 {
	total := 0.0

	for _, p := range cardPayments {
		due := DateOnly(p.DueDate)
		if !due.Before(start) && !due.After(end) {
			total += p.Amount
		}
	}

	for _, e := range fixed {
		if e.Active && dueInPeriod(e.DueDay, start, end) {
			total += e.Amount
		}
	}

	days := float64(DaysBetween(start, end))
	total += savings.VariableExpensesMonthly / daysPerMonth * days

	return total
}

func dueInPeriod(dueDay int, start, end time.Time) bool {
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if current.Day() == dueDay {
			return true
		}
	}
	return false
}
