package planner

import "time"

const daysPerMonth = 30.0

// Projector линейно прогнозирует остаток на расчетном счете.
type Projector struct {
	today        time.Time
	balance      float64
	fixedMonthly float64
	income       IncomeSchedule
	savings      SavingsGoal
}

// NewProjector создает прогноз баланса от указанного дня.
func NewProjector(today time.Time, balance, fixedMonthly float64, income IncomeSchedule, savings SavingsGoal) *Projector {
	return &Projector{
		today:        DateOnly(today),
		balance:      balance,
		fixedMonthly: fixedMonthly,
		income:       income,
		savings:      savings,
	}
}

// ProjectBalance оценивает баланс на target. Дата в прошлом дает отрицательное число дней, а не ошибку.
func (p *Projector) ProjectBalance(target time.Time) float64 {
	days := float64(DaysBetween(p.today, target))

	balance := p.balance
	balance -= p.dailyBurn() * days

	paychecks := CountPaychecks(p.income, p.today, target)
	balance += float64(paychecks) * p.income.Amount

	return balance
}

func (p *Projector) dailyBurn() float64 {
	return p.fixedMonthly/daysPerMonth + p.savings.VariableExpensesMonthly/daysPerMonth
}
