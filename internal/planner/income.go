package planner

import "time"

// NextPaycheck возвращает ближайший день зарплаты не раньше today.
func NextPaycheck(income IncomeSchedule, today time.Time) time.Time {
	today = DateOnly(today)
	y, m, _ := today.Date()
	loc := today.Location()

	var best time.Time
	for _, offset := range []int{0, 1} {
		for _, day := range []int{income.FirstPaycheckDay, income.SecondPaycheckDay} {
			if day < 1 {
				continue
			}
			first := time.Date(y, m, 1, 0, 0, 0, 0, loc).AddDate(0, offset, 0)
			candidate := ClampDay(first.Year(), first.Month(), day, loc)
			if candidate.Before(today) {
				continue
			}
			if best.IsZero() || candidate.Before(best) {
				best = candidate
			}
		}
	}
	return best
}

// PaycheckPeriod возвращает половину месяца, к которой относится дата.
func PaycheckPeriod(income IncomeSchedule, d time.Time) string {
	if d.Day() <= income.FirstPaycheckDay {
		return PaycheckHalfFirst
	}
	return PaycheckHalfSecond
}
