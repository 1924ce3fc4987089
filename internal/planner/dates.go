package planner

import "time"

const hoursPerDay = 24

// DateOnly отбрасывает время суток, сохраняя календарную дату и локацию.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ClampDay возвращает дату с днем, ограниченным последним днем месяца.
func ClampDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if day < 1 {
		day = 1
	}
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// DaysBetween возвращает число календарных дней от a до b (может быть отрицательным).
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / hoursPerDay)
}

// AddMonths сдвигает дату на n месяцев, ограничивая день концом целевого месяца.
func AddMonths(t time.Time, n int, day int) time.Time {
	y, m, _ := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	return ClampDay(first.Year(), first.Month(), day, t.Location())
}

// NextClosingDate находит ближайшую дату закрытия выписки по карте.
func NextClosingDate(card Card, d time.Time) time.Time {
	y, m, day := d.Date()
	if day <= card.ClosingDay {
		return ClampDay(y, m, card.ClosingDay, d.Location())
	}
	return AddMonths(d, 1, card.ClosingDay)
}

// PaymentDate возвращает дату платежа по покупке, совершенной в день d.
func PaymentDate(card Card, d time.Time) time.Time {
	closing := NextClosingDate(card, d)
	return AddMonths(closing, 1, card.PaymentDueDay)
}

// CountPaychecks считает дни зарплаты в интервале [from, to] включительно.
func CountPaychecks(income IncomeSchedule, from, to time.Time) int {
	start := DateOnly(from)
	end := DateOnly(to)

	count := 0
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		day := current.Day()
		if day == income.FirstPaycheckDay || day == income.SecondPaycheckDay {
			count++
		}
	}
	return count
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
