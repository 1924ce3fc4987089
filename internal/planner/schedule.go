package planner

import "time"

type ScheduledPayment struct {
	PaymentNumber      int
	Amount             float64
	ExpectedDate       time.Time
	StatementCloseDate time.Time
	DaysUntil          int
}

type Schedule struct {
	CardID        string
	CardName      string
	TotalAmount   float64
	NumPayments   int
	PaymentAmount float64
	Frequency     Frequency
	Payments      []ScheduledPayment
}

// BuildSchedule раскладывает отложенную покупку на платежи по выпискам карты.
// Функция чистая: одинаковые аргументы дают одинаковый результат.
func BuildSchedule(card Card, purchaseDate, today time.Time, totalAmount float64, numPayments int, frequency Frequency) Schedule {
	schedule := Schedule{
		CardID:      card.ID.String(),
		CardName:    card.Name,
		TotalAmount: totalAmount,
		NumPayments: numPayments,
		Frequency:   frequency,
	}
	if numPayments < 1 {
		return schedule
	}

	schedule.PaymentAmount = totalAmount / float64(numPayments)
	interval := frequency.IntervalDays()
	start := DateOnly(purchaseDate)

	schedule.Payments = make([]ScheduledPayment, 0, numPayments)
	for i := 1; i <= numPayments; i++ {
		expected := start.AddDate(0, 0, (i-1)*interval)
		schedule.Payments = append(schedule.Payments, ScheduledPayment{
			PaymentNumber:      i,
			Amount:             schedule.PaymentAmount,
			ExpectedDate:       expected,
			StatementCloseDate: NextClosingDate(card, expected),
			DaysUntil:          DaysBetween(today, expected),
		})
	}

	return schedule
}
