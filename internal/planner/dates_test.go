package planner

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestNextClosingDateProperty проверяет день закрытия и минимальность даты для всех дней закрытия.
func TestNextClosingDateProperty(t *testing.T) {
	start := date(2024, time.January, 1)
	for closing := 1; closing <= 31; closing++ {
		card := Card{ClosingDay: closing, PaymentDueDay: 10}
		for d := start; d.Year() < 2026; d = d.AddDate(0, 0, 1) {
			got := NextClosingDate(card, d)

			if got.Before(d) {
				t.Fatalf("closing %d, date %s: got %s before purchase", closing, d.Format(time.DateOnly), got.Format(time.DateOnly))
			}

			wantDay := closing
			if last := daysInMonth(got.Year(), got.Month()); wantDay > last {
				wantDay = last
			}
			if got.Day() != wantDay {
				t.Fatalf("closing %d, date %s: expected day %d, got %s", closing, d.Format(time.DateOnly), wantDay, got.Format(time.DateOnly))
			}

			if got.Month() != d.Month() {
				sameMonth := ClampDay(d.Year(), d.Month(), closing, time.UTC)
				if !sameMonth.Before(d) {
					t.Fatalf("closing %d, date %s: skipped %s", closing, d.Format(time.DateOnly), sameMonth.Format(time.DateOnly))
				}
			}
		}
	}
}

// TestPaymentDateClamped проверяет ограничение дня платежа концом февраля.
func TestPaymentDateClamped(t *testing.T) {
	card := Card{ClosingDay: 31, PaymentDueDay: 30}

	got := PaymentDate(card, date(2025, time.January, 20))
	want := date(2025, time.February, 28)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want.Format(time.DateOnly), got.Format(time.DateOnly))
	}

	got = PaymentDate(card, date(2024, time.January, 31))
	want = date(2024, time.February, 29)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want.Format(time.DateOnly), got.Format(time.DateOnly))
	}
}

// TestNextClosingDateYearRollover проверяет переход через декабрь.
func TestNextClosingDateYearRollover(t *testing.T) {
	card := Card{ClosingDay: 19, PaymentDueDay: 24}

	got := NextClosingDate(card, date(2025, time.December, 20))
	if want := date(2026, time.January, 19); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want.Format(time.DateOnly), got.Format(time.DateOnly))
	}

	got = PaymentDate(card, date(2025, time.December, 20))
	if want := date(2026, time.February, 24); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want.Format(time.DateOnly), got.Format(time.DateOnly))
	}
}

// TestCountPaychecks проверяет включительный подсчет зарплат.
func TestCountPaychecks(t *testing.T) {
	income := IncomeSchedule{Amount: 3300, FirstPaycheckDay: 9, SecondPaycheckDay: 23}

	cases := []struct {
		from, to time.Time
		want     int
	}{
		{date(2026, time.January, 3), date(2026, time.January, 3), 0},
		{date(2026, time.January, 9), date(2026, time.January, 9), 1},
		{date(2026, time.January, 3), date(2026, time.January, 23), 2},
		{date(2026, time.January, 3), date(2026, time.February, 24), 4},
		{date(2026, time.February, 1), date(2026, time.January, 1), 0},
	}

	for _, tc := range cases {
		if got := CountPaychecks(income, tc.from, tc.to); got != tc.want {
			t.Fatalf("%s..%s: expected %d, got %d", tc.from.Format(time.DateOnly), tc.to.Format(time.DateOnly), tc.want, got)
		}
	}
}

// TestDaysBetweenNegative проверяет знак разницы дат.
func TestDaysBetweenNegative(t *testing.T) {
	if got := DaysBetween(date(2026, time.January, 10), date(2026, time.January, 3)); got != -7 {
		t.Fatalf("expected -7, got %d", got)
	}
	if got := DaysBetween(date(2024, time.February, 28), date(2024, time.March, 1)); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

// TestNextPaycheck проверяет ближайшую дату зарплаты, включая переход месяца.
func TestNextPaycheck(t *testing.T) {
	income := IncomeSchedule{Amount: 3300, FirstPaycheckDay: 9, SecondPaycheckDay: 23}

	if got := NextPaycheck(income, date(2026, time.January, 9)); !got.Equal(date(2026, time.January, 9)) {
		t.Fatalf("expected Jan 9, got %s", got.Format(time.DateOnly))
	}
	if got := NextPaycheck(income, date(2026, time.January, 10)); !got.Equal(date(2026, time.January, 23)) {
		t.Fatalf("expected Jan 23, got %s", got.Format(time.DateOnly))
	}
	if got := NextPaycheck(income, date(2026, time.December, 24)); !got.Equal(date(2027, time.January, 9)) {
		t.Fatalf("expected Jan 9 2027, got %s", got.Format(time.DateOnly))
	}
}
