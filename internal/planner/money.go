package planner

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 округляет денежную сумму до центов; вызывается только при выдаче результата.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Round1 округляет оценку до десятых.
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// formatMoney печатает сумму как $1,234.56.
func formatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "$" + b.String() + "." + frac
}

// FromCents переводит сумму в центах в доллары для расчетов.
func FromCents(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// ToCents переводит сумму в долларах в центы, округляя до цента.
func ToCents(v float64) int64 {
	return decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()
}
