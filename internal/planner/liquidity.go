package planner

import (
	"fmt"
	"time"
)

const (
	bufferRequired    = 1000.0
	comfortableBuffer = 1500.0
	criticalThreshold = 500.0
	rentDay           = 1
	rentPaycheckDay   = 15

	cardPaymentWindowDays = 30
)

type Tier string

const (
	TierSafe     Tier = "safe"
	TierTight    Tier = "tight"
	TierCritical Tier = "critical"
)

// Color возвращает цвет индикатора для уровня ликвидности.
func (t Tier) Color() string {
	switch t {
	case TierSafe:
		return "green"
	case TierTight:
		return "yellow"
	default:
		return "red"
	}
}

// LiquidityResult содержит все вычеты, чтобы итог можно было проверить вручную.
type LiquidityResult struct {
	CanAfford          bool
	Tier               Tier
	CurrentBalance     float64
	ProjectedBalance   float64
	RentUpcoming       bool
	RentAmount         float64
	CardPaymentsTotal  float64
	CardPayments       []CardPaymentDue
	OtherFixedPending  float64
	BufferRequired     float64
	SavingsReserved    float64
	AvailableBalance   float64
	FirstPaymentAmount float64
	Remaining          float64
	NextPaycheckDate   time.Time
	SuggestedWaitDate  *time.Time
	Warning            string
}

// Gate решает, можно ли позволить покупку без ухода ниже подушки.
type Gate struct {
	projector    *Projector
	balance      float64
	savings      SavingsGoal
	fixedPending float64
	rentAmount   float64
	obligations  []CardPaymentDue
}

// NewGate создает проверку ликвидности по данным снимка.
func NewGate(projector *Projector, snapshot Snapshot) *Gate {
	return &Gate{
		projector:    projector,
		balance:      snapshot.CheckingBalance,
		savings:      snapshot.Savings,
		fixedPending: snapshot.FixedExpensesMonthly,
		rentAmount:   snapshot.RentAmount,
		obligations:  snapshot.CardPayments,
	}
}

// Check проверяет покупку и раскладывает остаток по уровням safe/tight/critical.
func (g *Gate) Check(req PurchaseRequest, perInstallment float64) LiquidityResult {
	purchaseDate := DateOnly(req.PurchaseDate)
	projected := g.projector.ProjectBalance(purchaseDate)

	// День месяца не бывает меньше 1, поэтому аренда здесь никогда не вычитается.
	rentUpcoming := purchaseDate.Day() < rentDay

	due := g.paymentsDue(purchaseDate)
	cardTotal := 0.0
	for _, p := range due {
		cardTotal += p.Amount
	}

	otherFixed := g.fixedPending
	available := projected
	if rentUpcoming {
		available -= g.rentAmount
		otherFixed -= g.rentAmount
	}
	available -= cardTotal
	available -= otherFixed
	available -= bufferRequired
	available -= g.savings.AmountPerPaycheck

	firstPayment := req.Amount
	if req.IsDeferred {
		firstPayment = perInstallment
	}
	remaining := available - firstPayment

	result := LiquidityResult{
		CurrentBalance:     g.balance,
		ProjectedBalance:   projected,
		RentUpcoming:       rentUpcoming,
		CardPaymentsTotal:  cardTotal,
		CardPayments:       due,
		OtherFixedPending:  otherFixed,
		BufferRequired:     bufferRequired,
		SavingsReserved:    g.savings.AmountPerPaycheck,
		AvailableBalance:   available,
		FirstPaymentAmount: firstPayment,
		Remaining:          remaining,
		NextPaycheckDate:   nextPaycheckSuggestion(purchaseDate),
	}
	if rentUpcoming {
		result.RentAmount = g.rentAmount
	}

	result.Tier = Classify(remaining)
	switch result.Tier {
	case TierSafe:
		result.CanAfford = true
	case TierTight:
		result.CanAfford = true
		wait := result.NextPaycheckDate
		result.SuggestedWaitDate = &wait
		result.Warning = fmt.Sprintf("Balance will be tight: %s left after the purchase", formatMoney(remaining))
	default:
		wait := result.NextPaycheckDate
		result.SuggestedWaitDate = &wait
		result.Warning = fmt.Sprintf("Not enough liquidity: %s short of the %s minimum. Wait until %s",
			formatMoney(criticalThreshold-remaining), formatMoney(criticalThreshold), wait.Format(time.DateOnly))
	}

	return result
}

// Classify относит остаток к уровню ликвидности; границы включаются в верхний уровень.
func Classify(remaining float64) Tier {
	switch {
	case remaining >= comfortableBuffer:
		return TierSafe
	case remaining >= criticalThreshold:
		return TierTight
	default:
		return TierCritical
	}
}

func (g *Gate) paymentsDue(purchaseDate time.Time) []CardPaymentDue {
	due := make([]CardPaymentDue, 0, len(g.obligations))
	for _, p := range g.obligations {
		days := DaysBetween(purchaseDate, p.DueDate)
		if days >= 0 && days <= cardPaymentWindowDays {
			due = append(due, p)
		}
	}
	return due
}

// Опорный день 15 зашит и не зависит от реального графика зарплат.
func nextPaycheckSuggestion(purchaseDate time.Time) time.Time {
	if purchaseDate.Day() < rentPaycheckDay {
		return ClampDay(purchaseDate.Year(), purchaseDate.Month(), rentPaycheckDay, purchaseDate.Location())
	}
	return AddMonths(purchaseDate, 1, rentPaycheckDay)
}
