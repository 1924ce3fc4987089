package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Веса уже заложены в значения бакетов, итог считается простой суммой.
const (
	timingMax       = 35.0
	liquidityMax    = 25.0
	savingsMax      = 15.0
	utilizationMax  = 15.0
	distributionMax = 10.0

	highBalance    = 3000.0
	mediumBalance  = 1500.0
	nearlyEmptyPct = 5.0
)

const (
	PaycheckHalfFirst  = "first"
	PaycheckHalfSecond = "second"
)

type CardScore struct {
	Card              Card
	TotalScore        float64
	TimingScore       float64
	LiquidityScore    float64
	SavingsScore      float64
	UtilizationScore  float64
	DistributionScore float64
	PaymentDate       time.Time
	ProjectedBalance  float64
	CycleAmount       float64
	PaycheckHalf      string
	Reasoning         string
	Rank              int
}

// Scorer оценивает карты для гипотетической покупки.
type Scorer struct {
	today        time.Time
	projector    *Projector
	income       IncomeSchedule
	savings      SavingsGoal
	fixedMonthly float64
}

// NewScorer создает скорер поверх прогноза баланса.
func NewScorer(today time.Time, projector *Projector, income IncomeSchedule, savings SavingsGoal, fixedMonthly float64) *Scorer {
	return &Scorer{
		today:        DateOnly(today),
		projector:    projector,
		income:       income,
		savings:      savings,
		fixedMonthly: fixedMonthly,
	}
}

// Score считает пять подоценок и итог для одной карты.
func (s *Scorer) Score(card Card, req PurchaseRequest, perInstallment float64) CardScore {
	paymentDate := PaymentDate(card, req.PurchaseDate)
	projected := s.projector.ProjectBalance(paymentDate)

	cycleAmount := req.Amount
	if req.IsDeferred && perInstallment > 0 {
		cycleAmount = perInstallment * float64(installmentsBefore(req.PurchaseDate, paymentDate, req.Frequency))
	}

	half := PaycheckPeriod(s.income, paymentDate)
	score := CardScore{
		Card:              card,
		TimingScore:       s.timingScore(req.PurchaseDate, paymentDate, projected),
		LiquidityScore:    liquidityScore(projected, cycleAmount),
		SavingsScore:      s.savingsScore(cycleAmount),
		UtilizationScore:  utilizationScore(card, req.Amount),
		DistributionScore: distributionScore(card),
		PaymentDate:       paymentDate,
		ProjectedBalance:  projected,
		CycleAmount:       cycleAmount,
		PaycheckHalf:      half,
	}
	score.TotalScore = score.TimingScore + score.LiquidityScore + score.SavingsScore + score.UtilizationScore + score.DistributionScore
	score.Reasoning = s.reasoning(card, score)

	return score
}

// Rank сортирует оценки по убыванию (стабильно) и проставляет места 1..N.
func Rank(scores []CardScore) []CardScore {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalScore > scores[j].TotalScore
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
	return scores
}

func (s *Scorer) timingScore(purchaseDate, paymentDate time.Time, projected float64) float64 {
	paychecks := CountPaychecks(s.income, purchaseDate, paymentDate)

	switch {
	case paychecks >= 2:
		return timingMax
	case paychecks == 1 && projected > highBalance:
		return timingMax * 0.7
	case paychecks == 1:
		return timingMax * 0.5
	default:
		return timingMax * 0.2
	}
}

func liquidityScore(projected, amount float64) float64 {
	after := projected - amount

	switch {
	case after > highBalance:
		return liquidityMax
	case after > mediumBalance:
		return 15.0
	default:
		return 5.0
	}
}

func (s *Scorer) savingsScore(amount float64) float64 {
	room := s.income.Amount - s.fixedMonthly/2 - s.savings.VariableExpensesMonthly/2 - amount
	if room < 0 {
		room = 0
	}

	goal := s.savings.AmountPerPaycheck
	switch {
	case room >= goal:
		return savingsMax
	case room >= goal*0.5:
		return savingsMax * 0.7
	default:
		return savingsMax * 0.3
	}
}

func utilizationScore(card Card, amount float64) float64 {
	utilization := 0.0
	if card.CreditLimit > 0 {
		utilization = (card.CurrentBalance + amount) / card.CreditLimit
	}

	switch {
	case utilization < 0.10:
		return utilizationMax
	case utilization < 0.30:
		return utilizationMax * 0.7
	default:
		return utilizationMax * 0.4
	}
}

func distributionScore(card Card) float64 {
	pct := card.utilization() * 100

	switch {
	case pct < 20:
		return distributionMax
	case pct < 50:
		return 7.0
	default:
		return 4.0
	}
}

func (s *Scorer) reasoning(card Card, score CardScore) string {
	reasons := make([]string, 0, 4)
	daysUntil := DaysBetween(s.today, score.PaymentDate)

	switch {
	case score.TimingScore >= 30:
		reasons = append(reasons, fmt.Sprintf("Excellent timing (%d days)", daysUntil))
	case score.TimingScore >= 20:
		reasons = append(reasons, fmt.Sprintf("Good timing (%d days)", daysUntil))
	}

	switch {
	case score.LiquidityScore >= 20:
		reasons = append(reasons, fmt.Sprintf("You will have %s available", formatMoney(score.ProjectedBalance)))
	case score.LiquidityScore >= 10:
		reasons = append(reasons, fmt.Sprintf("Tight balance (%s)", formatMoney(score.ProjectedBalance)))
	default:
		reasons = append(reasons, fmt.Sprintf("Low balance (%s)", formatMoney(score.ProjectedBalance)))
	}

	if card.utilization()*100 < nearlyEmptyPct {
		reasons = append(reasons, "Card nearly empty")
	}

	switch {
	case score.SavingsScore >= 12:
		reasons = append(reasons, "Savings goal unaffected")
	case score.SavingsScore < 7:
		reasons = append(reasons, "May affect savings goal")
	}

	if len(reasons) == 0 {
		return "Viable option"
	}
	return strings.Join(reasons, " | ")
}

func installmentsBefore(start, end time.Time, frequency Frequency) int {
	count := DaysBetween(start, end) / frequency.IntervalDays()
	if count < 1 {
		return 1
	}
	return count
}
