package planner

import (
	"math"
	"time"
)

// Engine считает рекомендации для одного снимка данных.
// Снимок не изменяется, поэтому один Engine можно вызывать из нескольких горутин.
type Engine struct {
	snapshot  Snapshot
	projector *Projector
	scorer    *Scorer
	gate      *Gate
}

type Recommendation struct {
	PurchaseDate          time.Time
	CanAffordNow          bool
	SuggestedWaitDate     *time.Time
	Liquidity             LiquidityResult
	Scores                []CardScore
	Schedule              *Schedule
	PaymentPerInstallment float64
}

// Best возвращает карту с первым местом.
func (r Recommendation) Best() (CardScore, bool) {
	if len(r.Scores) == 0 {
		return CardScore{}, false
	}
	return r.Scores[0], true
}

// New собирает движок. Без карт, графика дохода или цели сбережений возвращает ErrNotConfigured.
func New(snapshot Snapshot) (*Engine, error) {
	if len(snapshot.Cards) == 0 || snapshot.Income.Amount <= 0 || !snapshot.HasSavingsGoal {
		return nil, ErrNotConfigured
	}

	snapshot.Today = DateOnly(snapshot.Today)
	cards := make([]Card, len(snapshot.Cards))
	copy(cards, snapshot.Cards)
	snapshot.Cards = cards

	projector := NewProjector(snapshot.Today, snapshot.CheckingBalance, snapshot.FixedExpensesMonthly, snapshot.Income, snapshot.Savings)

	return &Engine{
		snapshot:  snapshot,
		projector: projector,
		scorer:    NewScorer(snapshot.Today, projector, snapshot.Income, snapshot.Savings, snapshot.FixedExpensesMonthly),
		gate:      NewGate(projector, snapshot),
	}, nil
}

// Projector возвращает прогноз баланса, на котором построен движок.
func (e *Engine) Projector() *Projector {
	return e.projector
}

// Recommend проверяет ликвидность, ранжирует карты и строит график платежей для отложенной покупки.
func (e *Engine) Recommend(req PurchaseRequest) (Recommendation, error) {
	req, err := e.normalize(req)
	if err != nil {
		return Recommendation{}, err
	}

	perInstallment := req.Amount
	if req.IsDeferred {
		perInstallment = req.Amount / float64(req.NumPayments)
	}

	liquidity := e.gate.Check(req, perInstallment)

	scores := make([]CardScore, 0, len(e.snapshot.Cards))
	for _, card := range e.snapshot.Cards {
		scores = append(scores, e.scorer.Score(card, req, perInstallment))
	}
	scores = Rank(scores)

	rec := Recommendation{
		PurchaseDate:          req.PurchaseDate,
		CanAffordNow:          liquidity.CanAfford,
		SuggestedWaitDate:     liquidity.SuggestedWaitDate,
		Liquidity:             liquidity,
		Scores:                scores,
		PaymentPerInstallment: perInstallment,
	}

	if req.IsDeferred {
		schedule := BuildSchedule(scores[0].Card, req.PurchaseDate, e.snapshot.Today, req.Amount, req.NumPayments, req.Frequency)
		rec.Schedule = &schedule
	}

	return rec, nil
}

func (e *Engine) normalize(req PurchaseRequest) (PurchaseRequest, error) {
	if !(req.Amount > 0) || math.IsInf(req.Amount, 0) {
		return req, ErrInvalidAmount
	}
	if req.IsDeferred && req.NumPayments < 1 {
		return req, ErrInstallmentsRequired
	}

	frequency, err := ParseFrequency(string(req.Frequency))
	if err != nil {
		return req, err
	}
	req.Frequency = frequency

	if req.PurchaseDate.IsZero() {
		req.PurchaseDate = e.snapshot.Today
	}
	req.PurchaseDate = DateOnly(req.PurchaseDate)

	return req, nil
}
