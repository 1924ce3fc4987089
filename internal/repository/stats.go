package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

type CategorySpend struct {
	Category   string
	Count      int
	SpentCents int64
}

type MonthSummary struct {
	FixedPaidCents    int64
	VariableCents     int64
	CardPaymentsCents int64
	CardChargesCents  int64
	CashSpentCents    int64
}

// NewStatsRepository создает репозиторий статистики.
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// SpendingByCategory возвращает переменные траты по категориям в интервале [from, to).
func (r *StatsRepository) SpendingByCategory(ctx context.Context, from, to time.Time) ([]CategorySpend, error) {
	if !from.Before(to) {
		return nil, ErrInvalid
	}

	rows, err := r.db.Query(ctx,
		`SELECT category, COUNT(*), COALESCE(SUM(amount_cents), 0) AS spent_cents
		 FROM variable_expenses
		 WHERE expense_date >= $1 AND expense_date < $2
		 GROUP BY category
		 ORDER BY spent_cents DESC, category`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spending := make([]CategorySpend, 0)
	for rows.Next() {
		var row CategorySpend
		if err := rows.Scan(&row.Category, &row.Count, &row.SpentCents); err != nil {
			return nil, err
		}
		spending = append(spending, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return spending, nil
}

// MonthSummary возвращает итоги месяца: оплаченные постоянные, переменные траты и оплаты карт.
func (r *StatsRepository) MonthSummary(ctx context.Context, month time.Month, year int) (MonthSummary, error) {
	var summary MonthSummary

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COALESCE(SUM(amount_cents), 0) FROM expense_payments WHERE month = $1 AND year = $2),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM variable_expenses WHERE expense_date >= $3 AND expense_date < $4),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM card_payments WHERE paid_at >= $3 AND paid_at < $4),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM variable_expenses
			  WHERE expense_date >= $3 AND expense_date < $4 AND card_id IS NOT NULL)`,
		int(month), year, start, end,
	).Scan(&summary.FixedPaidCents, &summary.VariableCents, &summary.CardPaymentsCents, &summary.CardChargesCents)
	if err != nil {
		return summary, err
	}

	summary.CashSpentCents = summary.VariableCents - summary.CardChargesCents
	return summary, nil
}
