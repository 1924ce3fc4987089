package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/card-planner/backend/internal/models"
)

const recommendationColumns = `id, description, amount_cents, purchase_date, is_deferred, num_payments, payment_frequency,
	card_id, card_name, score, liquidity_status, status, created_at, executed_at`

type RecommendationRepository struct {
	db *pgxpool.Pool
}

type RecommendationInput struct {
	Description      string
	AmountCents      int64
	PurchaseDate     time.Time
	IsDeferred       bool
	NumPayments      *int
	PaymentFrequency *string
	CardID           uuid.UUID
	CardName         string
	Score            float64
	LiquidityStatus  models.LiquidityStatus
	Schedule         []DeferredPaymentInput
}

type DeferredPaymentInput struct {
	PaymentNumber      int
	AmountCents        int64
	ExpectedDate       time.Time
	StatementCloseDate time.Time
}

type RecommendationWithSchedule struct {
	Recommendation models.PurchaseRecommendation
	Schedule       []models.DeferredPayment
}

// Execution содержит созданный расход и новую версию карты после исполнения рекомендации.
type Execution struct {
	Recommendation models.PurchaseRecommendation
	Expense        models.VariableExpense
	Card           *models.Card
}

type BatchFailure struct {
	ID    uuid.UUID
	Error error
}

// NewRecommendationRepository создает репозиторий сохраненных рекомендаций.
func NewRecommendationRepository(db *pgxpool.Pool) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// Save сохраняет рекомендацию вместе с графиком рассрочки в одной транзакции.
func (r *RecommendationRepository) Save(ctx context.Context, input RecommendationInput) (RecommendationWithSchedule, error) {
	var saved RecommendationWithSchedule

	if input.AmountCents <= 0 || input.CardID == uuid.Nil {
		return saved, ErrInvalid
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return saved, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rec, err := scanRecommendation(tx.QueryRow(ctx,
		`INSERT INTO purchase_recommendations
		 (description, amount_cents, purchase_date, is_deferred, num_payments, payment_frequency,
		  card_id, card_name, score, liquidity_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+recommendationColumns,
		input.Description, input.AmountCents, input.PurchaseDate, input.IsDeferred, input.NumPayments,
		input.PaymentFrequency, input.CardID, input.CardName, input.Score, input.LiquidityStatus,
	))
	if err != nil {
		return saved, mapWriteError(err)
	}

	schedule := make([]models.DeferredPayment, 0, len(input.Schedule))
	for _, p := range input.Schedule {
		var payment models.DeferredPayment
		err := tx.QueryRow(ctx,
			`INSERT INTO deferred_payments (recommendation_id, payment_number, amount_cents, expected_date, statement_close_date)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, recommendation_id, payment_number, amount_cents, expected_date, statement_close_date`,
			rec.ID, p.PaymentNumber, p.AmountCents, p.ExpectedDate, p.StatementCloseDate,
		).Scan(&payment.ID, &payment.RecommendationID, &payment.PaymentNumber, &payment.AmountCents, &payment.ExpectedDate, &payment.StatementCloseDate)
		if err != nil {
			return saved, err
		}
		schedule = append(schedule, payment)
	}

	if err := tx.Commit(ctx); err != nil {
		return saved, err
	}

	saved.Recommendation = rec
	saved.Schedule = schedule
	return saved, nil
}

// ListPending возвращает ожидающие рекомендации, новые первыми, с графиками рассрочки.
func (r *RecommendationRepository) ListPending(ctx context.Context) ([]RecommendationWithSchedule, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+recommendationColumns+`
		 FROM purchase_recommendations
		 WHERE status = $1
		 ORDER BY created_at DESC`,
		models.RecommendationPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]RecommendationWithSchedule, 0)
	index := make(map[uuid.UUID]int)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		index[rec.ID] = len(items)
		items = append(items, RecommendationWithSchedule{Recommendation: rec, Schedule: []models.DeferredPayment{}})
		if rec.IsDeferred {
			ids = append(ids, rec.ID)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return items, nil
	}

	scheduleRows, err := r.db.Query(ctx,
		`SELECT id, recommendation_id, payment_number, amount_cents, expected_date, statement_close_date
		 FROM deferred_payments
		 WHERE recommendation_id = ANY($1)
		 ORDER BY recommendation_id, payment_number`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer scheduleRows.Close()

	for scheduleRows.Next() {
		var p models.DeferredPayment
		if err := scheduleRows.Scan(&p.ID, &p.RecommendationID, &p.PaymentNumber, &p.AmountCents, &p.ExpectedDate, &p.StatementCloseDate); err != nil {
			return nil, err
		}
		if i, ok := index[p.RecommendationID]; ok {
			items[i].Schedule = append(items[i].Schedule, p)
		}
	}

	if err := scheduleRows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Get возвращает рекомендацию с графиком.
func (r *RecommendationRepository) Get(ctx context.Context, id uuid.UUID) (RecommendationWithSchedule, error) {
	var item RecommendationWithSchedule

	rec, err := scanRecommendation(r.db.QueryRow(ctx,
		`SELECT `+recommendationColumns+` FROM purchase_recommendations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return item, ErrNotFound
		}
		return item, err
	}
	item.Recommendation = rec

	rows, err := r.db.Query(ctx,
		`SELECT id, recommendation_id, payment_number, amount_cents, expected_date, statement_close_date
		 FROM deferred_payments
		 WHERE recommendation_id = $1
		 ORDER BY payment_number`,
		id,
	)
	if err != nil {
		return item, err
	}
	defer rows.Close()

	item.Schedule = make([]models.DeferredPayment, 0)
	for rows.Next() {
		var p models.DeferredPayment
		if err := rows.Scan(&p.ID, &p.RecommendationID, &p.PaymentNumber, &p.AmountCents, &p.ExpectedDate, &p.StatementCloseDate); err != nil {
			return item, err
		}
		item.Schedule = append(item.Schedule, p)
	}

	return item, rows.Err()
}

// Execute превращает рекомендацию в реальный расход по рекомендованной карте.
func (r *RecommendationRepository) Execute(ctx context.Context, id uuid.UUID) (Execution, error) {
	var execution Execution

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return execution, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rec, err := scanRecommendation(tx.QueryRow(ctx,
		`SELECT `+recommendationColumns+` FROM purchase_recommendations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return execution, ErrNotFound
		}
		return execution, err
	}
	if rec.Status != models.RecommendationPending {
		return execution, ErrAlreadyExecuted
	}

	cardID := rec.CardID
	recID := rec.ID
	expense, change, err := insertVariable(ctx, tx, VariableExpenseInput{
		Description:      executionDescription(rec),
		AmountCents:      rec.AmountCents,
		Category:         "purchase",
		CardID:           &cardID,
		ExpenseDate:      rec.PurchaseDate,
		RecommendationID: &recID,
	})
	if err != nil {
		return execution, err
	}

	rec, err = scanRecommendation(tx.QueryRow(ctx,
		`UPDATE purchase_recommendations
		 SET status = $2, executed_at = now()
		 WHERE id = $1
		 RETURNING `+recommendationColumns,
		id, models.RecommendationExecuted,
	))
	if err != nil {
		return execution, err
	}

	if err := tx.Commit(ctx); err != nil {
		return execution, err
	}

	execution.Recommendation = rec
	execution.Expense = expense
	execution.Card = change.Card
	return execution, nil
}

// Cancel отменяет рекомендацию, если она еще не исполнена.
func (r *RecommendationRepository) Cancel(ctx context.Context, id uuid.UUID) (models.PurchaseRecommendation, error) {
	rec, err := scanRecommendation(r.db.QueryRow(ctx,
		`UPDATE purchase_recommendations
		 SET status = $2
		 WHERE id = $1 AND status <> $3
		 RETURNING `+recommendationColumns,
		id, models.RecommendationCancelled, models.RecommendationExecuted,
	))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return rec, err
	}

	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchase_recommendations WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return rec, err
	}
	if !exists {
		return rec, ErrNotFound
	}
	return rec, ErrAlreadyExecuted
}

// ExecuteBatch исполняет несколько рекомендаций; ошибка одной не отменяет остальные.
func (r *RecommendationRepository) ExecuteBatch(ctx context.Context, ids []uuid.UUID) ([]Execution, []BatchFailure) {
	executed := make([]Execution, 0, len(ids))
	failures := make([]BatchFailure, 0)

	for _, id := range ids {
		execution, err := r.Execute(ctx, id)
		if err != nil {
			failures = append(failures, BatchFailure{ID: id, Error: err})
			continue
		}
		executed = append(executed, execution)
	}

	return executed, failures
}

func executionDescription(rec models.PurchaseRecommendation) string {
	if rec.Description == "" {
		return fmt.Sprintf("Purchase on %s", rec.CardName)
	}
	return rec.Description
}

func scanRecommendation(row pgx.Row) (models.PurchaseRecommendation, error) {
	var rec models.PurchaseRecommendation
	err := row.Scan(&rec.ID, &rec.Description, &rec.AmountCents, &rec.PurchaseDate, &rec.IsDeferred, &rec.NumPayments,
		&rec.PaymentFrequency, &rec.CardID, &rec.CardName, &rec.Score, &rec.LiquidityStatus, &rec.Status,
		&rec.CreatedAt, &rec.ExecutedAt)
	return rec, err
}
