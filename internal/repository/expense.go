package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/card-planner/backend/internal/models"
)

const (
	fixedColumns    = `id, name, amount_cents, due_day, category, active, created_at`
	variableColumns = `id, description, amount_cents, category, card_id, expense_date, recommendation_id, created_at`
	paymentColumns  = `id, expense_id, month, year, amount_cents, payment_method, card_id, paid_at`
)

type ExpenseRepository struct {
	db *pgxpool.Pool
}

type FixedExpenseInput struct {
	Name        string
	AmountCents int64
	DueDay      int
	Category    string
	Active      bool
}

// MarkPaidInput описывает оплату постоянного расхода.
// AmountCents = 0 означает сумму из самого расхода.
type MarkPaidInput struct {
	ExpenseID        uuid.UUID
	PaidAt           time.Time
	AmountCents      int64
	Method           models.PaymentMethod
	CardID           *uuid.UUID
	AlreadyInBalance bool
}

type VariableExpenseInput struct {
	Description      string
	AmountCents      int64
	Category         string
	CardID           *uuid.UUID
	ExpenseDate      time.Time
	RecommendationID *uuid.UUID
}

// BalanceChange содержит измененные балансы после записи расхода.
type BalanceChange struct {
	Account *models.Account
	Card    *models.Card
}

// NewExpenseRepository создает репозиторий расходов.
func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// ListFixed возвращает постоянные расходы по дню оплаты.
func (r *ExpenseRepository) ListFixed(ctx context.Context, activeOnly bool) ([]models.FixedExpense, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+fixedColumns+`
		 FROM fixed_expenses
		 WHERE active OR NOT $1
		 ORDER BY due_day, name`,
		activeOnly,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.FixedExpense, 0)
	for rows.Next() {
		expense, err := scanFixed(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

// CreateFixed добавляет постоянный расход.
func (r *ExpenseRepository) CreateFixed(ctx context.Context, input FixedExpenseInput) (models.FixedExpense, error) {
	if err := input.validate(); err != nil {
		return models.FixedExpense{}, err
	}

	expense, err := scanFixed(r.db.QueryRow(ctx,
		`INSERT INTO fixed_expenses (name, amount_cents, due_day, category, active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+fixedColumns,
		input.Name, input.AmountCents, input.DueDay, categoryOrDefault(input.Category), input.Active,
	))
	if err != nil {
		return expense, mapWriteError(err)
	}

	return expense, nil
}

// UpdateFixed обновляет постоянный расход.
func (r *ExpenseRepository) UpdateFixed(ctx context.Context, id uuid.UUID, input FixedExpenseInput) (models.FixedExpense, error) {
	if err := input.validate(); err != nil {
		return models.FixedExpense{}, err
	}

	expense, err := scanFixed(r.db.QueryRow(ctx,
		`UPDATE fixed_expenses
		 SET name = $2, amount_cents = $3, due_day = $4, category = $5, active = $6
		 WHERE id = $1
		 RETURNING `+fixedColumns,
		id, input.Name, input.AmountCents, input.DueDay, categoryOrDefault(input.Category), input.Active,
	))
	if err != nil {
		return expense, mapWriteError(err)
	}

	return expense, nil
}

// MarkFixedPaid отмечает оплату расхода за месяц PaidAt.
// Наличные списываются с расчетного счета, карта увеличивает открытый баланс.
func (r *ExpenseRepository) MarkFixedPaid(ctx context.Context, input MarkPaidInput) (models.ExpensePayment, BalanceChange, error) {
	var payment models.ExpensePayment
	var change BalanceChange

	if input.Method == "" {
		input.Method = models.PaymentMethodCash
	}
	if input.Method != models.PaymentMethodCash && input.Method != models.PaymentMethodCard {
		return payment, change, ErrInvalid
	}
	if input.Method == models.PaymentMethodCard && input.CardID == nil {
		return payment, change, ErrInvalid
	}
	if input.AmountCents < 0 {
		return payment, change, ErrInvalid
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return payment, change, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	expense, err := scanFixed(tx.QueryRow(ctx, `SELECT `+fixedColumns+` FROM fixed_expenses WHERE id = $1`, input.ExpenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment, change, ErrNotFound
		}
		return payment, change, err
	}

	amount := input.AmountCents
	if amount == 0 {
		amount = expense.AmountCents
	}

	var cardID *uuid.UUID
	if input.Method == models.PaymentMethodCard {
		cardID = input.CardID
	}

	payment, err = scanExpensePayment(tx.QueryRow(ctx,
		`INSERT INTO expense_payments (expense_id, month, year, amount_cents, payment_method, card_id, paid_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+paymentColumns,
		expense.ID, int(input.PaidAt.Month()), input.PaidAt.Year(), amount, input.Method, cardID, input.PaidAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return payment, change, ErrAlreadyPaid
		}
		return payment, change, mapWriteError(err)
	}

	switch input.Method {
	case models.PaymentMethodCash:
		account, err := lockChecking(ctx, tx)
		if err != nil {
			return payment, change, err
		}
		account, err = adjustChecking(ctx, tx, account.ID, -amount)
		if err != nil {
			return payment, change, err
		}
		change.Account = &account
	case models.PaymentMethodCard:
		if !input.AlreadyInBalance {
			card, err := addToOpenBalance(ctx, tx, *input.CardID, amount)
			if err != nil {
				return payment, change, err
			}
			change.Card = &card
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return payment, change, err
	}

	return payment, change, nil
}

// PaymentsForMonth возвращает оплаты постоянных расходов за месяц.
func (r *ExpenseRepository) PaymentsForMonth(ctx context.Context, month time.Month, year int) ([]models.ExpensePayment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+paymentColumns+`
		 FROM expense_payments
		 WHERE month = $1 AND year = $2
		 ORDER BY paid_at`,
		int(month), year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.ExpensePayment, 0)
	for rows.Next() {
		payment, err := scanExpensePayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

// PaidExpenseIDs возвращает множество расходов, оплаченных в указанном месяце.
func (r *ExpenseRepository) PaidExpenseIDs(ctx context.Context, month time.Month, year int) (map[uuid.UUID]bool, error) {
	payments, err := r.PaymentsForMonth(ctx, month, year)
	if err != nil {
		return nil, err
	}

	paid := make(map[uuid.UUID]bool, len(payments))
	for _, p := range payments {
		paid[p.ExpenseID] = true
	}
	return paid, nil
}

// AddVariable записывает переменный расход и обновляет баланс карты или расчетного счета.
func (r *ExpenseRepository) AddVariable(ctx context.Context, input VariableExpenseInput) (models.VariableExpense, BalanceChange, error) {
	var expense models.VariableExpense
	var change BalanceChange

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return expense, change, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	expense, change, err = insertVariable(ctx, tx, input)
	if err != nil {
		return expense, change, err
	}

	if err := tx.Commit(ctx); err != nil {
		return expense, change, err
	}

	return expense, change, nil
}

// DeleteVariable удаляет расход и возвращает деньги туда, откуда они были списаны.
func (r *ExpenseRepository) DeleteVariable(ctx context.Context, id uuid.UUID) (BalanceChange, error) {
	var change BalanceChange

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return change, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	expense, err := scanVariable(tx.QueryRow(ctx,
		`DELETE FROM variable_expenses WHERE id = $1 RETURNING `+variableColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return change, ErrNotFound
		}
		return change, err
	}

	if expense.CardID != nil {
		card, err := scanCard(tx.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, *expense.CardID))
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return change, err
		}
		if err == nil {
			closed, open := reverseCardCharge(card.ClosedBalanceCents, card.OpenBalanceCents, expense.AmountCents)
			card, err = scanCard(tx.QueryRow(ctx,
				`UPDATE cards
				 SET closed_balance_cents = $2, open_balance_cents = $3, updated_at = now()
				 WHERE id = $1
				 RETURNING `+cardColumns,
				card.ID, closed, open,
			))
			if err != nil {
				return change, err
			}
			change.Card = &card
		}
	} else {
		account, err := lockChecking(ctx, tx)
		if err != nil {
			return change, err
		}
		account, err = adjustChecking(ctx, tx, account.ID, expense.AmountCents)
		if err != nil {
			return change, err
		}
		change.Account = &account
	}

	if err := tx.Commit(ctx); err != nil {
		return change, err
	}

	return change, nil
}

// VariableBetween возвращает переменные расходы в интервале дат [from, to).
func (r *ExpenseRepository) VariableBetween(ctx context.Context, from, to time.Time) ([]models.VariableExpense, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+variableColumns+`
		 FROM variable_expenses
		 WHERE expense_date >= $1 AND expense_date < $2
		 ORDER BY expense_date, created_at`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.VariableExpense, 0)
	for rows.Next() {
		expense, err := scanVariable(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

func insertVariable(ctx context.Context, tx pgx.Tx, input VariableExpenseInput) (models.VariableExpense, BalanceChange, error) {
	var change BalanceChange

	if input.Description == "" || input.AmountCents <= 0 {
		return models.VariableExpense{}, change, ErrInvalid
	}

	expense, err := scanVariable(tx.QueryRow(ctx,
		`INSERT INTO variable_expenses (description, amount_cents, category, card_id, expense_date, recommendation_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+variableColumns,
		input.Description, input.AmountCents, categoryOrDefault(input.Category), input.CardID, input.ExpenseDate, input.RecommendationID,
	))
	if err != nil {
		return expense, change, mapWriteError(err)
	}

	if input.CardID != nil {
		card, err := addToOpenBalance(ctx, tx, *input.CardID, input.AmountCents)
		if err != nil {
			return expense, change, err
		}
		change.Card = &card
		return expense, change, nil
	}

	account, err := lockChecking(ctx, tx)
	if err != nil {
		return expense, change, err
	}
	account, err = adjustChecking(ctx, tx, account.ID, -input.AmountCents)
	if err != nil {
		return expense, change, err
	}
	change.Account = &account

	return expense, change, nil
}

// reverseCardCharge снимает сумму с открытого баланса, остаток с закрытого.
func reverseCardCharge(closed, open, amount int64) (int64, int64) {
	if open >= amount {
		return closed, open - amount
	}
	closed -= amount
	if closed < 0 {
		closed = 0
	}
	return closed, open
}

func (in FixedExpenseInput) validate() error {
	if in.Name == "" || in.AmountCents <= 0 || !validDay(in.DueDay) {
		return ErrInvalid
	}
	return nil
}

func categoryOrDefault(category string) string {
	if category == "" {
		return "other"
	}
	return category
}

func scanFixed(row pgx.Row) (models.FixedExpense, error) {
	var e models.FixedExpense
	err := row.Scan(&e.ID, &e.Name, &e.AmountCents, &e.DueDay, &e.Category, &e.Active, &e.CreatedAt)
	return e, err
}

func scanVariable(row pgx.Row) (models.VariableExpense, error) {
	var e models.VariableExpense
	err := row.Scan(&e.ID, &e.Description, &e.AmountCents, &e.Category, &e.CardID, &e.ExpenseDate, &e.RecommendationID, &e.CreatedAt)
	return e, err
}

func scanExpensePayment(row pgx.Row) (models.ExpensePayment, error) {
	var p models.ExpensePayment
	err := row.Scan(&p.ID, &p.ExpenseID, &p.Month, &p.Year, &p.AmountCents, &p.PaymentMethod, &p.CardID, &p.PaidAt)
	return p, err
}
