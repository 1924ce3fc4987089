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

const cardColumns = `id, name, closing_day, payment_due_day, credit_limit_cents, closed_balance_cents,
	open_balance_cents, manual_payment_date, apr, last_closed_on, created_at, updated_at`

type CardRepository struct {
	db *pgxpool.Pool
}

type CardInput struct {
	Name              string
	ClosingDay        int
	PaymentDueDay     int
	CreditLimitCents  int64
	ClosedBalance     int64
	OpenBalance       int64
	ManualPaymentDate *time.Time
	APR               float64

	// LastClosedOn задается только при создании: закрытый баланс карты уже учитывает этот цикл.
	LastClosedOn *time.Time
}

// CardPaymentResult содержит новые балансы карты и расчетного счета после оплаты.
type CardPaymentResult struct {
	Card    models.Card
	Account models.Account
	Payment models.CardPayment
}

// NewCardRepository создает репозиторий кредитных карт.
func NewCardRepository(db *pgxpool.Pool) *CardRepository {
	return &CardRepository{db: db}
}

// List возвращает все карты по имени.
func (r *CardRepository) List(ctx context.Context) ([]models.Card, error) {
	rows, err := r.db.Query(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]models.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

// Get возвращает карту по идентификатору.
func (r *CardRepository) Get(ctx context.Context, id uuid.UUID) (models.Card, error) {
	card, err := scanCard(r.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return card, ErrNotFound
		}
		return card, err
	}
	return card, nil
}

// Create добавляет карту. Имя карты уникально.
func (r *CardRepository) Create(ctx context.Context, input CardInput) (models.Card, error) {
	if err := input.validate(); err != nil {
		return models.Card{}, err
	}

	card, err := scanCard(r.db.QueryRow(ctx,
		`INSERT INTO cards (name, closing_day, payment_due_day, credit_limit_cents, closed_balance_cents,
		                    open_balance_cents, manual_payment_date, apr, last_closed_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+cardColumns,
		input.Name, input.ClosingDay, input.PaymentDueDay, input.CreditLimitCents,
		input.ClosedBalance, input.OpenBalance, input.ManualPaymentDate, input.APR, input.LastClosedOn,
	))
	if err != nil {
		return card, mapWriteError(err)
	}

	return card, nil
}

// Update перезаписывает параметры и балансы карты.
func (r *CardRepository) Update(ctx context.Context, id uuid.UUID, input CardInput) (models.Card, error) {
	if err := input.validate(); err != nil {
		return models.Card{}, err
	}

	card, err := scanCard(r.db.QueryRow(ctx,
		`UPDATE cards
		 SET name = $2, closing_day = $3, payment_due_day = $4, credit_limit_cents = $5,
		     closed_balance_cents = $6, open_balance_cents = $7, manual_payment_date = $8,
		     apr = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING `+cardColumns,
		id, input.Name, input.ClosingDay, input.PaymentDueDay, input.CreditLimitCents,
		input.ClosedBalance, input.OpenBalance, input.ManualPaymentDate, input.APR,
	))
	if err != nil {
		return card, mapWriteError(err)
	}

	return card, nil
}

// Delete удаляет карту.
func (r *CardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Pay гасит долг по карте с расчетного счета: сначала закрытая выписка, затем открытая.
func (r *CardRepository) Pay(ctx context.Context, id uuid.UUID, amountCents int64) (CardPaymentResult, error) {
	var result CardPaymentResult

	if amountCents <= 0 {
		return result, ErrInvalid
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	card, err := scanCard(tx.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return result, ErrNotFound
		}
		return result, err
	}

	account, err := lockChecking(ctx, tx)
	if err != nil {
		return result, err
	}
	if account.BalanceCents < amountCents {
		return result, ErrInsufficientFunds
	}

	closed, open := ApplyCardPayment(card.ClosedBalanceCents, card.OpenBalanceCents, amountCents)

	card, err = scanCard(tx.QueryRow(ctx,
		`UPDATE cards
		 SET closed_balance_cents = $2, open_balance_cents = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+cardColumns,
		id, closed, open,
	))
	if err != nil {
		return result, err
	}

	account, err = adjustChecking(ctx, tx, account.ID, -amountCents)
	if err != nil {
		return result, err
	}

	var payment models.CardPayment
	err = tx.QueryRow(ctx,
		`INSERT INTO card_payments (card_id, amount_cents)
		 VALUES ($1, $2)
		 RETURNING id, card_id, amount_cents, paid_at`,
		id, amountCents,
	).Scan(&payment.ID, &payment.CardID, &payment.AmountCents, &payment.PaidAt)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(ctx); err != nil {
		return result, err
	}

	result.Card = card
	result.Account = account
	result.Payment = payment
	return result, nil
}

// CloseStatement переносит открытый баланс в закрытую выписку цикла, закрывшегося closedOn,
// и запоминает эту дату. Повторный перенос того же или более раннего цикла дает ErrStatementClosed.
func (r *CardRepository) CloseStatement(ctx context.Context, id uuid.UUID, closedOn time.Time) (models.Card, error) {
	card, err := scanCard(r.db.QueryRow(ctx,
		`UPDATE cards
		 SET closed_balance_cents = closed_balance_cents + open_balance_cents,
		     open_balance_cents = 0,
		     manual_payment_date = NULL,
		     last_closed_on = $2,
		     updated_at = now()
		 WHERE id = $1 AND (last_closed_on IS NULL OR last_closed_on < $2)
		 RETURNING `+cardColumns,
		id, closedOn,
	))
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return card, err
	}

	return card, r.closeMiss(ctx, id)
}

// MarkStatementClosed запоминает дату закрытия без переноса балансов.
func (r *CardRepository) MarkStatementClosed(ctx context.Context, id uuid.UUID, closedOn time.Time) (models.Card, error) {
	card, err := scanCard(r.db.QueryRow(ctx,
		`UPDATE cards
		 SET last_closed_on = $2
		 WHERE id = $1 AND (last_closed_on IS NULL OR last_closed_on < $2)
		 RETURNING `+cardColumns,
		id, closedOn,
	))
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return card, err
	}

	return card, r.closeMiss(ctx, id)
}

func (r *CardRepository) closeMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cards WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatementClosed
}

// ApplyCardPayment распределяет платеж: сначала закрытая выписка, остаток в открытую.
// Переплата сверх обоих балансов не переносится.
func ApplyCardPayment(closed, open, amount int64) (int64, int64) {
	remaining := amount

	if closed > 0 {
		if remaining >= closed {
			remaining -= closed
			closed = 0
		} else {
			closed -= remaining
			remaining = 0
		}
	}

	if remaining > 0 && open > 0 {
		if remaining >= open {
			open = 0
		} else {
			open -= remaining
		}
	}

	return closed, open
}

func (in CardInput) validate() error {
	if in.Name == "" || !validDay(in.ClosingDay) || !validDay(in.PaymentDueDay) {
		return ErrInvalid
	}
	if in.CreditLimitCents < 0 || in.ClosedBalance < 0 || in.OpenBalance < 0 || in.APR < 0 {
		return ErrInvalid
	}
	return nil
}

func scanCard(row pgx.Row) (models.Card, error) {
	var card models.Card
	err := row.Scan(&card.ID, &card.Name, &card.ClosingDay, &card.PaymentDueDay, &card.CreditLimitCents,
		&card.ClosedBalanceCents, &card.OpenBalanceCents, &card.ManualPaymentDate, &card.APR,
		&card.LastClosedOn, &card.CreatedAt, &card.UpdatedAt)
	return card, err
}

func mapWriteError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrConflict
		case "23514", "23503":
			return ErrInvalid
		}
	}
	return err
}

func lockChecking(ctx context.Context, tx pgx.Tx) (models.Account, error) {
	var account models.Account
	err := tx.QueryRow(ctx,
		`SELECT id, name, balance_cents, updated_at
		 FROM accounts
		 ORDER BY updated_at
		 LIMIT 1
		 FOR UPDATE`,
	).Scan(&account.ID, &account.Name, &account.BalanceCents, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx,
			`INSERT INTO accounts (name, balance_cents)
			 VALUES ('Checking', 0)
			 RETURNING id, name, balance_cents, updated_at`,
		).Scan(&account.ID, &account.Name, &account.BalanceCents, &account.UpdatedAt)
	}
	return account, err
}

func adjustChecking(ctx context.Context, tx pgx.Tx, id uuid.UUID, deltaCents int64) (models.Account, error) {
	var account models.Account
	err := tx.QueryRow(ctx,
		`UPDATE accounts
		 SET balance_cents = balance_cents + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, balance_cents, updated_at`,
		id, deltaCents,
	).Scan(&account.ID, &account.Name, &account.BalanceCents, &account.UpdatedAt)
	return account, err
}

func addToOpenBalance(ctx context.Context, tx pgx.Tx, cardID uuid.UUID, amountCents int64) (models.Card, error) {
	card, err := scanCard(tx.QueryRow(ctx,
		`UPDATE cards
		 SET open_balance_cents = open_balance_cents + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+cardColumns,
		cardID, amountCents,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return card, ErrNotFound
	}
	return card, err
}
