package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/card-planner/backend/internal/models"
)

// AccountRepository хранит расчетный и сберегательный счета, график дохода и цель сбережений.
// Все эти таблицы содержат не больше одной строки.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository создает репозиторий счетов.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// Checking возвращает расчетный счет, создавая его с нулевым балансом при первом обращении.
func (r *AccountRepository) Checking(ctx context.Context) (models.Account, error) {
	var account models.Account

	err := r.db.QueryRow(ctx,
		`WITH inserted AS (
			INSERT INTO accounts (name, balance_cents)
			SELECT 'Checking', 0
			WHERE NOT EXISTS (SELECT 1 FROM accounts)
			RETURNING id, name, balance_cents, updated_at
		 )
		 SELECT id, name, balance_cents, updated_at FROM inserted
		 UNION ALL
		 SELECT id, name, balance_cents, updated_at FROM accounts
		 ORDER BY updated_at
		 LIMIT 1`,
	).Scan(&account.ID, &account.Name, &account.BalanceCents, &account.UpdatedAt)

	return account, err
}

// SetCheckingBalance задает баланс расчетного счета вручную.
func (r *AccountRepository) SetCheckingBalance(ctx context.Context, balanceCents int64) (models.Account, error) {
	current, err := r.Checking(ctx)
	if err != nil {
		return current, err
	}

	var account models.Account
	err = r.db.QueryRow(ctx,
		`UPDATE accounts
		 SET balance_cents = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, balance_cents, updated_at`,
		current.ID, balanceCents,
	).Scan(&account.ID, &account.Name, &account.BalanceCents, &account.UpdatedAt)

	return account, err
}

// Savings возвращает сберегательный счет, создавая его при первом обращении.
func (r *AccountRepository) Savings(ctx context.Context) (models.SavingsAccount, error) {
	var savings models.SavingsAccount

	err := r.db.QueryRow(ctx,
		`WITH inserted AS (
			INSERT INTO savings_accounts (name, balance_cents, target_cents)
			SELECT 'Savings', 0, 0
			WHERE NOT EXISTS (SELECT 1 FROM savings_accounts)
			RETURNING id, name, balance_cents, target_cents, updated_at
		 )
		 SELECT id, name, balance_cents, target_cents, updated_at FROM inserted
		 UNION ALL
		 SELECT id, name, balance_cents, target_cents, updated_at FROM savings_accounts
		 ORDER BY updated_at
		 LIMIT 1`,
	).Scan(&savings.ID, &savings.Name, &savings.BalanceCents, &savings.TargetCents, &savings.UpdatedAt)

	return savings, err
}

// TransferToSavings переводит деньги с расчетного счета на сберегательный в одной транзакции.
func (r *AccountRepository) TransferToSavings(ctx context.Context, amountCents int64) (models.Account, models.SavingsAccount, error) {
	var account models.Account
	var savings models.SavingsAccount

	if amountCents <= 0 {
		return account, savings, ErrInvalid
	}

	if _, err := r.Savings(ctx); err != nil {
		return account, savings, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return account, savings, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	account, err = lockChecking(ctx, tx)
	if err != nil {
		return account, savings, err
	}

	if account.BalanceCents < amountCents {
		return account, savings, ErrInsufficientFunds
	}

	account, err = adjustChecking(ctx, tx, account.ID, -amountCents)
	if err != nil {
		return account, savings, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE savings_accounts
		 SET balance_cents = balance_cents + $1, updated_at = now()
		 WHERE id = (SELECT id FROM savings_accounts ORDER BY updated_at LIMIT 1)
		 RETURNING id, name, balance_cents, target_cents, updated_at`,
		amountCents,
	).Scan(&savings.ID, &savings.Name, &savings.BalanceCents, &savings.TargetCents, &savings.UpdatedAt)
	if err != nil {
		return account, savings, err
	}

	if err := tx.Commit(ctx); err != nil {
		return account, savings, err
	}

	return account, savings, nil
}

// IncomeSchedule возвращает график зарплат или ErrNotFound, если он не настроен.
func (r *AccountRepository) IncomeSchedule(ctx context.Context) (models.IncomeSchedule, error) {
	var income models.IncomeSchedule

	err := r.db.QueryRow(ctx,
		`SELECT id, amount_cents, first_paycheck_day, second_paycheck_day, updated_at
		 FROM income_schedules
		 ORDER BY updated_at DESC
		 LIMIT 1`,
	).Scan(&income.ID, &income.AmountCents, &income.FirstPaycheckDay, &income.SecondPaycheckDay, &income.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return income, ErrNotFound
		}
		return income, err
	}

	return income, nil
}

// UpsertIncomeSchedule сохраняет график зарплат.
func (r *AccountRepository) UpsertIncomeSchedule(ctx context.Context, amountCents int64, firstDay, secondDay int) (models.IncomeSchedule, error) {
	var income models.IncomeSchedule

	if amountCents <= 0 || !validDay(firstDay) || !validDay(secondDay) {
		return income, ErrInvalid
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return income, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`UPDATE income_schedules
		 SET amount_cents = $1, first_paycheck_day = $2, second_paycheck_day = $3, updated_at = now()
		 WHERE id = (SELECT id FROM income_schedules ORDER BY updated_at DESC LIMIT 1)
		 RETURNING id, amount_cents, first_paycheck_day, second_paycheck_day, updated_at`,
		amountCents, firstDay, secondDay,
	).Scan(&income.ID, &income.AmountCents, &income.FirstPaycheckDay, &income.SecondPaycheckDay, &income.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx,
			`INSERT INTO income_schedules (amount_cents, first_paycheck_day, second_paycheck_day)
			 VALUES ($1, $2, $3)
			 RETURNING id, amount_cents, first_paycheck_day, second_paycheck_day, updated_at`,
			amountCents, firstDay, secondDay,
		).Scan(&income.ID, &income.AmountCents, &income.FirstPaycheckDay, &income.SecondPaycheckDay, &income.UpdatedAt)
	}
	if err != nil {
		return income, err
	}

	if err := tx.Commit(ctx); err != nil {
		return income, err
	}

	return income, nil
}

// SavingsGoal возвращает цель сбережений или ErrNotFound.
func (r *AccountRepository) SavingsGoal(ctx context.Context) (models.SavingsGoal, error) {
	var goal models.SavingsGoal

	err := r.db.QueryRow(ctx,
		`SELECT id, amount_per_paycheck_cents, min_balance_comfort_cents, variable_expenses_monthly_cents, updated_at
		 FROM savings_goals
		 ORDER BY updated_at DESC
		 LIMIT 1`,
	).Scan(&goal.ID, &goal.AmountPerPaycheckCents, &goal.MinBalanceComfortCents, &goal.VariableExpensesMonthlyCents, &goal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return goal, ErrNotFound
		}
		return goal, err
	}

	return goal, nil
}

// UpsertSavingsGoal сохраняет цель сбережений.
func (r *AccountRepository) UpsertSavingsGoal(ctx context.Context, perPaycheckCents, minComfortCents, variableMonthlyCents int64) (models.SavingsGoal, error) {
	var goal models.SavingsGoal

	if perPaycheckCents < 0 || minComfortCents < 0 || variableMonthlyCents < 0 {
		return goal, ErrInvalid
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return goal, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`UPDATE savings_goals
		 SET amount_per_paycheck_cents = $1, min_balance_comfort_cents = $2,
		     variable_expenses_monthly_cents = $3, updated_at = now()
		 WHERE id = (SELECT id FROM savings_goals ORDER BY updated_at DESC LIMIT 1)
		 RETURNING id, amount_per_paycheck_cents, min_balance_comfort_cents, variable_expenses_monthly_cents, updated_at`,
		perPaycheckCents, minComfortCents, variableMonthlyCents,
	).Scan(&goal.ID, &goal.AmountPerPaycheckCents, &goal.MinBalanceComfortCents, &goal.VariableExpensesMonthlyCents, &goal.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx,
			`INSERT INTO savings_goals (amount_per_paycheck_cents, min_balance_comfort_cents, variable_expenses_monthly_cents)
			 VALUES ($1, $2, $3)
			 RETURNING id, amount_per_paycheck_cents, min_balance_comfort_cents, variable_expenses_monthly_cents, updated_at`,
			perPaycheckCents, minComfortCents, variableMonthlyCents,
		).Scan(&goal.ID, &goal.AmountPerPaycheckCents, &goal.MinBalanceComfortCents, &goal.VariableExpensesMonthlyCents, &goal.UpdatedAt)
	}
	if err != nil {
		return goal, err
	}

	if err := tx.Commit(ctx); err != nil {
		return goal, err
	}

	return goal, nil
}

func validDay(day int) bool {
	return day >= 1 && day <= 31
}
