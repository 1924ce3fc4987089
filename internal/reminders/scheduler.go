package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"example.com/card-planner/backend/internal/config"
	"example.com/card-planner/backend/internal/models"
	"example.com/card-planner/backend/internal/notifications"
	"example.com/card-planner/backend/internal/planner"
	"example.com/card-planner/backend/internal/repository"
)

type CardStore interface {
	List(ctx context.Context) ([]models.Card, error)
	CloseStatement(ctx context.Context, id uuid.UUID, closedOn time.Time) (models.Card, error)
	MarkStatementClosed(ctx context.Context, id uuid.UUID, closedOn time.Time) (models.Card, error)
}

type Publisher interface {
	Publish(event notifications.Event)
}

// PaymentDue передается в событии card_payment_due.
type PaymentDue struct {
	CardID    uuid.UUID `json:"card_id"`
	CardName  string    `json:"card_name"`
	Amount    float64   `json:"amount"`
	DueDate   string    `json:"due_date"`
	DaysUntil int       `json:"days_until"`
}

type Summary struct {
	Closed   int
	Reminded int
}

// Scheduler по расписанию закрывает циклы карт и напоминает о близких платежах.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	horizon   int
	location  *time.Location
	cards     CardStore
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// New создает планировщик напоминаний. Запуск выполняется через Start.
func New(cfg config.PlannerConfig, cards CardStore, publisher Publisher, logger *slog.Logger) *Scheduler {
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		spec:      cfg.ReminderSpec,
		horizon:   cfg.ReminderHorizonDays,
		location:  location,
		cards:     cards,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Start регистрирует задачу и запускает cron.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return fmt.Errorf("register reminder job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", slog.String("spec", s.spec), slog.Int("horizon_days", s.horizon))
	return nil
}

// Stop останавливает cron и ждет завершения текущего запуска.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("reminder job did not finish before shutdown")
	}
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	summary, err := s.Run(ctx, s.now().In(s.location))
	if err != nil {
		s.logger.Error("reminder job failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("reminder job finished",
		slog.Int("statements_closed", summary.Closed),
		slog.Int("reminders_sent", summary.Reminded),
	)
}

// Run выполняет один проход: переносит открытый баланс в выписку, если с последнего переноса
// закрылся новый цикл, и публикует card_payment_due для неоплаченных выписок в пределах горизонта.
// Пропущенные запуски догоняются на следующем проходе.
func (s *Scheduler) Run(ctx context.Context, now time.Time) (Summary, error) {
	var summary Summary
	today := planner.DateOnly(now)
	yesterday := today.AddDate(0, 0, -1)

	cards, err := s.cards.List(ctx)
	if err != nil {
		return summary, fmt.Errorf("list cards: %w", err)
	}

	for _, card := range cards {
		statement := planner.CardStatement(card.PlannerAccount(), today)

		switch planRollover(card, statement.PreviousClose, yesterday) {
		case rolloverClose:
			closed, err := s.cards.CloseStatement(ctx, card.ID, statement.PreviousClose)
			if err != nil {
				s.logRolloverError(card, err)
				continue
			}
			summary.Closed++
			card = closed
			statement = planner.CardStatement(card.PlannerAccount(), today)
		case rolloverMark:
			if _, err := s.cards.MarkStatementClosed(ctx, card.ID, statement.PreviousClose); err != nil {
				s.logRolloverError(card, err)
			}
		}

		if statement.ClosedStatus != planner.StatementPending {
			continue
		}
		days := statement.DaysUntilPreviousPayment
		if days < 0 || days > s.horizon {
			continue
		}

		s.publisher.Publish(notifications.Event{
			Type: notifications.EventCardPaymentDue,
			Data: PaymentDue{
				CardID:    card.ID,
				CardName:  card.Name,
				Amount:    planner.Round2(statement.ClosedBalance),
				DueDate:   statement.PreviousPaymentDate.Format(time.DateOnly),
				DaysUntil: days,
			},
		})
		summary.Reminded++
	}

	return summary, nil
}

type rollover int

const (
	rolloverNone rollover = iota
	rolloverMark
	rolloverClose
)

// planRollover решает, что делать с циклом, закрывшимся previousClose.
// Карта без даты последнего закрытия считается учтенной по всем циклам, кроме вчерашнего.
func planRollover(card models.Card, previousClose, yesterday time.Time) rollover {
	if card.LastClosedOn != nil {
		y, m, d := card.LastClosedOn.Date()
		lastClosed := time.Date(y, m, d, 0, 0, 0, 0, previousClose.Location())
		if !previousClose.After(lastClosed) {
			return rolloverNone
		}
	} else if !previousClose.Equal(yesterday) {
		return rolloverMark
	}

	if card.OpenBalanceCents <= 0 {
		return rolloverMark
	}
	return rolloverClose
}

func (s *Scheduler) logRolloverError(card models.Card, err error) {
	if errors.Is(err, repository.ErrStatementClosed) {
		s.logger.Info("statement already closed", slog.String("card_id", card.ID.String()))
		return
	}
	s.logger.Error("close statement failed",
		slog.String("card_id", card.ID.String()),
		slog.String("error", err.Error()),
	)
}
