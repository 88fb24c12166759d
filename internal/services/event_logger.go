package services

import (
	"log/slog"
	"time"

	"cipherledger/internal/models"
	"cipherledger/internal/repositories"
)

// EventLogger is the engine's event sink: every observable ledger event
// is logged and journaled with plaintext metadata only. Persistence
// failures are logged and swallowed so a journal outage never blocks a
// ledger mutation.
type EventLogger struct {
	logger *slog.Logger
	repo   repositories.EventRepositoryInterface
}

// NewEventLogger creates an event sink. repo may be nil, in which case
// events are logged but not journaled.
func NewEventLogger(logger *slog.Logger, repo repositories.EventRepositoryInterface) *EventLogger {
	return &EventLogger{
		logger: logger,
		repo:   repo,
	}
}

func (el *EventLogger) IncomeRecorded(account string, index int, source string, date time.Time) {
	el.logger.Info("income recorded",
		slog.String("event_type", models.EventRecordIncomeAdded),
		slog.String("account", account),
		slog.Int("index", index),
		slog.String("source", source),
		slog.Time("date", date),
	)
	el.persist(&models.LedgerEvent{
		AccountAddress: account,
		EventType:      models.EventRecordIncomeAdded,
		RecordIndex:    index,
		Source:         source,
		OccurredAt:     date,
	})
}

func (el *EventLogger) ExpenseRecorded(account string, index int, category string, date time.Time) {
	el.logger.Info("expense recorded",
		slog.String("event_type", models.EventRecordExpenseAdded),
		slog.String("account", account),
		slog.Int("index", index),
		slog.String("category", category),
		slog.Time("date", date),
	)
	el.persist(&models.LedgerEvent{
		AccountAddress: account,
		EventType:      models.EventRecordExpenseAdded,
		RecordIndex:    index,
		Category:       category,
		OccurredAt:     date,
	})
}

func (el *EventLogger) BudgetSet(account, category, period string, startDate time.Time) {
	el.logger.Info("budget set",
		slog.String("event_type", models.EventBudgetSet),
		slog.String("account", account),
		slog.String("category", category),
		slog.String("period", period),
		slog.Time("start_date", startDate),
	)
	el.persist(&models.LedgerEvent{
		AccountAddress: account,
		EventType:      models.EventBudgetSet,
		Category:       category,
		OccurredAt:     startDate,
	})
}

func (el *EventLogger) GoalSet(account string, index int, name, goalType string, deadline time.Time) {
	el.logger.Info("goal set",
		slog.String("event_type", models.EventGoalSet),
		slog.String("account", account),
		slog.Int("index", index),
		slog.String("name", name),
		slog.String("goal_type", goalType),
		slog.Time("deadline", deadline),
	)
	el.persist(&models.LedgerEvent{
		AccountAddress: account,
		EventType:      models.EventGoalSet,
		RecordIndex:    index,
		Name:           name,
		OccurredAt:     deadline,
	})
}

func (el *EventLogger) persist(event *models.LedgerEvent) {
	if el.repo == nil {
		return
	}
	if err := el.repo.Create(event); err != nil {
		el.logger.Warn("event journal write failed",
			slog.String("event_type", event.EventType),
			slog.String("account", event.AccountAddress),
			slog.String("error", err.Error()),
		)
	}
}
