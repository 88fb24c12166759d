package repositories

import (
	"errors"
	"fmt"

	"cipherledger/internal/models"

	"gorm.io/gorm"
)

// EventRepository handles database operations for the ledger event
// journal.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepositoryInterface {
	return &EventRepository{
		db: db,
	}
}

// Create appends an event to the journal.
func (r *EventRepository) Create(event *models.LedgerEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	if !models.IsValidEventType(event.EventType) {
		return fmt.Errorf("invalid event type %q", event.EventType)
	}

	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create ledger event: %w", err)
	}

	return nil
}

// ListByAccount returns a page of events for one account, newest first,
// together with the total count.
func (r *EventRepository) ListByAccount(accountAddress string, offset, limit int) ([]*models.LedgerEvent, int64, error) {
	var events []*models.LedgerEvent
	var total int64

	query := r.db.Model(&models.LedgerEvent{}).Where("account_address = ?", accountAddress)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger events: %w", err)
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ledger events: %w", err)
	}

	return events, total, nil
}
