package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventRecordIncomeAdded  = "income_record_added"
	EventRecordExpenseAdded = "expense_record_added"
	EventBudgetSet          = "budget_set"
	EventGoalSet            = "goal_set"
)

// LedgerEvent is a persisted observable event. It carries only plaintext
// metadata (index, category/source, name, date); amounts are never stored
// or emitted in the clear.
type LedgerEvent struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AccountAddress string    `gorm:"type:varchar(64);index;not null" json:"account_address"`
	EventType      string    `gorm:"type:varchar(40);not null;index" json:"event_type"`
	RecordIndex    int       `gorm:"not null" json:"record_index"`
	Category       string    `gorm:"type:varchar(100)" json:"category,omitempty"`
	Source         string    `gorm:"type:varchar(100)" json:"source,omitempty"`
	Name           string    `gorm:"type:varchar(100)" json:"name,omitempty"`
	OccurredAt     time.Time `gorm:"not null" json:"occurred_at"`
	CreatedAt      time.Time `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate hook for LedgerEvent
func (e *LedgerEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}

// TableName returns the table name for LedgerEvent
func (e *LedgerEvent) TableName() string {
	return "ledger_events"
}

// IsValidEventType checks if the event type is one of the defined variants.
func IsValidEventType(eventType string) bool {
	switch eventType {
	case EventRecordIncomeAdded, EventRecordExpenseAdded, EventBudgetSet, EventGoalSet:
		return true
	default:
		return false
	}
}
