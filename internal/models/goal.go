package models

import (
	"errors"
	"time"
)

const (
	GoalTypeSavings    = "savings"
	GoalTypeExpenseCap = "expense_cap"
)

var (
	ErrInvalidGoalType = errors.New("invalid goal type")
)

// Goal is an append-only financial goal. A savings goal completes when
// net income reaches the target; an expense-cap goal is satisfied while
// total expenses stay at or below the target.
type Goal struct {
	Index    int       `json:"index"`
	Name     string    `json:"name"`
	Type     string    `json:"goal_type"`
	Target   Handle    `json:"target_handle"`
	Deadline time.Time `json:"deadline"`
	Note     string    `json:"note,omitempty"`
	Active   bool      `json:"active"`
}

// IsValidGoalType checks whether the goal type is one of the defined variants.
func IsValidGoalType(goalType string) bool {
	switch goalType {
	case GoalTypeSavings, GoalTypeExpenseCap:
		return true
	default:
		return false
	}
}
