package models

import (
	"errors"
	"time"
)

const (
	BudgetPeriodWeekly  = "weekly"
	BudgetPeriodMonthly = "monthly"
	BudgetPeriodYearly  = "yearly"
)

var (
	ErrInvalidBudgetPeriod = errors.New("invalid budget period")
)

// Budget is the live spending limit for one (account, category) pair.
// Re-setting a category replaces the previous budget and marks it active.
type Budget struct {
	Amount    Handle    `json:"amount_handle"`
	Category  string    `json:"category"`
	Period    string    `json:"period"`
	StartDate time.Time `json:"start_date"`
	Active    bool      `json:"active"`
}

// IsValidBudgetPeriod checks whether the period is one of the defined variants.
func IsValidBudgetPeriod(period string) bool {
	switch period {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	default:
		return false
	}
}
