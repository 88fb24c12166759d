package models

import "time"

// IncomeRecord is an append-only income entry. The amount is referenced
// by handle only; source, date and note are plaintext metadata.
type IncomeRecord struct {
	Index  int       `json:"index"`
	Amount Handle    `json:"amount_handle"`
	Source string    `json:"source"`
	Date   time.Time `json:"date"`
	Note   string    `json:"note,omitempty"`
}

// ExpenseRecord is an append-only expense entry, symmetric to income
// with a category in place of a source.
type ExpenseRecord struct {
	Index    int       `json:"index"`
	Amount   Handle    `json:"amount_handle"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Note     string    `json:"note,omitempty"`
}
