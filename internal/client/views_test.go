package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestFoldMonthly_CalendarBuckets(t *testing.T) {
	incomes := []DecodedRecord{
		{Amount: 300000, Label: "salary", Date: date(2026, time.January, 5)},
		{Amount: 50000, Label: "freelance", Date: date(2026, time.January, 28)},
		{Amount: 300000, Label: "salary", Date: date(2026, time.February, 5)},
	}
	expenses := []DecodedRecord{
		{Amount: 120000, Label: "rent", Date: date(2026, time.January, 1)},
		{Amount: 130000, Label: "rent", Date: date(2026, time.March, 1)},
	}

	flows := FoldMonthly(incomes, expenses)
	assert.Len(t, flows, 3)

	assert.Equal(t, MonthlyFlow{Year: 2026, Month: time.January, Income: 350000, Expense: 120000, Net: 230000}, flows[0])
	assert.Equal(t, MonthlyFlow{Year: 2026, Month: time.February, Income: 300000, Net: 300000}, flows[1])
	assert.Equal(t, MonthlyFlow{Year: 2026, Month: time.March, Expense: 130000, Net: -130000}, flows[2])
}

func TestFoldMonthly_OrderedAcrossYears(t *testing.T) {
	incomes := []DecodedRecord{
		{Amount: 1, Date: date(2026, time.January, 1)},
		{Amount: 2, Date: date(2025, time.December, 31)},
	}

	flows := FoldMonthly(incomes, nil)
	assert.Len(t, flows, 2)
	assert.Equal(t, 2025, flows[0].Year)
	assert.Equal(t, 2026, flows[1].Year)
}

func TestFoldMonthly_Empty(t *testing.T) {
	assert.Empty(t, FoldMonthly(nil, nil))
}

func TestFoldCategories_ExactLabelMatch(t *testing.T) {
	records := []DecodedRecord{
		{Amount: 100, Label: "Groceries"},
		{Amount: 200, Label: "groceries"},
		{Amount: 50, Label: "Groceries"},
	}

	totals := FoldCategories(records)
	assert.Len(t, totals, 2, "labels differing only in case stay separate")
	assert.Equal(t, CategoryTotal{Name: "groceries", Total: 200}, totals[0])
	assert.Equal(t, CategoryTotal{Name: "Groceries", Total: 150}, totals[1])
}

func TestFoldCategories_OrderedByMagnitudeThenName(t *testing.T) {
	records := []DecodedRecord{
		{Amount: 100, Label: "b"},
		{Amount: 100, Label: "a"},
		{Amount: 300, Label: "c"},
	}

	totals := FoldCategories(records)
	assert.Equal(t, []CategoryTotal{
		{Name: "c", Total: 300},
		{Name: "a", Total: 100},
		{Name: "b", Total: 100},
	}, totals)
}

func TestSavingsRate(t *testing.T) {
	assert.InDelta(t, 25.0, SavingsRate(25000, 100000), 1e-9)
	assert.InDelta(t, -10.0, SavingsRate(-10000, 100000), 1e-9)
	assert.Zero(t, SavingsRate(50000, 0), "undefined rate collapses to zero")
}
