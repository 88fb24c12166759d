package client

import (
	"sort"
	"time"
)

// DecodedRecord is one record after decryption: plaintext amount in
// minor units plus the record's public metadata.
type DecodedRecord struct {
	Amount int64
	Label  string
	Date   time.Time
}

// MonthlyFlow is the per-calendar-month income/expense/net view.
type MonthlyFlow struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Income  int64      `json:"income"`
	Expense int64      `json:"expense"`
	Net     int64      `json:"net"`
}

// CategoryTotal is one category or source with its folded total.
type CategoryTotal struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

// BudgetView is the decrypted budget state for one category.
type BudgetView struct {
	Category  string    `json:"category"`
	Period    string    `json:"period"`
	StartDate time.Time `json:"start_date"`
	Remaining int64     `json:"remaining"`
	Over      bool      `json:"over"`
}

// GoalView is the decrypted progress state for one goal.
type GoalView struct {
	Index     int       `json:"index"`
	Name      string    `json:"name"`
	Type      string    `json:"goal_type"`
	Target    int64     `json:"target"`
	Progress  int64     `json:"progress"`
	Completed bool      `json:"completed"`
	Deadline  time.Time `json:"deadline"`
}

// Views is the full account-level picture assembled from one refresh.
type Views struct {
	TotalIncome  int64   `json:"total_income"`
	TotalExpense int64   `json:"total_expense"`
	NetIncome    int64   `json:"net_income"`
	SavingsRate  float64 `json:"savings_rate"`

	Monthly           []MonthlyFlow   `json:"monthly"`
	IncomeBySource    []CategoryTotal `json:"income_by_source"`
	ExpenseByCategory []CategoryTotal `json:"expense_by_category"`
	Budgets           []BudgetView    `json:"budgets"`
	Goals             []GoalView      `json:"goals"`
}

type monthKey struct {
	year  int
	month time.Month
}

// FoldMonthly groups decoded records into calendar-month buckets
// (year + month of each record's timestamp) and returns them
// month-ordered. Grouping is exact; no timezone normalization happens
// beyond the record's own location.
func FoldMonthly(incomes, expenses []DecodedRecord) []MonthlyFlow {
	flows := make(map[monthKey]*MonthlyFlow)

	bucket := func(r DecodedRecord) *MonthlyFlow {
		key := monthKey{year: r.Date.Year(), month: r.Date.Month()}
		f, ok := flows[key]
		if !ok {
			f = &MonthlyFlow{Year: key.year, Month: key.month}
			flows[key] = f
		}
		return f
	}

	for _, r := range incomes {
		bucket(r).Income += r.Amount
	}
	for _, r := range expenses {
		bucket(r).Expense += r.Amount
	}

	out := make([]MonthlyFlow, 0, len(flows))
	for _, f := range flows {
		f.Net = f.Income - f.Expense
		out = append(out, *f)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// FoldCategories groups decoded records by exact label match, with no
// case folding or trimming, and returns totals ordered by magnitude,
// then name for determinism.
func FoldCategories(records []DecodedRecord) []CategoryTotal {
	totals := make(map[string]int64)
	for _, r := range records {
		totals[r.Label] += r.Amount
	}

	out := make([]CategoryTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, CategoryTotal{Name: name, Total: total})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SavingsRate computes net/total income as a percentage on decrypted
// values. Division is not a homomorphic operation in this design, so the
// engine hands back both operands and the trusted client divides.
func SavingsRate(netIncome, totalIncome int64) float64 {
	if totalIncome == 0 {
		return 0
	}
	return float64(netIncome) / float64(totalIncome) * 100
}
