package ledger

import (
	"cipherledger/internal/models"
)

// Read accessors. Every aggregate read returns the current handle for
// the slot, substituting the canonical zero handle when the slot was
// never initialized. Callers never receive an "uninitialized" sentinel
// distinct from encrypted zero.

// IncomeCount returns the number of income records for an account.
func (e *Engine) IncomeCount(account string) int {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.incomes)
}

// IncomeRecord returns the income record at an index.
func (e *Engine) IncomeRecord(account string, index int) (*models.IncomeRecord, error) {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()

	if index < 0 || index >= len(st.incomes) {
		return nil, ErrRecordNotFound
	}
	record := st.incomes[index]
	return &record, nil
}

// ExpenseCount returns the number of expense records for an account.
func (e *Engine) ExpenseCount(account string) int {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.expenses)
}

// ExpenseRecord returns the expense record at an index.
func (e *Engine) ExpenseRecord(account string, index int) (*models.ExpenseRecord, error) {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()

	if index < 0 || index >= len(st.expenses) {
		return nil, ErrRecordNotFound
	}
	record := st.expenses[index]
	return &record, nil
}

// TotalIncome returns the running total-income handle.
func (e *Engine) TotalIncome(account string) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.totalIncome)
}

// TotalExpense returns the running total-expense handle.
func (e *Engine) TotalExpense(account string) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.totalExpense)
}

// NetIncome returns the totalIncome - totalExpense handle.
func (e *Engine) NetIncome(account string) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.netIncome)
}

// CategoryIncome returns the per-source income aggregate handle.
func (e *Engine) CategoryIncome(account, source string) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.categoryIncome[source])
}

// CategoryExpense returns the per-category expense aggregate handle.
func (e *Engine) CategoryExpense(account, category string) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.categoryExpense[category])
}

// MonthlyIncome returns the income aggregate handle for a month bucket.
func (e *Engine) MonthlyIncome(account string, bucket int64) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.monthlyIncome[bucket])
}

// MonthlyExpense returns the expense aggregate handle for a month bucket.
func (e *Engine) MonthlyExpense(account string, bucket int64) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.monthlyExpense[bucket])
}

// Budget returns the live budget for a category, if any.
func (e *Engine) Budget(account, category string) (*models.Budget, bool) {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()

	budget, ok := st.budgets[category]
	if !ok {
		return nil, false
	}
	return &budget, true
}

// BudgetCategories returns the ordered category list for an account.
func (e *Engine) BudgetCategories(account string) []string {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]string, len(st.budgetCategories))
	copy(out, st.budgetCategories)
	return out
}

// BudgetRemaining returns the signed remaining-budget handle for a
// category. Uninitialized (no live budget) reads as encrypted zero.
func (e *Engine) BudgetRemaining(account, category string) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.budgetRemaining[category])
}

// BudgetOver returns the over-budget boolean handle for a category.
func (e *Engine) BudgetOver(account, category string) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.budgetOver[category])
}

// GoalCount returns the number of goals for an account.
func (e *Engine) GoalCount(account string) int {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.goals)
}

// Goal returns the goal at an index.
func (e *Engine) Goal(account string, index int) (*models.Goal, error) {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()

	if index < 0 || index >= len(st.goals) {
		return nil, ErrRecordNotFound
	}
	goal := st.goals[index]
	return &goal, nil
}

// GoalProgress returns the current-progress handle for a goal index.
func (e *Engine) GoalProgress(account string, index int) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.goalProgress[index])
}

// GoalCompleted returns the completion boolean handle for a goal index.
func (e *Engine) GoalCompleted(account string, index int) models.Handle {
	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()
	return normalizeSlot(st.goalCompleted[index])
}
