package ledger

import (
	"fmt"

	"cipherledger/internal/models"
)

// Derived-state recomputation. Invoked synchronously after every
// mutation that could affect the derived slots, never lazily.

// recomputeNet replaces the net-income handle with
// subtract(totalIncome, totalExpense). Caller holds st.mu.
func (e *Engine) recomputeNet(st *accountState, account string) error {
	net, err := e.env.Sub(normalizeSlot(st.totalIncome), normalizeSlot(st.totalExpense))
	if err != nil {
		return fmt.Errorf("net income recomputation failed: %w", err)
	}

	st.netIncome = slot{handle: net, initialized: true}
	e.grantOwner(account, net)
	return nil
}

// recomputeBudget refreshes remaining + over-budget for one category.
// An inactive or absent budget yields an inert false comparison and an
// uninitialized remaining slot, so reads fall back to encrypted zero;
// "no budget" and "budget of zero" are indistinguishable at the read
// layer. Caller holds st.mu.
func (e *Engine) recomputeBudget(st *accountState, account, category string) error {
	budget, ok := st.budgets[category]
	if !ok || !budget.Active {
		over, err := e.env.EncryptBool(false)
		if err != nil {
			return fmt.Errorf("budget recomputation failed: %w", err)
		}

		st.budgetRemaining[category] = slot{}
		st.budgetOver[category] = slot{handle: over, initialized: true}
		e.grantOwner(account, over)
		return nil
	}

	spent := normalizeSlot(st.categoryExpense[category])

	remaining, err := e.env.Sub(budget.Amount, spent)
	if err != nil {
		return fmt.Errorf("budget remaining recomputation failed: %w", err)
	}
	over, err := e.env.Gt(spent, budget.Amount)
	if err != nil {
		return fmt.Errorf("over-budget recomputation failed: %w", err)
	}

	st.budgetRemaining[category] = slot{handle: remaining, initialized: true}
	st.budgetOver[category] = slot{handle: over, initialized: true}
	e.grantOwner(account, remaining, over)
	return nil
}

// recomputeGoals refreshes progress and completion for every active
// goal. This is a full O(active goals) scan per mutation, not an
// incremental update; it bounds practical goal counts per account.
// Caller holds st.mu.
func (e *Engine) recomputeGoals(st *accountState, account string) error {
	for i := range st.goals {
		goal := st.goals[i]
		if !goal.Active {
			continue
		}

		var current models.Handle
		var completed models.Handle
		var err error

		switch goal.Type {
		case models.GoalTypeSavings:
			current = e.savingsProgress(st)
			completed, err = e.env.Ge(current, goal.Target)
		case models.GoalTypeExpenseCap:
			current = normalizeSlot(st.totalExpense)
			completed, err = e.env.Le(current, goal.Target)
		default:
			return models.ErrInvalidGoalType
		}
		if err != nil {
			return fmt.Errorf("goal recomputation failed for index %d: %w", goal.Index, err)
		}

		st.goalProgress[goal.Index] = slot{handle: current, initialized: true}
		st.goalCompleted[goal.Index] = slot{handle: completed, initialized: true}
		e.grantOwner(account, current, completed)
	}
	return nil
}

// savingsProgress picks the current value for a savings goal: net income
// when initialized, falling back through total income, then zero.
func (e *Engine) savingsProgress(st *accountState) models.Handle {
	if st.netIncome.initialized {
		return st.netIncome.handle
	}
	if st.totalIncome.initialized {
		return st.totalIncome.handle
	}
	return models.ZeroHandle
}
