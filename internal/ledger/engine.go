package ledger

import (
	"errors"
	"fmt"
	"time"

	"cipherledger/internal/fhe"
	"cipherledger/internal/models"
)

var (
	ErrProofInvalid    = errors.New("proof verification failed")
	ErrEmptyCategory   = errors.New("category is required")
	ErrEmptySource     = errors.New("source is required")
	ErrEmptyGoalName   = errors.New("goal name is required")
	ErrRecordNotFound  = errors.New("record not found")
	ErrUnknownContract = errors.New("unknown contract address")
)

// EventSink receives observable ledger events. Implementations must not
// be handed amount handles or plaintext amounts.
type EventSink interface {
	IncomeRecorded(account string, index int, source string, date time.Time)
	ExpenseRecorded(account string, index int, category string, date time.Time)
	BudgetSet(account, category, period string, startDate time.Time)
	GoalSet(account string, index int, name, goalType string, deadline time.Time)
}

// MetricsRecorder counts engine operations and proof rejections.
type MetricsRecorder interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
}

// Engine is the encrypted ledger engine: the only producer of new
// handles and access grants. Each mutating operation executes as one
// indivisible state transition for its account; a proof failure aborts
// the operation with no state change.
type Engine struct {
	store           *Store
	env             *fhe.Store
	contractAddress string
	bucketSeconds   int64
	events          EventSink
	metrics         MetricsRecorder
}

// NewEngine wires the engine to its state store and encrypted-state
// environment. bucketSeconds is the fixed month-bucket width; events and
// metrics may be nil.
func NewEngine(store *Store, env *fhe.Store, contractAddress string, bucketSeconds int64, events EventSink, metrics MetricsRecorder) *Engine {
	if events == nil {
		events = nopSink{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Engine{
		store:           store,
		env:             env,
		contractAddress: contractAddress,
		bucketSeconds:   bucketSeconds,
		events:          events,
		metrics:         metrics,
	}
}

// ContractAddress returns the ledger instance identity used in
// decryption grants.
func (e *Engine) ContractAddress() string {
	return e.contractAddress
}

// RegisterAccount provisions proof keys for a new account.
func (e *Engine) RegisterAccount(account string) error {
	return e.env.RegisterAccount(account)
}

// MonthBucket folds a date into its fixed-width month bucket. This is an
// integer-division floor over a fixed duration, not a true calendar
// month, so buckets drift from calendar boundaries over long spans.
func (e *Engine) MonthBucket(date time.Time) int64 {
	return date.Unix() / e.bucketSeconds
}

// RecordIncome verifies the ciphertext/proof pair, appends an income
// record and updates every aggregate the record touches.
func (e *Engine) RecordIncome(account string, ciphertext, proof []byte, source string, date time.Time, note string) (*models.IncomeRecord, error) {
	if source == "" {
		return nil, ErrEmptySource
	}

	started := time.Now()
	amount, err := e.verifyInput(account, ciphertext, proof)
	if err != nil {
		return nil, err
	}

	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()

	record := models.IncomeRecord{
		Index:  len(st.incomes),
		Amount: amount,
		Source: source,
		Date:   date,
		Note:   note,
	}

	total, err := e.addTo(st.totalIncome, amount)
	if err != nil {
		return nil, err
	}
	bySource, err := e.addTo(st.categoryIncome[source], amount)
	if err != nil {
		return nil, err
	}
	byMonth, err := e.addTo(st.monthlyIncome[e.MonthBucket(date)], amount)
	if err != nil {
		return nil, err
	}

	st.incomes = append(st.incomes, record)
	st.totalIncome = total
	st.categoryIncome[source] = bySource
	st.monthlyIncome[e.MonthBucket(date)] = byMonth
	e.grantOwner(account, amount, total.handle, bySource.handle, byMonth.handle)

	if err := e.recomputeNet(st, account); err != nil {
		return nil, err
	}
	if err := e.recomputeGoals(st, account); err != nil {
		return nil, err
	}

	e.events.IncomeRecorded(account, record.Index, source, date)
	e.metrics.IncrementCounter("ledger_operations_total", map[string]string{"operation": "record_income"})
	e.metrics.RecordProcessingTime("record_income", time.Since(started))
	return &record, nil
}

// RecordExpense is symmetric to RecordIncome and additionally recomputes
// the budget state for the expense category.
func (e *Engine) RecordExpense(account string, ciphertext, proof []byte, category string, date time.Time, note string) (*models.ExpenseRecord, error) {
	if category == "" {
		return nil, ErrEmptyCategory
	}

	started := time.Now()
	amount, err := e.verifyInput(account, ciphertext, proof)
	if err != nil {
		return nil, err
	}

	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()

	record := models.ExpenseRecord{
		Index:    len(st.expenses),
		Amount:   amount,
		Category: category,
		Date:     date,
		Note:     note,
	}

	total, err := e.addTo(st.totalExpense, amount)
	if err != nil {
		return nil, err
	}
	byCategory, err := e.addTo(st.categoryExpense[category], amount)
	if err != nil {
		return nil, err
	}
	byMonth, err := e.addTo(st.monthlyExpense[e.MonthBucket(date)], amount)
	if err != nil {
		return nil, err
	}

	st.expenses = append(st.expenses, record)
	st.totalExpense = total
	st.categoryExpense[category] = byCategory
	st.monthlyExpense[e.MonthBucket(date)] = byMonth
	e.grantOwner(account, amount, total.handle, byCategory.handle, byMonth.handle)

	if err := e.recomputeNet(st, account); err != nil {
		return nil, err
	}
	if err := e.recomputeBudget(st, account, category); err != nil {
		return nil, err
	}
	if err := e.recomputeGoals(st, account); err != nil {
		return nil, err
	}

	e.events.ExpenseRecorded(account, record.Index, category, date)
	e.metrics.IncrementCounter("ledger_operations_total", map[string]string{"operation": "record_expense"})
	e.metrics.RecordProcessingTime("record_expense", time.Since(started))
	return &record, nil
}

// SetBudget replaces any existing budget for the category with a new
// active budget and recomputes that category's budget state.
func (e *Engine) SetBudget(account string, ciphertext, proof []byte, category, period string, startDate time.Time) (*models.Budget, error) {
	if category == "" {
		return nil, ErrEmptyCategory
	}
	if !models.IsValidBudgetPeriod(period) {
		return nil, models.ErrInvalidBudgetPeriod
	}

	amount, err := e.verifyInput(account, ciphertext, proof)
	if err != nil {
		return nil, err
	}

	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()

	budget := models.Budget{
		Amount:    amount,
		Category:  category,
		Period:    period,
		StartDate: startDate,
		Active:    true,
	}
	st.budgets[category] = budget
	if !st.hasBudgetCategory(category) {
		st.budgetCategories = append(st.budgetCategories, category)
	}
	e.grantOwner(account, amount)

	if err := e.recomputeBudget(st, account, category); err != nil {
		return nil, err
	}

	e.events.BudgetSet(account, category, period, startDate)
	e.metrics.IncrementCounter("ledger_operations_total", map[string]string{"operation": "set_budget"})
	return &budget, nil
}

// SetGoal appends a new active goal and recomputes progress for every
// active goal, so the freshly granted handles reflect current totals.
func (e *Engine) SetGoal(account, name, goalType string, targetCiphertext, proof []byte, deadline time.Time, note string) (*models.Goal, error) {
	if name == "" {
		return nil, ErrEmptyGoalName
	}
	if !models.IsValidGoalType(goalType) {
		return nil, models.ErrInvalidGoalType
	}

	target, err := e.verifyInput(account, targetCiphertext, proof)
	if err != nil {
		return nil, err
	}

	st := e.store.account(account)
	st.mu.Lock()
	defer st.mu.Unlock()

	goal := models.Goal{
		Index:    len(st.goals),
		Name:     name,
		Type:     goalType,
		Target:   target,
		Deadline: deadline,
		Note:     note,
		Active:   true,
	}
	st.goals = append(st.goals, goal)
	e.grantOwner(account, target)

	if err := e.recomputeGoals(st, account); err != nil {
		return nil, err
	}

	e.events.GoalSet(account, goal.Index, name, goalType, deadline)
	e.metrics.IncrementCounter("ledger_operations_total", map[string]string{"operation": "set_goal"})
	return &goal, nil
}

// verifyInput runs proof verification, the only local failure mode of a
// mutating operation. Nothing is mutated before it succeeds.
func (e *Engine) verifyInput(account string, ciphertext, proof []byte) (models.Handle, error) {
	handle, err := e.env.VerifyAndImport(account, ciphertext, proof)
	if err != nil {
		e.metrics.IncrementCounter("proof_rejections_total", nil)
		if errors.Is(err, fhe.ErrProofInvalid) {
			return models.ZeroHandle, ErrProofInvalid
		}
		return models.ZeroHandle, fmt.Errorf("input verification failed: %w", err)
	}
	return handle, nil
}

// addTo folds an amount into an aggregate slot: the first write
// initializes the slot with the amount handle, subsequent writes add
// homomorphically. The prior handle is never mutated, only replaced.
func (e *Engine) addTo(s slot, amount models.Handle) (slot, error) {
	if !s.initialized {
		return slot{handle: amount, initialized: true}, nil
	}

	sum, err := e.env.Add(s.handle, amount)
	if err != nil {
		return slot{}, fmt.Errorf("aggregate update failed: %w", err)
	}
	return slot{handle: sum, initialized: true}, nil
}

// grantOwner grants decrypt access on each handle to the owning account
// and the ledger contract itself.
func (e *Engine) grantOwner(account string, handles ...models.Handle) {
	for _, h := range handles {
		e.env.Allow(h, account)
		e.env.Allow(h, e.contractAddress)
	}
}

type nopSink struct{}

func (nopSink) IncomeRecorded(string, int, string, time.Time)  {}
func (nopSink) ExpenseRecorded(string, int, string, time.Time) {}
func (nopSink) BudgetSet(string, string, string, time.Time)    {}
func (nopSink) GoalSet(string, int, string, string, time.Time) {}

type nopMetrics struct{}

func (nopMetrics) IncrementCounter(string, map[string]string) {}
func (nopMetrics) RecordProcessingTime(string, time.Duration) {}
