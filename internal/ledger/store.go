package ledger

import (
	"sync"

	"cipherledger/internal/models"
)

// slot is one aggregate position. A slot with no initialized flag reads
// back as encrypted zero, never as a distinct "missing" sentinel.
type slot struct {
	handle      models.Handle
	initialized bool
}

// normalizeSlot is the single seam collapsing "never written" into the
// canonical zero handle. A future revision distinguishing "never set"
// from "explicitly zero" only touches this function.
func normalizeSlot(s slot) models.Handle {
	if !s.initialized {
		return models.ZeroHandle
	}
	return s.handle
}

// accountState is the full per-account record set. All entities for one
// account live here; no cross-account reads exist.
type accountState struct {
	mu sync.Mutex

	incomes  []models.IncomeRecord
	expenses []models.ExpenseRecord

	budgets          map[string]models.Budget
	budgetCategories []string

	goals []models.Goal

	totalIncome  slot
	totalExpense slot
	netIncome    slot

	categoryIncome  map[string]slot
	categoryExpense map[string]slot
	monthlyIncome   map[int64]slot
	monthlyExpense  map[int64]slot

	budgetRemaining map[string]slot
	budgetOver      map[string]slot
	goalProgress    map[int]slot
	goalCompleted   map[int]slot
}

func newAccountState() *accountState {
	return &accountState{
		budgets:         make(map[string]models.Budget),
		categoryIncome:  make(map[string]slot),
		categoryExpense: make(map[string]slot),
		monthlyIncome:   make(map[int64]slot),
		monthlyExpense:  make(map[int64]slot),
		budgetRemaining: make(map[string]slot),
		budgetOver:      make(map[string]slot),
		goalProgress:    make(map[int]slot),
		goalCompleted:   make(map[int]slot),
	}
}

// hasBudgetCategory scans the category list by exact string equality.
// O(budget categories) per call; the list is bounded by how many
// categories an account has ever budgeted.
func (st *accountState) hasBudgetCategory(category string) bool {
	for _, c := range st.budgetCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Store owns every account's state, addressed by account identifier.
// It is passed explicitly into the engine; there is no global singleton.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*accountState
}

// NewStore creates an empty per-account state store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*accountState)}
}

func (s *Store) account(address string) *accountState {
	s.mu.RLock()
	st, ok := s.accounts[address]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok = s.accounts[address]; ok {
		return st
	}

	st = newAccountState()
	s.accounts[address] = st
	return st
}
