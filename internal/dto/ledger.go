package dto

import "time"

// RecordIncomeRequest submits an encrypted income amount with its
// validity proof and public metadata.
type RecordIncomeRequest struct {
	Ciphertext string    `json:"ciphertext" validate:"required"`
	Proof      string    `json:"proof" validate:"required"`
	Source     string    `json:"source" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
	Note       string    `json:"note"`
}

// RecordExpenseRequest submits an encrypted expense amount with its
// validity proof and public metadata.
type RecordExpenseRequest struct {
	Ciphertext string    `json:"ciphertext" validate:"required"`
	Proof      string    `json:"proof" validate:"required"`
	Category   string    `json:"category" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
	Note       string    `json:"note"`
}

// SetBudgetRequest sets or replaces the budget for a category.
type SetBudgetRequest struct {
	Ciphertext string    `json:"ciphertext" validate:"required"`
	Proof      string    `json:"proof" validate:"required"`
	Category   string    `json:"category" validate:"required"`
	Period     string    `json:"period" validate:"required,budget_period"`
	StartDate  time.Time `json:"start_date" validate:"required"`
}

// SetGoalRequest creates a new financial goal with an encrypted target.
type SetGoalRequest struct {
	Ciphertext string    `json:"ciphertext" validate:"required"`
	Proof      string    `json:"proof" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	GoalType   string    `json:"goal_type" validate:"required,goal_type"`
	Deadline   time.Time `json:"deadline"`
	Note       string    `json:"note"`
}

// RegisterAccountRequest enrolls an account with the encrypted ledger.
// The signing public key is the account's long-term Ed25519 verification
// key; decryption grants are honored only when signed by it.
type RegisterAccountRequest struct {
	SigningPublicKey string `json:"signing_public_key" validate:"required"`
}

// RecordResponse echoes a record's index and aggregate handles after a
// successful mutation.
type RecordResponse struct {
	Index        int    `json:"index"`
	AmountHandle string `json:"amount_handle"`
}

// HandleResponse carries one ciphertext handle.
type HandleResponse struct {
	Handle string `json:"handle"`
}

// RecordDetailResponse is one ledger record: opaque amount handle plus
// its plaintext metadata. Label holds the income source or the expense
// category.
type RecordDetailResponse struct {
	Index        int       `json:"index"`
	AmountHandle string    `json:"amount_handle"`
	Label        string    `json:"label"`
	Date         time.Time `json:"date"`
	Note         string    `json:"note,omitempty"`
}

// LedgerStateResponse exposes the account's aggregate handle map. All
// amounts stay encrypted; only opaque handles cross this boundary.
type LedgerStateResponse struct {
	TotalIncome  string          `json:"total_income"`
	TotalExpense string          `json:"total_expense"`
	NetIncome    string          `json:"net_income"`
	Budgets      []BudgetHandles `json:"budgets"`
	Goals        []GoalHandles   `json:"goals"`
	IncomeCount  int             `json:"income_count"`
	ExpenseCount int             `json:"expense_count"`
}

// BudgetHandles pairs a budget's public metadata with its derived
// encrypted aggregates.
type BudgetHandles struct {
	Category  string    `json:"category"`
	Period    string    `json:"period"`
	StartDate time.Time `json:"start_date"`
	Amount    string    `json:"amount_handle"`
	Remaining string    `json:"remaining_handle"`
	Over      string    `json:"over_handle"`
}

// GoalHandles pairs a goal's public metadata with its derived encrypted
// aggregates.
type GoalHandles struct {
	Index     int       `json:"index"`
	Name      string    `json:"name"`
	GoalType  string    `json:"goal_type"`
	Deadline  time.Time `json:"deadline"`
	Target    string    `json:"target_handle"`
	Progress  string    `json:"progress_handle"`
	Completed string    `json:"completed_handle"`
}
