package handlers

import (
	"crypto/ed25519"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"cipherledger/internal/authz"
	"cipherledger/internal/dto"
	"cipherledger/internal/errors"
	"cipherledger/internal/ledger"
	"cipherledger/internal/models"

	"github.com/labstack/echo/v4"
)

// LedgerEngineInterface is the mutation and read surface the HTTP layer
// drives.
type LedgerEngineInterface interface {
	RegisterAccount(account string) error
	RecordIncome(account string, ciphertext, proof []byte, source string, date time.Time, note string) (*models.IncomeRecord, error)
	RecordExpense(account string, ciphertext, proof []byte, category string, date time.Time, note string) (*models.ExpenseRecord, error)
	SetBudget(account string, ciphertext, proof []byte, category, period string, startDate time.Time) (*models.Budget, error)
	SetGoal(account, name, goalType string, targetCiphertext, proof []byte, deadline time.Time, note string) (*models.Goal, error)

	IncomeRecord(account string, index int) (*models.IncomeRecord, error)
	ExpenseRecord(account string, index int) (*models.ExpenseRecord, error)
	TotalIncome(account string) models.Handle
	TotalExpense(account string) models.Handle
	NetIncome(account string) models.Handle
	IncomeCount(account string) int
	ExpenseCount(account string) int
	BudgetCategories(account string) []string
	Budget(account, category string) (*models.Budget, bool)
	BudgetRemaining(account, category string) models.Handle
	BudgetOver(account, category string) models.Handle
	GoalCount(account string) int
	Goal(account string, index int) (*models.Goal, error)
	GoalProgress(account string, index int) models.Handle
	GoalCompleted(account string, index int) models.Handle
}

// SignerRegistryInterface records long-term verification keys so the
// decryption service can check grant signatures.
type SignerRegistryInterface interface {
	RegisterSignerKey(accountAddress string, key ed25519.PublicKey)
}

// LedgerHandler handles encrypted ledger HTTP requests
type LedgerHandler struct {
	engine  LedgerEngineInterface
	signers SignerRegistryInterface
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(engine LedgerEngineInterface, signers SignerRegistryInterface) *LedgerHandler {
	return &LedgerHandler{engine: engine, signers: signers}
}

// RegisterAccount enrolls the authenticated account with the ledger and
// records its verification key for later grant checks. The submitted
// key must derive the authenticated address.
func (h *LedgerHandler) RegisterAccount(c echo.Context) error {
	account, err := getAccountFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.RegisterAccountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	publicKey, err := hex.DecodeString(req.SigningPublicKey)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Signing public key must be a hex-encoded Ed25519 key"))
	}
	if authz.DeriveAddress(publicKey) != account {
		return SendError(c, errors.AuthAccountMismatch)
	}

	if err := h.engine.RegisterAccount(account); err != nil {
		return SendError(c, errors.ProofAccountConflict)
	}
	h.signers.RegisterSignerKey(account, publicKey)

	return SendSuccess(c, http.StatusCreated, map[string]string{"account_address": account}, "Account registered")
}

// RecordIncome appends an income record from an encrypted submission
func (h *LedgerHandler) RecordIncome(c echo.Context) error {
	account, err := getAccountFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.RecordIncomeRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	ciphertext, proof, err := decodeSubmission(req.Ciphertext, req.Proof)
	if err != nil {
		return SendError(c, errors.ProofCiphertextMalformed)
	}

	record, err := h.engine.RecordIncome(account, ciphertext, proof, req.Source, req.Date, req.Note)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.RecordResponse{
		Index:        record.Index,
		AmountHandle: record.Amount.Hex(),
	})
}

// RecordExpense appends an expense record from an encrypted submission
func (h *LedgerHandler) RecordExpense(c echo.Context) error {
	account, err := getAccountFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.RecordExpenseRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	ciphertext, proof, err := decodeSubmission(req.Ciphertext, req.Proof)
	if err != nil {
		return SendError(c, errors.ProofCiphertextMalformed)
	}

	record, err := h.engine.RecordExpense(account, ciphertext, proof, req.Category, req.Date, req.Note)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.RecordResponse{
		Index:        record.Index,
		AmountHandle: record.Amount.Hex(),
	})
}

// SetBudget sets or replaces the budget for a category
func (h *LedgerHandler) SetBudget(c echo.Context) error {
	account, err := getAccountFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.SetBudgetRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	ciphertext, proof, err := decodeSubmission(req.Ciphertext, req.Proof)
	if err != nil {
		return SendError(c, errors.ProofCiphertextMalformed)
	}

	budget, err := h.engine.SetBudget(account, ciphertext, proof, req.Category, req.Period, req.StartDate)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.BudgetHandles{
		Category:  budget.Category,
		Period:    budget.Period,
		StartDate: budget.StartDate,
		Amount:    budget.Amount.Hex(),
		Remaining: h.engine.BudgetRemaining(account, budget.Category).Hex(),
		Over:      h.engine.BudgetOver(account, budget.Category).Hex(),
	})
}

// SetGoal creates a new goal with an encrypted target
func (h *LedgerHandler) SetGoal(c echo.Context) error {
	account, err := getAccountFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.SetGoalRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	ciphertext, proof, err := decodeSubmission(req.Ciphertext, req.Proof)
	if err != nil {
		return SendError(c, errors.ProofCiphertextMalformed)
	}

	goal, err := h.engine.SetGoal(account, req.Name, req.GoalType, ciphertext, proof, req.Deadline, req.Note)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.GoalHandles{
		Index:     goal.Index,
		Name:      goal.Name,
		GoalType:  goal.Type,
		Deadline:  goal.Deadline,
		Target:    goal.Target.Hex(),
		Progress:  h.engine.GoalProgress(account, goal.Index).Hex(),
		Completed: h.engine.GoalCompleted(account, goal.Index).Hex(),
	})
}

// GetIncomeRecord returns a single income record by index
func (h *LedgerHandler) GetIncomeRecord(c echo.Context) error {
	account, err := getAccountFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid record index"))
	}

	record, err := h.engine.IncomeRecord(account, index)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.RecordDetailResponse{
		Index:        record.Index,
		AmountHandle: record.Amount.Hex(),
		Label:        record.Source,
		Date:         record.Date,
		Note:         record.Note,
	})
}

// GetExpenseRecord returns a single expense record by index
func (h *LedgerHandler) GetExpenseRecord(c echo.Context) error {
	account, err := getAccountFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid record index"))
	}

	record, err := h.engine.ExpenseRecord(account, index)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.RecordDetailResponse{
		Index:        record.Index,
		AmountHandle: record.Amount.Hex(),
		Label:        record.Category,
		Date:         record.Date,
		Note:         record.Note,
	})
}

// GetState returns the account's full aggregate handle map
func (h *LedgerHandler) GetState(c echo.Context) error {
	account, err := getAccountFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	resp := dto.LedgerStateResponse{
		TotalIncome:  h.engine.TotalIncome(account).Hex(),
		TotalExpense: h.engine.TotalExpense(account).Hex(),
		NetIncome:    h.engine.NetIncome(account).Hex(),
		IncomeCount:  h.engine.IncomeCount(account),
		ExpenseCount: h.engine.ExpenseCount(account),
	}

	for _, category := range h.engine.BudgetCategories(account) {
		budget, ok := h.engine.Budget(account, category)
		if !ok {
			continue
		}
		resp.Budgets = append(resp.Budgets, dto.BudgetHandles{
			Category:  budget.Category,
			Period:    budget.Period,
			StartDate: budget.StartDate,
			Amount:    budget.Amount.Hex(),
			Remaining: h.engine.BudgetRemaining(account, category).Hex(),
			Over:      h.engine.BudgetOver(account, category).Hex(),
		})
	}

	for i := 0; i < h.engine.GoalCount(account); i++ {
		goal, err := h.engine.Goal(account, i)
		if err != nil {
			continue
		}
		resp.Goals = append(resp.Goals, dto.GoalHandles{
			Index:     goal.Index,
			Name:      goal.Name,
			GoalType:  goal.Type,
			Deadline:  goal.Deadline,
			Target:    goal.Target.Hex(),
			Progress:  h.engine.GoalProgress(account, i).Hex(),
			Completed: h.engine.GoalCompleted(account, i).Hex(),
		})
	}

	return c.JSON(http.StatusOK, resp)
}

func decodeSubmission(ciphertextHex, proofHex string) ([]byte, []byte, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, nil, err
	}
	proof, err := hex.DecodeString(proofHex)
	if err != nil {
		return nil, nil, err
	}
	return ciphertext, proof, nil
}

func sendLedgerError(c echo.Context, err error) error {
	switch err {
	case ledger.ErrProofInvalid:
		return SendError(c, errors.ProofInvalid)
	case ledger.ErrEmptyCategory:
		return SendError(c, errors.LedgerEmptyCategory)
	case ledger.ErrEmptySource:
		return SendError(c, errors.LedgerEmptySource)
	case ledger.ErrEmptyGoalName:
		return SendError(c, errors.GoalEmptyName)
	case ledger.ErrRecordNotFound:
		return SendError(c, errors.LedgerRecordNotFound)
	case models.ErrInvalidBudgetPeriod:
		return SendError(c, errors.LedgerInvalidPeriod)
	case models.ErrInvalidGoalType:
		return SendError(c, errors.GoalInvalidType)
	default:
		return SendSystemError(c, err)
	}
}
