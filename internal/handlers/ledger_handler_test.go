package handlers

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"cipherledger/internal/authz"
	"cipherledger/internal/dto"
	"cipherledger/internal/errors"
	"cipherledger/internal/fhe"
	"cipherledger/internal/ledger"
	"cipherledger/internal/models"
)

const handlerTestContract = "0x00000000000000000000000000000000c1fe41ed"

type LedgerHandlerTestSuite struct {
	suite.Suite
	echo      *echo.Echo
	env       *fhe.Store
	engine    *ledger.Engine
	decryptor *authz.EnvironmentDecryptor
	handler   *LedgerHandler
	account   string
	encryptor *fhe.Encryptor
}

func (s *LedgerHandlerTestSuite) SetupTest() {
	env, err := fhe.NewStore()
	s.Require().NoError(err)

	s.echo = echo.New()
	s.echo.Validator = NewValidator()
	s.env = env
	s.engine = ledger.NewEngine(ledger.NewStore(), env, handlerTestContract, 30*24*3600, nil, nil)
	s.decryptor = authz.NewEnvironmentDecryptor(env)
	s.handler = NewLedgerHandler(s.engine, s.decryptor)
	s.account = "0x9999999999999999999999999999999999999999"

	s.Require().NoError(s.engine.RegisterAccount(s.account))
	enc, err := env.NewEncryptor(s.account)
	s.Require().NoError(err)
	s.encryptor = enc
}

func TestLedgerHandlerSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}

func (s *LedgerHandlerTestSuite) jsonContext(method, path string, body interface{}, authenticated bool) (echo.Context, *httptest.ResponseRecorder) {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace")
	if authenticated {
		c.Set("account_address", s.account)
	}
	return c, rec
}

func (s *LedgerHandlerTestSuite) submission(amount int64) (string, string) {
	ciphertext, proof, err := s.encryptor.EncryptAmount(big.NewInt(amount))
	s.Require().NoError(err)
	return hex.EncodeToString(ciphertext), hex.EncodeToString(proof)
}

func (s *LedgerHandlerTestSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var response errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	return response.Error.Code
}

func (s *LedgerHandlerTestSuite) TestRegisterAccount() {
	signer, err := authz.GenerateSigner()
	s.Require().NoError(err)

	c, rec := s.jsonContext(http.MethodPost, "/accounts", dto.RegisterAccountRequest{
		SigningPublicKey: hex.EncodeToString(signer.PublicKey()),
	}, false)
	c.Set("account_address", signer.Address())

	s.Require().NoError(s.handler.RegisterAccount(c))
	s.Equal(http.StatusCreated, rec.Code)
}

func (s *LedgerHandlerTestSuite) TestRegisterAccount_Duplicate() {
	signer, err := authz.GenerateSigner()
	s.Require().NoError(err)
	s.Require().NoError(s.engine.RegisterAccount(signer.Address()))

	c, rec := s.jsonContext(http.MethodPost, "/accounts", dto.RegisterAccountRequest{
		SigningPublicKey: hex.EncodeToString(signer.PublicKey()),
	}, false)
	c.Set("account_address", signer.Address())

	s.Require().NoError(s.handler.RegisterAccount(c))
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(string(errors.ProofAccountConflict), s.errorCode(rec))
}

func (s *LedgerHandlerTestSuite) TestRegisterAccount_KeyDerivesForeignAddress() {
	signer, err := authz.GenerateSigner()
	s.Require().NoError(err)

	// Authenticated as s.account, submitting a key for a different address.
	c, rec := s.jsonContext(http.MethodPost, "/accounts", dto.RegisterAccountRequest{
		SigningPublicKey: hex.EncodeToString(signer.PublicKey()),
	}, true)

	s.Require().NoError(s.handler.RegisterAccount(c))
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal(string(errors.AuthAccountMismatch), s.errorCode(rec))
}

func (s *LedgerHandlerTestSuite) TestRegisterAccount_MissingKey() {
	c, rec := s.jsonContext(http.MethodPost, "/accounts", dto.RegisterAccountRequest{}, true)

	s.Require().NoError(s.handler.RegisterAccount(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(errors.ValidationGeneral), s.errorCode(rec))
}

func (s *LedgerHandlerTestSuite) TestRegisterAccount_MalformedKey() {
	c, rec := s.jsonContext(http.MethodPost, "/accounts", dto.RegisterAccountRequest{
		SigningPublicKey: "deadbeef",
	}, true)

	s.Require().NoError(s.handler.RegisterAccount(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(errors.ValidationInvalidFormat), s.errorCode(rec))
}

func (s *LedgerHandlerTestSuite) TestRecordIncome() {
	ciphertext, proof := s.submission(300000)
	c, rec := s.jsonContext(http.MethodPost, "/ledger/income", dto.RecordIncomeRequest{
		Ciphertext: ciphertext,
		Proof:      proof,
		Source:     "salary",
		Date:       time.Now(),
	}, true)

	s.Require().NoError(s.handler.RecordIncome(c))
	s.Equal(http.StatusCreated, rec.Code)

	var resp dto.RecordResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(0, resp.Index)
	s.Len(resp.AmountHandle, 64)
	s.Equal(1, s.engine.IncomeCount(s.account))
}

func (s *LedgerHandlerTestSuite) TestRecordIncome_Unauthenticated() {
	c, rec := s.jsonContext(http.MethodPost, "/ledger/income", dto.RecordIncomeRequest{}, false)

	s.Require().NoError(s.handler.RecordIncome(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(errors.AuthMissingToken), s.errorCode(rec))
}

func (s *LedgerHandlerTestSuite) TestRecordIncome_MissingFields() {
	c, rec := s.jsonContext(http.MethodPost, "/ledger/income", dto.RecordIncomeRequest{
		Source: "salary",
	}, true)

	s.Require().NoError(s.handler.RecordIncome(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(errors.ValidationGeneral), s.errorCode(rec))
}

func (s *LedgerHandlerTestSuite) TestRecordIncome_MalformedHex() {
	c, rec := s.jsonContext(http.MethodPost, "/ledger/income", dto.RecordIncomeRequest{
		Ciphertext: "not hex",
		Proof:      "zz",
		Source:     "salary",
		Date:       time.Now(),
	}, true)

	s.Require().NoError(s.handler.RecordIncome(c))
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal(string(errors.ProofCiphertextMalformed), s.errorCode(rec))
}

func (s *LedgerHandlerTestSuite) TestRecordIncome_TamperedProof() {
	ciphertext, _ := s.submission(100)
	_, proof := s.submission(200)

	c, rec := s.jsonContext(http.MethodPost, "/ledger/income", dto.RecordIncomeRequest{
		Ciphertext: ciphertext,
		Proof:      proof,
		Source:     "salary",
		Date:       time.Now(),
	}, true)

	s.Require().NoError(s.handler.RecordIncome(c))
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal(string(errors.ProofInvalid), s.errorCode(rec))
	s.Zero(s.engine.IncomeCount(s.account), "rejected submission leaves no record")
}

func (s *LedgerHandlerTestSuite) TestGetIncomeRecord() {
	ciphertext, proof := s.submission(300000)
	_, err := s.engine.RecordIncome(s.account, mustHex(s.T(), ciphertext), mustHex(s.T(), proof), "salary", time.Now(), "march payroll")
	s.Require().NoError(err)

	c, rec := s.jsonContext(http.MethodGet, "/ledger/income/0", nil, true)
	c.SetParamNames("index")
	c.SetParamValues("0")

	s.Require().NoError(s.handler.GetIncomeRecord(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.RecordDetailResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(0, resp.Index)
	s.Equal("salary", resp.Label)
	s.Equal("march payroll", resp.Note)
	s.Len(resp.AmountHandle, 64)
}

func (s *LedgerHandlerTestSuite) TestGetIncomeRecord_OutOfRange() {
	c, rec := s.jsonContext(http.MethodGet, "/ledger/income/5", nil, true)
	c.SetParamNames("index")
	c.SetParamValues("5")

	s.Require().NoError(s.handler.GetIncomeRecord(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(errors.LedgerRecordNotFound), s.errorCode(rec))
}

func (s *LedgerHandlerTestSuite) TestGetExpenseRecord() {
	ciphertext, proof := s.submission(45000)
	_, err := s.engine.RecordExpense(s.account, mustHex(s.T(), ciphertext), mustHex(s.T(), proof), "groceries", time.Now(), "")
	s.Require().NoError(err)

	c, rec := s.jsonContext(http.MethodGet, "/ledger/expenses/0", nil, true)
	c.SetParamNames("index")
	c.SetParamValues("0")

	s.Require().NoError(s.handler.GetExpenseRecord(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.RecordDetailResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("groceries", resp.Label)
}

func (s *LedgerHandlerTestSuite) TestGetExpenseRecord_BadIndex() {
	c, rec := s.jsonContext(http.MethodGet, "/ledger/expenses/abc", nil, true)
	c.SetParamNames("index")
	c.SetParamValues("abc")

	s.Require().NoError(s.handler.GetExpenseRecord(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(errors.ValidationGeneral), s.errorCode(rec))
}

func (s *LedgerHandlerTestSuite) TestRecordExpense() {
	ciphertext, proof := s.submission(45000)
	c, rec := s.jsonContext(http.MethodPost, "/ledger/expenses", dto.RecordExpenseRequest{
		Ciphertext: ciphertext,
		Proof:      proof,
		Category:   "groceries",
		Date:       time.Now(),
	}, true)

	s.Require().NoError(s.handler.RecordExpense(c))
	s.Equal(http.StatusCreated, rec.Code)
	s.Equal(1, s.engine.ExpenseCount(s.account))
}

func (s *LedgerHandlerTestSuite) TestSetBudget() {
	ciphertext, proof := s.submission(200000)
	c, rec := s.jsonContext(http.MethodPost, "/ledger/budgets", dto.SetBudgetRequest{
		Ciphertext: ciphertext,
		Proof:      proof,
		Category:   "rent",
		Period:     models.BudgetPeriodMonthly,
		StartDate:  time.Now(),
	}, true)

	s.Require().NoError(s.handler.SetBudget(c))
	s.Equal(http.StatusCreated, rec.Code)

	var resp dto.BudgetHandles
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("rent", resp.Category)
	s.Len(resp.Remaining, 64)
	s.Len(resp.Over, 64)
}

func (s *LedgerHandlerTestSuite) TestSetBudget_InvalidPeriod() {
	ciphertext, proof := s.submission(200000)
	c, rec := s.jsonContext(http.MethodPost, "/ledger/budgets", dto.SetBudgetRequest{
		Ciphertext: ciphertext,
		Proof:      proof,
		Category:   "rent",
		Period:     "daily",
		StartDate:  time.Now(),
	}, true)

	s.Require().NoError(s.handler.SetBudget(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(errors.ValidationGeneral), s.errorCode(rec))
}

func (s *LedgerHandlerTestSuite) TestSetGoal() {
	ciphertext, proof := s.submission(1000000)
	c, rec := s.jsonContext(http.MethodPost, "/ledger/goals", dto.SetGoalRequest{
		Ciphertext: ciphertext,
		Proof:      proof,
		Name:       "house deposit",
		GoalType:   models.GoalTypeSavings,
		Deadline:   time.Now().AddDate(2, 0, 0),
	}, true)

	s.Require().NoError(s.handler.SetGoal(c))
	s.Equal(http.StatusCreated, rec.Code)

	var resp dto.GoalHandles
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("house deposit", resp.Name)
	s.Equal(models.GoalTypeSavings, resp.GoalType)
	s.Len(resp.Progress, 64)
	s.Len(resp.Completed, 64)
}

func (s *LedgerHandlerTestSuite) TestGetState() {
	ciphertext, proof := s.submission(300000)
	_, err := s.engine.RecordIncome(s.account, mustHex(s.T(), ciphertext), mustHex(s.T(), proof), "salary", time.Now(), "")
	s.Require().NoError(err)

	c, rec := s.jsonContext(http.MethodGet, "/ledger/state", nil, true)

	s.Require().NoError(s.handler.GetState(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.LedgerStateResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(1, resp.IncomeCount)
	s.Zero(resp.ExpenseCount)
	s.Len(resp.TotalIncome, 64)
	s.Equal(models.ZeroHandle.Hex(), resp.TotalExpense, "untouched aggregates read as the zero handle")
}

func mustHex(t *testing.T, encoded string) []byte {
	t.Helper()
	decoded, err := hex.DecodeString(encoded)
	if err != nil {
		t.Fatalf("invalid hex fixture: %v", err)
	}
	return decoded
}
