package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthMissingToken       ErrorCode = "AUTH_001"
	AuthExpiredToken       ErrorCode = "AUTH_002"
	AuthInvalidTokenFormat ErrorCode = "AUTH_003"
	AuthAccountMismatch    ErrorCode = "AUTH_004"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationInvalidDate   ErrorCode = "VALIDATION_004"
)

// Amount error codes (AMOUNT_*)
const (
	AmountFormatInvalid ErrorCode = "AMOUNT_001"
	AmountNegative      ErrorCode = "AMOUNT_002"
	AmountTooPrecise    ErrorCode = "AMOUNT_003"
)

// Proof error codes (PROOF_*)
const (
	ProofInvalid             ErrorCode = "PROOF_001"
	ProofAccountUnknown      ErrorCode = "PROOF_002"
	ProofAccountConflict     ErrorCode = "PROOF_003"
	ProofCiphertextMalformed ErrorCode = "PROOF_004"
)

// Ledger error codes (LEDGER_*)
const (
	LedgerRecordNotFound  ErrorCode = "LEDGER_001"
	LedgerEmptyCategory   ErrorCode = "LEDGER_002"
	LedgerEmptySource     ErrorCode = "LEDGER_003"
	LedgerInvalidPeriod   ErrorCode = "LEDGER_004"
	LedgerUnknownContract ErrorCode = "LEDGER_005"
)

// Goal error codes (GOAL_*)
const (
	GoalInvalidType ErrorCode = "GOAL_001"
	GoalEmptyName   ErrorCode = "GOAL_002"
	GoalNotFound    ErrorCode = "GOAL_003"
)

// Grant error codes (GRANT_*)
const (
	GrantUnavailable ErrorCode = "GRANT_001"
	GrantExpired     ErrorCode = "GRANT_002"
	GrantNoContracts ErrorCode = "GRANT_003"
)

// Decryption error codes (DECRYPT_*)
const (
	DecryptFailed        ErrorCode = "DECRYPT_001"
	DecryptAccessDenied  ErrorCode = "DECRYPT_002"
	DecryptUnknownHandle ErrorCode = "DECRYPT_003"
	DecryptUnknownSigner ErrorCode = "DECRYPT_004"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_005"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthMissingToken:       "Authorization token is required",
	AuthExpiredToken:       "Authorization token has expired",
	AuthInvalidTokenFormat: "Invalid authorization token format",
	AuthAccountMismatch:    "Token does not authorize this account",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationInvalidDate:   "Invalid date format or range",

	// Amount errors
	AmountFormatInvalid: "Invalid monetary amount format",
	AmountNegative:      "Monetary amounts cannot be negative",
	AmountTooPrecise:    "Monetary amounts support at most two decimal digits",

	// Proof errors
	ProofInvalid:             "Ciphertext validity proof verification failed",
	ProofAccountUnknown:      "Account is not registered with the encrypted ledger",
	ProofAccountConflict:     "Account is already registered",
	ProofCiphertextMalformed: "Submitted ciphertext is malformed",

	// Ledger errors
	LedgerRecordNotFound:  "Ledger record not found",
	LedgerEmptyCategory:   "Category must not be empty",
	LedgerEmptySource:     "Income source must not be empty",
	LedgerInvalidPeriod:   "Budget period must be weekly, monthly, or yearly",
	LedgerUnknownContract: "Unknown ledger contract address",

	// Goal errors
	GoalInvalidType: "Goal type must be savings or expense_cap",
	GoalEmptyName:   "Goal name must not be empty",
	GoalNotFound:    "Goal not found",

	// Grant errors
	GrantUnavailable: "Decryption grant could not be obtained",
	GrantExpired:     "Decryption grant validity window has passed",
	GrantNoContracts: "Decryption grant must cover at least one contract",

	// Decryption errors
	DecryptFailed:        "Batched decryption was rejected",
	DecryptAccessDenied:  "Account is not permitted to decrypt this handle",
	DecryptUnknownHandle: "Ciphertext handle is unknown",
	DecryptUnknownSigner: "No verification key registered for this account",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
