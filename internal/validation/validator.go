package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"cipherledger/internal/models"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("monetary_amount", validateMonetaryAmount)
	_ = v.RegisterValidation("account_address", validateAccountAddress)
	_ = v.RegisterValidation("ciphertext_handle", validateCiphertextHandle)
	_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
	_ = v.RegisterValidation("goal_type", validateGoalType)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

var (
	amountPattern  = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)
	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	handlePattern  = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
)

// validateMonetaryAmount validates that an amount string is a non-negative
// number with at most two decimal digits
func validateMonetaryAmount(fl validator.FieldLevel) bool {
	return amountPattern.MatchString(fl.Field().String())
}

// validateAccountAddress validates the 0x-prefixed 20-byte hex address format
func validateAccountAddress(fl validator.FieldLevel) bool {
	return addressPattern.MatchString(fl.Field().String())
}

// validateCiphertextHandle validates a hex-encoded 32-byte handle
func validateCiphertextHandle(fl validator.FieldLevel) bool {
	return handlePattern.MatchString(fl.Field().String())
}

// validateBudgetPeriod validates that a budget period is one of the allowed values
func validateBudgetPeriod(fl validator.FieldLevel) bool {
	return models.IsValidBudgetPeriod(fl.Field().String())
}

// validateGoalType validates that a goal type is one of the allowed values
func validateGoalType(fl validator.FieldLevel) bool {
	return models.IsValidGoalType(fl.Field().String())
}
