package handlers

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// ErrUnauthorized is returned when account context is invalid
var ErrUnauthorized = fmt.Errorf("unauthorized")

// Helper function to extract the authenticated account address from context
// Returns ErrUnauthorized if the address is missing or invalid
func getAccountFromContext(c echo.Context) (string, error) {
	accountValue := c.Get("account_address")
	if accountValue == nil {
		return "", ErrUnauthorized
	}

	account, ok := accountValue.(string)
	if !ok || account == "" {
		return "", ErrUnauthorized
	}

	return account, nil
}
