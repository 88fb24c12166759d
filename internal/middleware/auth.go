package middleware

import (
	"cipherledger/internal/errors"
	"cipherledger/internal/handlers"
	"cipherledger/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	// AccountAddressContextKey is where the authenticated account lands
	AccountAddressContextKey = "account_address"
)

// RequireAuth creates a middleware that requires a valid bearer token
// and binds the authenticated account address into the request context
func RequireAuth(tokenService services.TokenServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			token, err := tokenService.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			claims, err := tokenService.ValidateAccessToken(token)
			if err != nil {
				if err == services.ErrExpiredToken {
					return handlers.SendError(c, errors.AuthExpiredToken)
				}
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			c.Set(AccountAddressContextKey, claims.AccountAddress)

			return next(c)
		}
	}
}

// RequireAccountMatch ensures the :address path parameter matches the
// authenticated account. Decryptable state is per-account; one account
// must never operate on another's ledger.
func RequireAccountMatch() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authenticated, ok := c.Get(AccountAddressContextKey).(string)
			if !ok || authenticated == "" {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			if address := c.Param("address"); address != "" && address != authenticated {
				return handlers.SendError(c, errors.AuthAccountMismatch)
			}

			return next(c)
		}
	}
}

// GetAccountAddress extracts the authenticated account address from the
// Echo context
func GetAccountAddress(c echo.Context) string {
	address, ok := c.Get(AccountAddressContextKey).(string)
	if !ok {
		return ""
	}
	return address
}
