package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cipherledger/internal/config"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("token is invalid")
)

// AccessClaims binds a bearer token to one account address.
type AccessClaims struct {
	AccountAddress string `json:"account_address"`
	jwt.RegisteredClaims
}

// TokenServiceInterface issues and validates API bearer tokens.
type TokenServiceInterface interface {
	GenerateAccessToken(accountAddress string) (string, error)
	ValidateAccessToken(token string) (*AccessClaims, error)
	ExtractTokenFromHeader(header string) (string, error)
}

type tokenService struct {
	cfg *config.JWTConfig
}

// NewTokenService creates a token service signing with the configured
// Ed25519 keypair.
func NewTokenService(cfg *config.JWTConfig) TokenServiceInterface {
	return &tokenService{cfg: cfg}
}

func (ts *tokenService) GenerateAccessToken(accountAddress string) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		AccountAddress: accountAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    ts.cfg.Issuer,
			Subject:   accountAddress,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.cfg.AccessTokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(ts.cfg.PrivateKey)
}

func (ts *tokenService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, ErrInvalidToken
		}
		return ts.cfg.PublicKey, nil
	}, jwt.WithIssuer(ts.cfg.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (ts *tokenService) ExtractTokenFromHeader(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
