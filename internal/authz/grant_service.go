package authz

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/nacl/box"

	"cipherledger/internal/models"
	"cipherledger/internal/repositories"
)

// DefaultGrantDurationDays is the validity window baked into a grant at
// signing time. A grant is never renewed or extended; after expiry a new
// signature must be produced.
const DefaultGrantDurationDays = 365

var (
	ErrGrantUnavailable = errors.New("no valid decryption grant could be obtained")
	ErrGrantExpired     = errors.New("decryption grant expired")
	ErrNoContracts      = errors.New("contract set cannot be empty")
)

// GrantService turns a caller's signing identity into time-boxed
// decryption grants and caches the per-account ephemeral key pair.
type GrantService struct {
	repo         repositories.GrantRepositoryInterface
	durationDays int64
	logger       *slog.Logger

	// ReuseSignatures flips the caching policy knob: when false (the
	// reference stance) every grant request produces a fresh signature;
	// when true a persisted grant is reused for its full validity window.
	ReuseSignatures bool

	now func() time.Time
}

// NewGrantService creates a grant service over the persistence boundary.
func NewGrantService(repo repositories.GrantRepositoryInterface, durationDays int64, logger *slog.Logger) *GrantService {
	if durationDays <= 0 {
		durationDays = DefaultGrantDurationDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GrantService{
		repo:         repo,
		durationDays: durationDays,
		logger:       logger,
		now:          time.Now,
	}
}

// ObtainGrant acquires a valid decryption grant for the signer's account
// over the given contract set: cached key pair (generated and persisted
// on first use), canonical message, long-term-key signature. Signing or
// key-pair acquisition failure surfaces as ErrGrantUnavailable.
func (s *GrantService) ObtainGrant(signer Signer, contracts []string) (*models.DecryptionGrant, error) {
	if len(contracts) == 0 {
		return nil, ErrNoContracts
	}

	account := signer.Address()
	publicKey, privateKey, err := s.ensureKeyPair(account)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGrantUnavailable, err)
	}

	start := s.now().Unix()
	message := NewAuthMessage(publicKey, contracts, start, s.durationDays)
	storeKey := models.GrantStoreKey(account, message.Hash())

	if s.ReuseSignatures {
		// The reuse row is keyed by account and contract set only; keying
		// by the full message hash would bake the start timestamp into the
		// key and make the cache unfindable on any later request.
		storeKey = models.GrantReuseKey(account, message.Contracts)
		if cached, err := s.repo.GetGrantByStoreKey(storeKey); err == nil && cached.IsValidAt(s.now()) {
			return cached, nil
		}
	}

	signature, err := signer.Sign(message.Canonical())
	if err != nil {
		return nil, fmt.Errorf("%w: signing declined: %v", ErrGrantUnavailable, err)
	}

	grant := &models.DecryptionGrant{
		StoreKey:       storeKey,
		AccountAddress: account,
		PublicKey:      publicKey[:],
		PrivateKey:     privateKey[:],
		Signature:      signature,
		ContractSet:    strings.Join(message.Contracts, ","),
		StartTimestamp: message.StartTimestamp,
		DurationDays:   message.DurationDays,
	}

	// Persistence failures are swallowed: the next request simply
	// regenerates what it needs.
	if err := s.repo.SaveGrant(grant); err != nil {
		s.logger.Warn("failed to persist decryption grant",
			slog.String("account_address", account),
			slog.String("error", err.Error()),
		)
	}

	return grant, nil
}

// ensureKeyPair returns the account's cached ephemeral key pair,
// generating and persisting a fresh one when absent.
func (s *GrantService) ensureKeyPair(account string) ([32]byte, [32]byte, error) {
	var publicKey, privateKey [32]byte

	storeKey := models.KeyPairStoreKey(account)
	if cached, err := s.repo.GetKeyPairByStoreKey(storeKey); err == nil {
		copy(publicKey[:], cached.PublicKey)
		copy(privateKey[:], cached.PrivateKey)
		return publicKey, privateKey, nil
	} else if !errors.Is(err, repositories.ErrKeyPairNotFound) {
		s.logger.Warn("key pair lookup failed, generating fresh pair",
			slog.String("account_address", account),
			slog.String("error", err.Error()),
		)
	}

	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return publicKey, privateKey, fmt.Errorf("key pair generation failed: %w", err)
	}

	record := &models.KeyPairRecord{
		StoreKey:       storeKey,
		AccountAddress: account,
		PublicKey:      pub[:],
		PrivateKey:     priv[:],
	}
	if err := s.repo.SaveKeyPair(record); err != nil {
		s.logger.Warn("failed to persist key pair",
			slog.String("account_address", account),
			slog.String("error", err.Error()),
		)
	}

	return *pub, *priv, nil
}
