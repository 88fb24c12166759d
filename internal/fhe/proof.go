package fhe

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"cipherledger/internal/models"
)

// Validity proofs bind a submitted ciphertext to the submitting account.
// The proof is an HMAC over ciphertext||account under a per-account input
// key issued at registration; the verifier never sees the plaintext.

// RegisterAccount issues a fresh input key for an account. Registering
// an already-known account is rejected rather than rotating the key.
func (s *Store) RegisterAccount(accountAddress string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inputKeys[accountAddress]; ok {
		return ErrAccountRegistered
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate input key: %w", err)
	}

	s.inputKeys[accountAddress] = key
	return nil
}

// VerifyAndImport checks the ciphertext/proof pair against the account's
// input key, then imports the ciphertext into the store. Any mismatch is
// ErrProofInvalid; nothing is stored on failure.
func (s *Store) VerifyAndImport(accountAddress string, ciphertext, proof []byte) (models.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.inputKeys[accountAddress]
	if !ok {
		return models.ZeroHandle, ErrProofInvalid
	}

	if !hmac.Equal(proof, inputMAC(key, accountAddress, ciphertext)) {
		return models.ZeroHandle, ErrProofInvalid
	}

	nonceSize := s.aead.NonceSize()
	if len(ciphertext) <= nonceSize {
		return models.ZeroHandle, ErrProofInvalid
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	if _, err := s.aead.Open(nil, nonce, sealed, nil); err != nil {
		return models.ZeroHandle, ErrProofInvalid
	}

	handle := deriveHandle(nonce, sealed)
	s.values[handle] = sealedValue{nonce: nonce, ciphertext: sealed, kind: KindUint128}
	return handle, nil
}

// Encryptor produces ciphertext+proof pairs a registered account can
// submit to the ledger boundary.
type Encryptor struct {
	store          *Store
	accountAddress string
}

// NewEncryptor returns an encryptor bound to a registered account.
func (s *Store) NewEncryptor(accountAddress string) (*Encryptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.inputKeys[accountAddress]; !ok {
		return nil, ErrUnknownAccount
	}

	return &Encryptor{store: s, accountAddress: accountAddress}, nil
}

// EncryptAmount seals a non-negative integer amount and returns the
// ciphertext together with its validity proof.
func (e *Encryptor) EncryptAmount(amount *big.Int) ([]byte, []byte, error) {
	e.store.mu.Lock()

	plaintext := make([]byte, 1+valueBytes)
	plaintext[0] = byte(KindUint128)
	new(big.Int).Mod(amount, uint128Mod).FillBytes(plaintext[1:])

	nonce := make([]byte, e.store.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		e.store.mu.Unlock()
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := e.store.aead.Seal(nil, nonce, plaintext, nil)
	key := e.store.inputKeys[e.accountAddress]
	e.store.mu.Unlock()

	ciphertext := append(nonce, sealed...)
	return ciphertext, inputMAC(key, e.accountAddress, ciphertext), nil
}

func inputMAC(key []byte, accountAddress string, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(ciphertext)
	mac.Write([]byte(accountAddress))
	return mac.Sum(nil)
}
