// Package fhe is the encrypted-state store standing in for the external
// homomorphic execution environment. Values are sealed 128-bit unsigned
// integers (or 0/1 booleans) addressed by opaque handles; arithmetic on
// handles yields new handles and plaintext never crosses the store
// boundary except through an access-checked decrypt.
package fhe

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"cipherledger/internal/models"
)

// Kind discriminates the plaintext type behind a handle.
type Kind byte

const (
	KindUint128 Kind = iota
	KindBool
)

const valueBytes = 16

var (
	ErrUnknownHandle     = errors.New("unknown ciphertext handle")
	ErrAccessDenied      = errors.New("principal not granted for handle")
	ErrProofInvalid      = errors.New("ciphertext validity proof rejected")
	ErrAccountRegistered = errors.New("account already registered")
	ErrUnknownAccount    = errors.New("account not registered")
)

// uint128Mod is 2^128, the wraparound modulus for all stored integers.
var uint128Mod = new(big.Int).Lsh(big.NewInt(1), 128)

type sealedValue struct {
	nonce      []byte
	ciphertext []byte
	kind       Kind
}

// Store holds sealed values, the per-handle access registry and the
// per-account input keys used for validity proofs.
type Store struct {
	mu        sync.RWMutex
	aead      aeadCipher
	values    map[models.Handle]sealedValue
	acl       map[models.Handle]map[string]struct{}
	inputKeys map[string][]byte
}

type aeadCipher interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// NewStore creates an encrypted-state store with a fresh sealing key.
func NewStore() (*Store, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate store key: %w", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store cipher: %w", err)
	}

	return &Store{
		aead:      aead,
		values:    make(map[models.Handle]sealedValue),
		acl:       make(map[models.Handle]map[string]struct{}),
		inputKeys: make(map[string][]byte),
	}, nil
}

// seal encrypts kind||value and stores it, returning the derived handle.
// Caller must hold s.mu.
func (s *Store) seal(value *big.Int, kind Kind) (models.Handle, error) {
	plaintext := make([]byte, 1+valueBytes)
	plaintext[0] = byte(kind)
	value.FillBytes(plaintext[1:])

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return models.ZeroHandle, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := s.aead.Seal(nil, nonce, plaintext, nil)
	handle := deriveHandle(nonce, ciphertext)

	s.values[handle] = sealedValue{nonce: nonce, ciphertext: ciphertext, kind: kind}
	return handle, nil
}

// open decrypts the sealed value behind a handle. The zero handle opens
// to integer zero for every kind. Caller must hold s.mu for reading.
func (s *Store) open(handle models.Handle) (*big.Int, Kind, error) {
	if handle.IsZero() {
		return new(big.Int), KindUint128, nil
	}

	sv, ok := s.values[handle]
	if !ok {
		return nil, 0, ErrUnknownHandle
	}

	plaintext, err := s.aead.Open(nil, sv.nonce, sv.ciphertext, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open sealed value: %w", err)
	}

	return new(big.Int).SetBytes(plaintext[1:]), sv.kind, nil
}

// EncryptUint performs a trivial encryption of a plaintext integer into
// the store. Used by the engine for zero fallbacks and inert results.
func (s *Store) EncryptUint(value *big.Int) (models.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := new(big.Int).Mod(value, uint128Mod)
	return s.seal(v, KindUint128)
}

// EncryptBool performs a trivial encryption of a plaintext boolean.
func (s *Store) EncryptBool(value bool) (models.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := big.NewInt(0)
	if value {
		v.SetInt64(1)
	}
	return s.seal(v, KindBool)
}

// Allow adds a principal to the access registry for a handle. The zero
// handle is implicitly decryptable by everyone.
func (s *Store) Allow(handle models.Handle, principal string) {
	if handle.IsZero() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grants, ok := s.acl[handle]
	if !ok {
		grants = make(map[string]struct{})
		s.acl[handle] = grants
	}
	grants[principal] = struct{}{}
}

// IsAllowed reports whether the principal may decrypt the handle.
func (s *Store) IsAllowed(handle models.Handle, principal string) bool {
	if handle.IsZero() {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	grants, ok := s.acl[handle]
	if !ok {
		return false
	}
	_, ok = grants[principal]
	return ok
}

// Decrypt opens a handle on behalf of a principal, enforcing the access
// registry. The zero handle decrypts to zero for any principal.
func (s *Store) Decrypt(handle models.Handle, principal string) (*big.Int, Kind, error) {
	if handle.IsZero() {
		return new(big.Int), KindUint128, nil
	}

	if !s.IsAllowed(handle, principal) {
		return nil, 0, ErrAccessDenied
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open(handle)
}

func deriveHandle(nonce, ciphertext []byte) models.Handle {
	hasher := sha256.New()
	hasher.Write(nonce)
	hasher.Write(ciphertext)

	var handle models.Handle
	copy(handle[:], hasher.Sum(nil))
	return handle
}
