package fhe

import (
	"math/big"

	"cipherledger/internal/models"
)

// Homomorphic operations. Each produces a fresh handle; operands are
// never mutated in place and the zero handle participates as encrypted
// zero. Integer results wrap at the fixed 128-bit width, so a subtraction
// that goes negative surfaces as a large unsigned value until the client
// reinterprets it as two's-complement.

// Add returns a handle for a + b (mod 2^128).
func (s *Store) Add(a, b models.Handle) (models.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	va, _, err := s.open(a)
	if err != nil {
		return models.ZeroHandle, err
	}
	vb, _, err := s.open(b)
	if err != nil {
		return models.ZeroHandle, err
	}

	return s.seal(va.Add(va, vb).Mod(va, uint128Mod), KindUint128)
}

// Sub returns a handle for a - b (mod 2^128).
func (s *Store) Sub(a, b models.Handle) (models.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	va, _, err := s.open(a)
	if err != nil {
		return models.ZeroHandle, err
	}
	vb, _, err := s.open(b)
	if err != nil {
		return models.ZeroHandle, err
	}

	return s.seal(va.Sub(va, vb).Mod(va, uint128Mod), KindUint128)
}

// Gt returns a boolean handle for a > b.
func (s *Store) Gt(a, b models.Handle) (models.Handle, error) {
	return s.compare(a, b, func(cmp int) bool { return cmp > 0 })
}

// Ge returns a boolean handle for a >= b.
func (s *Store) Ge(a, b models.Handle) (models.Handle, error) {
	return s.compare(a, b, func(cmp int) bool { return cmp >= 0 })
}

// Le returns a boolean handle for a <= b.
func (s *Store) Le(a, b models.Handle) (models.Handle, error) {
	return s.compare(a, b, func(cmp int) bool { return cmp <= 0 })
}

func (s *Store) compare(a, b models.Handle, test func(int) bool) (models.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	va, _, err := s.open(a)
	if err != nil {
		return models.ZeroHandle, err
	}
	vb, _, err := s.open(b)
	if err != nil {
		return models.ZeroHandle, err
	}

	result := big.NewInt(0)
	if test(va.Cmp(vb)) {
		result.SetInt64(1)
	}
	return s.seal(result, KindBool)
}
