package models

import (
	"encoding/hex"
	"errors"
)

// HandleSize is the byte length of a ciphertext handle.
const HandleSize = 32

var (
	ErrInvalidHandle = errors.New("invalid ciphertext handle")
)

// Handle is an opaque reference to an encrypted value held by the
// encrypted-state store. Arithmetic on handles produces new handles;
// the plaintext never leaves the store.
type Handle [HandleSize]byte

// ZeroHandle is the canonical "no value" sentinel. Every consumer must
// treat it as the encrypted representation of zero, never as an error.
var ZeroHandle Handle

// IsZero reports whether the handle is the canonical zero sentinel.
func (h Handle) IsZero() bool {
	return h == ZeroHandle
}

// Hex returns the lowercase hex encoding of the handle.
func (h Handle) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	return h.Hex()
}

// ParseHandle decodes a hex-encoded handle.
func ParseHandle(s string) (Handle, error) {
	var h Handle

	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, ErrInvalidHandle
	}
	if len(raw) != HandleSize {
		return h, ErrInvalidHandle
	}

	copy(h[:], raw)
	return h, nil
}
