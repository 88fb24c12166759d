package client

import (
	"math/big"

	"cipherledger/internal/authz"
)

// The encrypted store works over a fixed unsigned 128-bit width.
// Quantities produced by homomorphic subtraction may have wrapped, so
// their true sign has to be reconstructed as two's-complement here on
// the trusted client side.

var (
	fullRange = new(big.Int).Lsh(big.NewInt(1), 128)
	halfRange = new(big.Int).Lsh(big.NewInt(1), 127)
)

// SignedFromUint128 reinterprets a raw 128-bit unsigned value as
// two's-complement: values at or above the half-range threshold have the
// full range subtracted to recover the negative result.
func SignedFromUint128(raw *big.Int) *big.Int {
	v := new(big.Int).Set(raw)
	if v.Cmp(halfRange) >= 0 {
		v.Sub(v, fullRange)
	}
	return v
}

// signedUnits decodes a subtraction-produced quantity to int64 minor
// units.
func signedUnits(v authz.DecryptedValue) int64 {
	return SignedFromUint128(v.Value).Int64()
}

// plainUnits decodes an addition-only quantity, which is used as-is.
func plainUnits(v authz.DecryptedValue) int64 {
	return v.Value.Int64()
}

// asBool decodes a 0/1 comparison result.
func asBool(v authz.DecryptedValue) bool {
	return v.Value.Sign() != 0
}
