package client

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignedFromUint128_PositiveUnchanged(t *testing.T) {
	small := big.NewInt(123456)
	assert.Equal(t, int64(123456), SignedFromUint128(small).Int64())
	assert.Equal(t, int64(0), SignedFromUint128(new(big.Int)).Int64())
}

func TestSignedFromUint128_WrappedNegative(t *testing.T) {
	// 2^128 - 1000 is how the homomorphic layer represents -1000.
	raw := new(big.Int).Sub(fullRange, big.NewInt(1000))
	assert.Equal(t, int64(-1000), SignedFromUint128(raw).Int64())
}

func TestSignedFromUint128_HalfRangeBoundary(t *testing.T) {
	// Just below the threshold stays positive.
	belowRaw := new(big.Int).Sub(halfRange, big.NewInt(1))
	assert.Equal(t, belowRaw, SignedFromUint128(belowRaw))

	// The threshold itself is the most negative value.
	atRaw := new(big.Int).Set(halfRange)
	expected := new(big.Int).Neg(halfRange)
	assert.Equal(t, expected, SignedFromUint128(atRaw))
}

func TestSignedFromUint128_DoesNotMutateInput(t *testing.T) {
	raw := new(big.Int).Sub(fullRange, big.NewInt(7))
	original := new(big.Int).Set(raw)
	SignedFromUint128(raw)
	assert.Equal(t, original, raw)
}
