package authz

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// messageDomain separates grant signatures from any other use of the
// account's long-term key.
const messageDomain = "cipherledger/decrypt-grant/v1"

// AuthMessage is the canonical structured message a decryption grant
// signs over. Its identity is fully determined by the ephemeral public
// key, the sorted contract-address set, the start timestamp and the
// duration: equal inputs hash identically, which the grant store relies
// on for key derivation.
type AuthMessage struct {
	EphemeralPublicKey [32]byte
	Contracts          []string
	StartTimestamp     int64
	DurationDays       int64
}

// NewAuthMessage builds a canonical message, sorting the contract set.
func NewAuthMessage(ephemeralPublicKey [32]byte, contracts []string, startTimestamp, durationDays int64) AuthMessage {
	sorted := make([]string, len(contracts))
	copy(sorted, contracts)
	sort.Strings(sorted)

	return AuthMessage{
		EphemeralPublicKey: ephemeralPublicKey,
		Contracts:          sorted,
		StartTimestamp:     startTimestamp,
		DurationDays:       durationDays,
	}
}

// Canonical returns the deterministic byte encoding that is signed and
// hashed. Fields are length-prefixed so no two distinct messages share
// an encoding.
func (m AuthMessage) Canonical() []byte {
	buf := make([]byte, 0, 128)
	buf = append(buf, messageDomain...)
	buf = append(buf, m.EphemeralPublicKey[:]...)

	buf = binary.BigEndian.AppendUint32(buf, uint32(len(m.Contracts)))
	for _, contract := range m.Contracts {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(contract)))
		buf = append(buf, contract...)
	}

	buf = binary.BigEndian.AppendUint64(buf, uint64(m.StartTimestamp))
	buf = binary.BigEndian.AppendUint64(buf, uint64(m.DurationDays))
	return buf
}

// Hash returns the sha256 digest of the canonical encoding.
func (m AuthMessage) Hash() [32]byte {
	return sha256.Sum256(m.Canonical())
}
