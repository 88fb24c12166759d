package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const secondsPerDay = 86400

// DecryptionGrant is a time-boxed, signed authorization letting one
// account decrypt handles tied to a fixed set of contract addresses.
// Persisted rows are keyed by "accountAddress:messageHash".
type DecryptionGrant struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StoreKey       string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"store_key"`
	AccountAddress string    `gorm:"type:varchar(64);index;not null" json:"account_address"`
	PublicKey      []byte    `gorm:"not null" json:"public_key"`
	PrivateKey     []byte    `gorm:"not null" json:"-"`
	Signature      []byte    `gorm:"not null" json:"signature"`
	ContractSet    string    `gorm:"type:text;not null" json:"contract_set"`
	StartTimestamp int64     `gorm:"not null" json:"start_timestamp"`
	DurationDays   int64     `gorm:"not null" json:"duration_days"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook for DecryptionGrant
func (g *DecryptionGrant) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	return nil
}

// TableName returns the table name for DecryptionGrant
func (g *DecryptionGrant) TableName() string {
	return "decryption_grants"
}

// Contracts returns the sorted contract-address set carried by the grant.
func (g *DecryptionGrant) Contracts() []string {
	if g.ContractSet == "" {
		return nil
	}
	return strings.Split(g.ContractSet, ",")
}

// CoversContract reports whether the contract address is in the grant's set.
func (g *DecryptionGrant) CoversContract(contract string) bool {
	for _, c := range g.Contracts() {
		if c == contract {
			return true
		}
	}
	return false
}

// ExpiresAt returns the instant the grant stops being honored.
func (g *DecryptionGrant) ExpiresAt() time.Time {
	return time.Unix(g.StartTimestamp+g.DurationDays*secondsPerDay, 0)
}

// IsValidAt reports whether the grant is inside its validity window.
// Re-checked on every use, including reads from any cache.
func (g *DecryptionGrant) IsValidAt(now time.Time) bool {
	return now.Before(g.ExpiresAt())
}

// KeyPairRecord persists the long-lived ephemeral key pair for an
// account, keyed by "keypair:accountAddress". The pair is stable across
// many grants; only signatures are re-derived per request.
type KeyPairRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StoreKey       string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"store_key"`
	AccountAddress string    `gorm:"type:varchar(64);index;not null" json:"account_address"`
	PublicKey      []byte    `gorm:"not null" json:"public_key"`
	PrivateKey     []byte    `gorm:"not null" json:"-"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook for KeyPairRecord
func (k *KeyPairRecord) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	return nil
}

// TableName returns the table name for KeyPairRecord
func (k *KeyPairRecord) TableName() string {
	return "key_pairs"
}

// GrantStoreKey builds the persistence key for a grant.
func GrantStoreKey(accountAddress string, messageHash [32]byte) string {
	return accountAddress + ":" + hex.EncodeToString(messageHash[:])
}

// GrantReuseKey builds the persistence key for a reusable grant. Unlike
// GrantStoreKey it excludes the start timestamp, so every request for
// the same account and contract set lands on the same row and can find
// a signature produced earlier in the validity window.
func GrantReuseKey(accountAddress string, contracts []string) string {
	digest := sha256.Sum256([]byte(strings.Join(contracts, ",")))
	return accountAddress + ":reuse:" + hex.EncodeToString(digest[:])
}

// KeyPairStoreKey builds the persistence key for an account key pair.
func KeyPairStoreKey(accountAddress string) string {
	return "keypair:" + accountAddress
}
