package repositories

import (
	"time"

	"cipherledger/internal/models"
)

// GrantRepositoryInterface is the grant persistence boundary: a generic
// key-value shape keyed by "accountAddress:messageHash" for grants and
// "keypair:accountAddress" for cached key pairs.
type GrantRepositoryInterface interface {
	SaveGrant(grant *models.DecryptionGrant) error
	GetGrantByStoreKey(storeKey string) (*models.DecryptionGrant, error)
	SaveKeyPair(pair *models.KeyPairRecord) error
	GetKeyPairByStoreKey(storeKey string) (*models.KeyPairRecord, error)
	DeleteExpiredGrants(now time.Time) (int64, error)
}

// EventRepositoryInterface persists observable ledger events (plaintext
// metadata only).
type EventRepositoryInterface interface {
	Create(event *models.LedgerEvent) error
	ListByAccount(accountAddress string, offset, limit int) ([]*models.LedgerEvent, int64, error)
}
