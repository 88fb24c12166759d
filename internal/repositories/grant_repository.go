package repositories

import (
	"errors"
	"fmt"
	"time"

	"cipherledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrGrantNotFound   = errors.New("decryption grant not found")
	ErrKeyPairNotFound = errors.New("key pair not found")
)

// GrantRepository handles database operations for decryption grants and
// cached key pairs.
type GrantRepository struct {
	db *gorm.DB
}

// NewGrantRepository creates a new grant repository
func NewGrantRepository(db *gorm.DB) GrantRepositoryInterface {
	return &GrantRepository{
		db: db,
	}
}

// SaveGrant upserts a grant by its store key. The same canonical message
// always maps to the same row.
func (r *GrantRepository) SaveGrant(grant *models.DecryptionGrant) error {
	if grant == nil {
		return errors.New("grant cannot be nil")
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"signature", "start_timestamp", "duration_days"}),
	}).Create(grant).Error
	if err != nil {
		return fmt.Errorf("failed to save grant: %w", err)
	}

	return nil
}

// GetGrantByStoreKey retrieves a grant by its "account:messageHash" key.
func (r *GrantRepository) GetGrantByStoreKey(storeKey string) (*models.DecryptionGrant, error) {
	var grant models.DecryptionGrant

	if err := r.db.Where("store_key = ?", storeKey).First(&grant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGrantNotFound
		}
		return nil, fmt.Errorf("failed to get grant by store key: %w", err)
	}

	return &grant, nil
}

// SaveKeyPair upserts the cached key pair for an account.
func (r *GrantRepository) SaveKeyPair(pair *models.KeyPairRecord) error {
	if pair == nil {
		return errors.New("key pair cannot be nil")
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"public_key", "private_key"}),
	}).Create(pair).Error
	if err != nil {
		return fmt.Errorf("failed to save key pair: %w", err)
	}

	return nil
}

// GetKeyPairByStoreKey retrieves a cached key pair by its
// "keypair:account" key.
func (r *GrantRepository) GetKeyPairByStoreKey(storeKey string) (*models.KeyPairRecord, error) {
	var pair models.KeyPairRecord

	if err := r.db.Where("store_key = ?", storeKey).First(&pair).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyPairNotFound
		}
		return nil, fmt.Errorf("failed to get key pair by store key: %w", err)
	}

	return &pair, nil
}

// DeleteExpiredGrants removes grants whose validity window has closed.
func (r *GrantRepository) DeleteExpiredGrants(now time.Time) (int64, error) {
	result := r.db.Where("start_timestamp + duration_days * 86400 <= ?", now.Unix()).
		Delete(&models.DecryptionGrant{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired grants: %w", result.Error)
	}

	return result.RowsAffected, nil
}
