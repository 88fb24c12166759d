package authz

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"cipherledger/internal/fhe"
	"cipherledger/internal/models"
)

var (
	ErrDecryptionFailed = errors.New("decryption service rejected the batch")
	ErrUnknownSignerKey = errors.New("no verification key registered for account")
)

// HandlePair names one handle together with the contract it lives in.
type HandlePair struct {
	Handle   models.Handle
	Contract string
}

// DecryptedValue is one decoded primitive: a 128-bit unsigned integer,
// or a boolean represented as 0/1.
type DecryptedValue struct {
	Value  *big.Int
	IsBool bool
	Bool   bool
}

// DecryptionServiceInterface is the decryption service boundary: a
// grant plus (handle, contract) pairs in, plaintext primitives out.
// Callers must not assume partial results are usable on error.
type DecryptionServiceInterface interface {
	DecryptBatch(grant *models.DecryptionGrant, pairs []HandlePair) (map[models.Handle]DecryptedValue, error)
}

// EnvironmentDecryptor honors grants against the in-process
// encrypted-state store. It verifies the grant signature with the
// account's registered long-term key, the validity window, and contract
// coverage before consulting the access registry per handle.
type EnvironmentDecryptor struct {
	env *fhe.Store

	mu         sync.RWMutex
	signerKeys map[string]ed25519.PublicKey

	now func() time.Time
}

// NewEnvironmentDecryptor creates a decryptor over the encrypted store.
func NewEnvironmentDecryptor(env *fhe.Store) *EnvironmentDecryptor {
	return &EnvironmentDecryptor{
		env:        env,
		signerKeys: make(map[string]ed25519.PublicKey),
		now:        time.Now,
	}
}

// RegisterSignerKey records the long-term verification key for an
// account. Grants from unregistered accounts are rejected.
func (d *EnvironmentDecryptor) RegisterSignerKey(accountAddress string, key ed25519.PublicKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.signerKeys[accountAddress] = key
}

// DecryptBatch verifies the grant and decrypts every pair. Any failure
// abandons the batch wholesale.
func (d *EnvironmentDecryptor) DecryptBatch(grant *models.DecryptionGrant, pairs []HandlePair) (map[models.Handle]DecryptedValue, error) {
	if grant == nil {
		return nil, fmt.Errorf("%w: nil grant", ErrDecryptionFailed)
	}
	if !grant.IsValidAt(d.now()) {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, ErrGrantExpired)
	}
	if err := d.verifyGrantSignature(grant); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	results := make(map[models.Handle]DecryptedValue, len(pairs))
	for _, pair := range pairs {
		if !grant.CoversContract(pair.Contract) {
			return nil, fmt.Errorf("%w: contract %s not covered by grant", ErrDecryptionFailed, pair.Contract)
		}

		value, kind, err := d.env.Decrypt(pair.Handle, grant.AccountAddress)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
		}

		results[pair.Handle] = decodePrimitive(value, kind)
	}

	return results, nil
}

func (d *EnvironmentDecryptor) verifyGrantSignature(grant *models.DecryptionGrant) error {
	d.mu.RLock()
	key, ok := d.signerKeys[grant.AccountAddress]
	d.mu.RUnlock()
	if !ok {
		return ErrUnknownSignerKey
	}

	var ephemeral [32]byte
	copy(ephemeral[:], grant.PublicKey)
	message := NewAuthMessage(ephemeral, grant.Contracts(), grant.StartTimestamp, grant.DurationDays)

	if !ed25519.Verify(key, message.Canonical(), grant.Signature) {
		return errors.New("grant signature verification failed")
	}
	return nil
}

func decodePrimitive(value *big.Int, kind fhe.Kind) DecryptedValue {
	if kind == fhe.KindBool {
		return DecryptedValue{Value: value, IsBool: true, Bool: value.Sign() != 0}
	}
	return DecryptedValue{Value: value}
}

// RedeemBatch filters canonical-zero handles out of the request, since
// they decrypt to zero/false by definition, then redeems the remainder
// against the grant. The zero result is injected locally.
func RedeemBatch(service DecryptionServiceInterface, grant *models.DecryptionGrant, pairs []HandlePair) (map[models.Handle]DecryptedValue, error) {
	toSend := make([]HandlePair, 0, len(pairs))
	for _, pair := range pairs {
		if pair.Handle.IsZero() {
			continue
		}
		toSend = append(toSend, pair)
	}

	results := make(map[models.Handle]DecryptedValue, len(pairs))
	if len(toSend) > 0 {
		decrypted, err := service.DecryptBatch(grant, toSend)
		if err != nil {
			return nil, err
		}
		for h, v := range decrypted {
			results[h] = v
		}
	}

	results[models.ZeroHandle] = DecryptedValue{Value: new(big.Int)}
	return results, nil
}
