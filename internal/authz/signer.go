package authz

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Signer is an account's long-term signing identity. Grant signatures
// are produced interactively through it; the private key never enters
// the grant itself.
type Signer interface {
	Address() string
	PublicKey() ed25519.PublicKey
	Sign(message []byte) ([]byte, error)
}

// Ed25519Signer is the in-process Signer implementation.
type Ed25519Signer struct {
	address    string
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
}

// GenerateSigner creates a fresh long-term key pair. The account
// address is derived from the public key.
func GenerateSigner() (*Ed25519Signer, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	return &Ed25519Signer{
		address:    DeriveAddress(publicKey),
		publicKey:  publicKey,
		privateKey: privateKey,
	}, nil
}

// Address returns the account address bound to this signer.
func (s *Ed25519Signer) Address() string {
	return s.address
}

// PublicKey returns the long-term verification key.
func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.publicKey
}

// Sign signs a canonical message with the long-term key.
func (s *Ed25519Signer) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.privateKey, message), nil
}

// DeriveAddress maps a verification key to its account address:
// 0x + first 20 bytes of sha256(publicKey), hex encoded.
func DeriveAddress(publicKey ed25519.PublicKey) string {
	digest := sha256.Sum256(publicKey)
	return "0x" + hex.EncodeToString(digest[:20])
}
