package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

const pemBlockType = "PRIVATE KEY"

// SignerKey is a long-term ed25519 signing key. Its derived address is the
// holder's account identity for ownership and authorization checks.
type SignerKey struct {
	priv ed25519.PrivateKey
}

// GenerateKey generates a new ed25519 signing key.
func GenerateKey() (*SignerKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return &SignerKey{priv: priv}, nil
}

// NewKeyFromPEM parses a PKCS#8 PEM-encoded ed25519 private key.
func NewKeyFromPEM(data []byte) (*SignerKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemBlockType {
		return nil, fmt.Errorf("no %s PEM block found", pemBlockType)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key is %T, want ed25519", parsed)
	}

	return &SignerKey{priv: priv}, nil
}

// PrivatePEM returns the PKCS#8 PEM encoding of the private key.
func (k *SignerKey) PrivatePEM() ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(k.priv)
	if err != nil {
		return nil, err
	}

	return pem.EncodeToMemory(&pem.Block{Type: pemBlockType, Bytes: der}), nil
}

// Private returns the raw ed25519 private key, for signers that take the
// key directly.
func (k *SignerKey) Private() ed25519.PrivateKey {
	return k.priv
}

// Public returns the ed25519 public key.
func (k *SignerKey) Public() ed25519.PublicKey {
	return k.priv.Public().(ed25519.PublicKey)
}

// Address returns the account identity derived from the public key.
func (k *SignerKey) Address() ID {
	return AddressOf(k.Public())
}

// Sign produces a domain-separated signature over value. The domain tag
// keeps signatures from one protocol step from being replayed in another.
func (k *SignerKey) Sign(domain string, value []byte) []byte {
	return ed25519.Sign(k.priv, signedMessage(domain, value))
}

// Verify checks a domain-separated signature against a public key.
func Verify(pub ed25519.PublicKey, domain string, value, signature []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, signedMessage(domain, value), signature)
}

func signedMessage(domain string, value []byte) []byte {
	msg := make([]byte, 0, len(domain)+1+len(value))
	msg = append(msg, domain...)
	msg = append(msg, 0x00)
	msg = append(msg, value...)
	return msg
}
