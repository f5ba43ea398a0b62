package enclave

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/docvault/docvault/pkg/envelope"
)

// Re-encrypted response layout: vault ephemeral X25519 public key (32) ∥
// nonce (12) ∥ AES-256-GCM ciphertext+tag. The AEAD key is
// HKDF-SHA256(X25519 shared secret) with the handle bound into the info
// string, so a response for one handle cannot be opened as another's.

// sealToEphemeral encrypts value so that only the holder of the private
// key matching recipient can recover it.
func sealToEphemeral(recipient [32]byte, handle Handle, value []byte) ([]byte, error) {
	var priv [32]byte
	if _, err := io.ReadFull(rand.Reader, priv[:]); err != nil {
		return nil, err
	}

	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return nil, err
	}

	shared, err := curve25519.X25519(priv[:], recipient[:])
	if err != nil {
		return nil, err
	}

	aead, err := responseAEAD(shared, handle)
	if err != nil {
		return nil, err
	}

	nonce, err := envelope.RandomNonce()
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, 32+len(nonce)+len(value)+aead.Overhead())
	blob = append(blob, pub...)
	blob = append(blob, nonce...)
	return aead.Seal(blob, nonce, value, nil), nil
}

// OpenReencrypted recovers the plaintext value from a re-encrypted
// response using the requester's ephemeral private key.
func OpenReencrypted(ephemeralPrivate [32]byte, handle Handle, blob []byte) ([]byte, error) {
	if len(blob) < 32+envelope.NonceSize {
		return nil, errors.New("re-encrypted response is too short")
	}

	vaultPub := blob[:32]
	nonce := blob[32 : 32+envelope.NonceSize]
	cipherText := blob[32+envelope.NonceSize:]

	shared, err := curve25519.X25519(ephemeralPrivate[:], vaultPub)
	if err != nil {
		return nil, err
	}

	aead, err := responseAEAD(shared, handle)
	if err != nil {
		return nil, err
	}

	return aead.Open(nil, nonce, cipherText, nil)
}

func responseAEAD(shared []byte, handle Handle) (cipher.AEAD, error) {
	info := append([]byte(ReencryptDomain+"\x00"), handle...)

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, nil, info), key); err != nil {
		return nil, err
	}

	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(c)
}
