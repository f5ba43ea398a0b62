package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

// NonceSize is the width of the random nonce prefixed to every ciphertext.
const NonceSize = 12

// SymmetricCipher seals and opens byte blobs with authenticated encryption.
// Ciphertexts are laid out as nonce ∥ ciphertext+tag.
type SymmetricCipher interface {
	Encrypt(aad, plainText []byte) ([]byte, error)
	Decrypt(aad, packedText []byte) ([]byte, error)
}

type Symmetric struct {
	aesgcm cipher.AEAD
}

// NewSymmetric creates an AES-GCM cipher from a 16-, 24- or 32-byte key.
func NewSymmetric(key []byte) (SymmetricCipher, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}

	return &Symmetric{aesgcm: aesgcm}, nil
}

func (s Symmetric) Encrypt(aad, plainText []byte) ([]byte, error) {
	nonce, err := RandomNonce()
	if err != nil {
		return nil, err
	}

	return s.aesgcm.Seal(nonce, nonce, plainText, aad), nil
}

func (s Symmetric) Decrypt(aad, packedText []byte) ([]byte, error) {
	if len(packedText) < NonceSize {
		return nil, errors.New("ciphertext is shorter than the nonce")
	}

	nonce, cipherText := packedText[:NonceSize], packedText[NonceSize:]

	return s.aesgcm.Open(nil, nonce, cipherText, aad)
}

func RandomNonce() ([]byte, error) {
	// Never use more than 2^32 random nonces with a given key because of
	// the risk of a repeat.
	return RandomBytes(NonceSize)
}

func RandomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}

	return value, nil
}
