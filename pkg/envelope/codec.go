package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// ErrIntegrity is returned when a ciphertext fails authentication, either
// because it was tampered with or because the wrong key was used.
var ErrIntegrity = errors.New("body ciphertext failed integrity check")

// ErrMalformed is returned when a ciphertext blob is too short to carry a
// nonce or is not valid base64.
var ErrMalformed = errors.New("body ciphertext is malformed")

// DeriveCipherKey derives the symmetric body key from a document access key.
// The derivation is a plain SHA-256, so it is deterministic: recovering the
// same access key always yields the same cipher key.
func DeriveCipherKey(accessKey []byte) [32]byte {
	return sha256.Sum256(accessKey)
}

// EncryptBody encrypts a document body under a derived cipher key. The
// result is base64(nonce ∥ ciphertext+tag) with a fresh random nonce per
// call.
func EncryptBody(plaintext []byte, cipherKey [32]byte) (string, error) {
	aead, err := newBodyAEAD(cipherKey)
	if err != nil {
		return "", err
	}

	nonce, err := RandomNonce()
	if err != nil {
		return "", err
	}

	packed := aead.Seal(nonce, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(packed), nil
}

// DecryptBody reverses EncryptBody. An empty blob is the empty-body
// convention and decodes to nil without touching the cipher.
func DecryptBody(blob string, cipherKey [32]byte) ([]byte, error) {
	if blob == "" {
		return nil, nil
	}

	packed, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, ErrMalformed
	}

	if len(packed) < NonceSize {
		return nil, ErrMalformed
	}

	aead, err := newBodyAEAD(cipherKey)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, packed[:NonceSize], packed[NonceSize:], nil)
	if err != nil {
		return nil, ErrIntegrity
	}

	return plaintext, nil
}

func newBodyAEAD(cipherKey [32]byte) (cipher.AEAD, error) {
	c, err := aes.NewCipher(cipherKey[:])
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(c)
}
