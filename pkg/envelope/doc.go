// Package envelope provides the symmetric cryptography for docvault.
//
// It has two layers. SymmetricCipher is the low-level AES-256-GCM cipher
// used by the enclave to seal access keys at rest. The body codec
// (DeriveCipherKey, EncryptBody, DecryptBody) is the client-side envelope
// for document bodies: a cipher key is derived from the document access
// key with SHA-256, and bodies are stored as base64(nonce ∥ ciphertext+tag)
// with a 12-byte random nonce.
//
//	cipherKey := envelope.DeriveCipherKey(accessKey)
//	blob, err := envelope.EncryptBody([]byte("draft"), cipherKey)
//	plaintext, err := envelope.DecryptBody(blob, cipherKey)
//
// Decryption fails with ErrIntegrity when the tag does not verify and with
// ErrMalformed when the blob cannot carry a nonce. An empty blob decodes
// to an empty body without invoking the cipher.
package envelope
