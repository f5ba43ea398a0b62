package handshake

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/curve25519"

	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/identity"
)

// DefaultWindow is the validity window stamped on re-encryption requests.
const DefaultWindow = 7 * 24 * time.Hour

// ErrDecryptionFailed is returned when a re-encrypted response is
// malformed or cannot be opened with the ephemeral key generated for the
// request.
var ErrDecryptionFailed = errors.New("unable to decrypt re-encrypted access key")

// Client drives the re-encryption handshake for one identity. It is
// stateless across calls: every RecoverKey generates a fresh ephemeral
// keypair that is discarded when the call returns, so concurrent
// handshakes do not interfere.
type Client struct {
	vault   enclave.KeyVault
	key     *identity.SignerKey
	context identity.ID
	window  time.Duration
}

// New creates a handshake client for the given signing key against the
// ledger context address.
func New(vault enclave.KeyVault, key *identity.SignerKey, context identity.ID) *Client {
	return &Client{
		vault:   vault,
		key:     key,
		context: context,
		window:  DefaultWindow,
	}
}

// WithWindow overrides the request validity window.
func (c *Client) WithWindow(window time.Duration) *Client {
	c.window = window
	return c
}

// RecoverKey recovers the plaintext access key behind a sealed handle.
// The caller must be in the handle's authorization set. The returned key
// lives only in the caller's memory; it is never logged or persisted.
func (c *Client) RecoverKey(ctx context.Context, handle enclave.Handle) ([]byte, error) {
	var ephPriv [32]byte
	if _, err := io.ReadFull(rand.Reader, ephPriv[:]); err != nil {
		return nil, err
	}

	ephPub, err := curve25519.X25519(ephPriv[:], curve25519.Basepoint)
	if err != nil {
		return nil, err
	}

	req := enclave.ReencryptRequest{
		Context:   c.context,
		StartAt:   time.Now(),
		Duration:  c.window,
		PublicKey: c.key.Public(),
	}
	copy(req.EphemeralPublicKey[:], ephPub)
	req.Signature = c.key.Sign(enclave.ReencryptDomain, req.SignedPayload())

	// Bound the vault call by the request's own validity window.
	callCtx, cancel := context.WithTimeout(ctx, c.window)
	defer cancel()

	blob, err := c.vault.Reencrypt(callCtx, handle, req)
	if err != nil {
		return nil, fmt.Errorf("re-encryption request for handle %s rejected: %w", handle, err)
	}

	accessKey, err := enclave.OpenReencrypted(ephPriv, handle, blob)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return accessKey, nil
}
