package enclave

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/docvault/docvault/pkg/envelope"
	"github.com/docvault/docvault/pkg/identity"
)

const handleSize = 16

// Ensure Vault implements KeyVault
var _ KeyVault = (*Vault)(nil)

// Vault is the in-process KeyVault. Values are sealed with AES-256-GCM
// under the vault data key, with the handle as associated data. The
// authorization table only ever grows; it is the single shared mutable
// resource across enclave operations and is guarded by one lock so grant
// and re-encryption checks always observe a consistent state.
type Vault struct {
	cipher envelope.SymmetricCipher

	mu       sync.RWMutex
	sealed   map[Handle][]byte
	acl      map[Handle]map[identity.ID]struct{}
	contexts map[Handle]identity.ID

	now func() time.Time
}

// NewVault creates a Vault sealing under the given 256-bit data key.
func NewVault(dataKey []byte) (*Vault, error) {
	cipher, err := envelope.NewSymmetric(dataKey)
	if err != nil {
		return nil, fmt.Errorf("unable to initiate vault cipher: %w", err)
	}

	return &Vault{
		cipher:   cipher,
		sealed:   map[Handle][]byte{},
		acl:      map[Handle]map[identity.ID]struct{}{},
		contexts: map[Handle]identity.ID{},
		now:      time.Now,
	}, nil
}

// Seal stores a value in sealed form after verifying the submitter's proof.
// The handle is bound to the given context address for the rest of its life.
func (v *Vault) Seal(_ context.Context, value []byte, proof Proof, binding identity.ID) (Handle, error) {
	if !identity.Verify(proof.PublicKey, SealProofDomain, value, proof.Signature) {
		return "", ErrInvalidProof
	}

	raw, err := envelope.RandomBytes(handleSize)
	if err != nil {
		return "", err
	}
	handle := Handle(hex.EncodeToString(raw))

	sealed, err := v.cipher.Encrypt([]byte(handle), value)
	if err != nil {
		return "", err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.sealed[handle] = sealed
	v.acl[handle] = map[identity.ID]struct{}{}
	v.contexts[handle] = binding

	return handle, nil
}

// Authorize extends the handle's authorization set to an identity.
func (v *Vault) Authorize(_ context.Context, handle Handle, id identity.ID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	members, ok := v.acl[handle]
	if !ok {
		return ErrUnknownHandle
	}

	members[id] = struct{}{}
	return nil
}

// Reencrypt verifies a signed, time-bounded request and returns the sealed
// value re-encrypted under the request's ephemeral public key.
func (v *Vault) Reencrypt(_ context.Context, handle Handle, req ReencryptRequest) ([]byte, error) {
	v.mu.RLock()
	sealed, ok := v.sealed[handle]
	members := v.acl[handle]
	bound := v.contexts[handle]
	v.mu.RUnlock()

	if !ok {
		return nil, ErrUnknownHandle
	}

	now := v.now()
	if req.Duration <= 0 || now.Before(req.StartAt) || now.After(req.StartAt.Add(req.Duration)) {
		return nil, ErrExpiredRequest
	}

	if !identity.Verify(req.PublicKey, ReencryptDomain, req.SignedPayload(), req.Signature) {
		return nil, ErrUnauthorized
	}

	// The signed context must match the one the handle was sealed under.
	if req.Context != bound {
		return nil, ErrUnauthorized
	}

	signer := identity.AddressOf(req.PublicKey)

	v.mu.RLock()
	_, authorized := members[signer]
	v.mu.RUnlock()

	if !authorized {
		return nil, ErrUnauthorized
	}

	value, err := v.cipher.Decrypt([]byte(handle), sealed)
	if err != nil {
		return nil, fmt.Errorf("sealed value corrupt for handle %s: %w", handle, err)
	}

	return sealToEphemeral(req.EphemeralPublicKey, handle, value)
}
