package enclave

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"time"

	"github.com/docvault/docvault/pkg/identity"
)

// Handle is an opaque reference to a value held sealed by the enclave. It
// carries no plaintext.
type Handle string

// Signature domains for enclave-facing proofs. See identity.SignerKey.
const (
	SealProofDomain = "docvault/seal/v1"
	ReencryptDomain = "docvault/reencrypt/v1"
)

// ErrInvalidProof is returned when a sealing proof fails verification.
var ErrInvalidProof = errors.New("sealing proof verification failed")

// ErrUnknownHandle is returned when a handle does not reference a sealed value.
var ErrUnknownHandle = errors.New("unknown sealed value handle")

// ErrUnauthorized is returned when a re-encryption request is signed by an
// identity outside the handle's authorization set, or carries a bad
// signature.
var ErrUnauthorized = errors.New("identity is not authorized for handle")

// ErrExpiredRequest is returned when a re-encryption request is presented
// outside its signed validity window.
var ErrExpiredRequest = errors.New("re-encryption request outside validity window")

// Proof demonstrates that the identity submitting a value for sealing
// actually holds it: a domain-separated signature over the value by the
// submitter's long-term key.
type Proof struct {
	PublicKey ed25519.PublicKey
	Signature []byte
}

// ReencryptRequest is the signed, time-bounded capability token that gates
// re-encryption of a sealed value. The request carries its own expiry and
// is verified independently of any session state.
type ReencryptRequest struct {
	// EphemeralPublicKey is the requester's one-shot X25519 public key. The
	// response is decryptable only with the matching private key.
	EphemeralPublicKey [32]byte

	// Context is the ledger context address the handle is bound to.
	Context identity.ID

	// StartAt and Duration bound the request's validity window.
	StartAt  time.Time
	Duration time.Duration

	// PublicKey and Signature authenticate the requester. The signature
	// covers SignedPayload under ReencryptDomain; the signer's derived
	// address must be in the handle's authorization set.
	PublicKey ed25519.PublicKey
	Signature []byte
}

// SignedPayload is the byte string covered by the request signature:
// ephemeral public key ∥ context ∥ start unix seconds ∥ window seconds.
func (r ReencryptRequest) SignedPayload() []byte {
	payload := make([]byte, 0, 32+identity.Size+16)
	payload = append(payload, r.EphemeralPublicKey[:]...)
	payload = append(payload, r.Context[:]...)
	payload = binary.BigEndian.AppendUint64(payload, uint64(r.StartAt.Unix()))
	payload = binary.BigEndian.AppendUint64(payload, uint64(r.Duration/time.Second))
	return payload
}

// KeyVault abstracts the confidential-computation coprocessor: it holds
// sealed values, extends read authorization, and re-encrypts sealed values
// to requester-chosen ephemeral keys. Implementations may be in-process or
// remote, so every operation takes a context.
type KeyVault interface {
	// Seal stores a value in sealed form after verifying the submitter's
	// proof, binding the handle to a context address. Re-encryption
	// requests must name the same context. Returns ErrInvalidProof if
	// verification fails.
	Seal(ctx context.Context, value []byte, proof Proof, binding identity.ID) (Handle, error)

	// Authorize extends the handle's authorization set to an identity.
	// Authorization is monotone: repeat grants are no-ops, and there is no
	// removal operation.
	Authorize(ctx context.Context, handle Handle, id identity.ID) error

	// Reencrypt verifies a signed, time-bounded request and returns the
	// sealed value re-encrypted under the request's ephemeral public key.
	// Fails with ErrUnauthorized or ErrExpiredRequest.
	Reencrypt(ctx context.Context, handle Handle, req ReencryptRequest) ([]byte, error)
}
