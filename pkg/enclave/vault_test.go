package enclave

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"
	"time"

	"golang.org/x/crypto/curve25519"

	"github.com/docvault/docvault/pkg/identity"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()

	dataKey := make([]byte, 32)
	for i := range dataKey {
		dataKey[i] = byte(i)
	}

	vault, err := NewVault(dataKey)
	if err != nil {
		t.Fatalf("failed to create vault: %v", err)
	}
	return vault
}

// testContext is the binding address shared by sealTestValue and
// signedRequest, so requests match by default.
var testContext = identity.ID{0xc0}

func sealTestValue(t *testing.T, vault *Vault, key *identity.SignerKey, value []byte) Handle {
	t.Helper()

	proof := Proof{
		PublicKey: key.Public(),
		Signature: key.Sign(SealProofDomain, value),
	}

	handle, err := vault.Seal(context.Background(), value, proof, testContext)
	if err != nil {
		t.Fatalf("failed to seal value: %v", err)
	}
	return handle
}

func signedRequest(t *testing.T, key *identity.SignerKey, start time.Time, window time.Duration) (ReencryptRequest, [32]byte) {
	t.Helper()

	var ephPriv [32]byte
	if _, err := io.ReadFull(rand.Reader, ephPriv[:]); err != nil {
		t.Fatalf("failed to generate ephemeral key: %v", err)
	}
	ephPub, err := curve25519.X25519(ephPriv[:], curve25519.Basepoint)
	if err != nil {
		t.Fatalf("failed to derive ephemeral public key: %v", err)
	}

	req := ReencryptRequest{
		Context:   testContext,
		StartAt:   start,
		Duration:  window,
		PublicKey: key.Public(),
	}
	copy(req.EphemeralPublicKey[:], ephPub)
	req.Signature = key.Sign(ReencryptDomain, req.SignedPayload())

	return req, ephPriv
}

func TestSealRejectsInvalidProof(t *testing.T) {
	vault := newTestVault(t)
	key, _ := identity.GenerateKey()
	other, _ := identity.GenerateKey()

	value := []byte("access-key-material")

	// Signature by a different key than the one presented
	proof := Proof{
		PublicKey: key.Public(),
		Signature: other.Sign(SealProofDomain, value),
	}
	_, err := vault.Seal(context.Background(), value, proof, testContext)
	if !errors.Is(err, ErrInvalidProof) {
		t.Errorf("expected ErrInvalidProof, got %v", err)
	}

	// Signature over a different value
	proof = Proof{
		PublicKey: key.Public(),
		Signature: key.Sign(SealProofDomain, []byte("other value")),
	}
	_, err = vault.Seal(context.Background(), value, proof, testContext)
	if !errors.Is(err, ErrInvalidProof) {
		t.Errorf("expected ErrInvalidProof, got %v", err)
	}
}

func TestAuthorizeUnknownHandle(t *testing.T) {
	vault := newTestVault(t)
	key, _ := identity.GenerateKey()

	err := vault.Authorize(context.Background(), Handle("deadbeef"), key.Address())
	if !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle, got %v", err)
	}
}

func TestReencryptRoundTrip(t *testing.T) {
	vault := newTestVault(t)
	key, _ := identity.GenerateKey()
	value := []byte("160-bit-access-key!!")

	handle := sealTestValue(t, vault, key, value)
	if err := vault.Authorize(context.Background(), handle, key.Address()); err != nil {
		t.Fatalf("failed to authorize: %v", err)
	}

	req, ephPriv := signedRequest(t, key, time.Now(), 7*24*time.Hour)
	blob, err := vault.Reencrypt(context.Background(), handle, req)
	if err != nil {
		t.Fatalf("re-encryption failed: %v", err)
	}
	if bytes.Contains(blob, value) {
		t.Error("re-encrypted response must not contain the plaintext value")
	}

	recovered, err := OpenReencrypted(ephPriv, handle, blob)
	if err != nil {
		t.Fatalf("failed to open response: %v", err)
	}
	if !bytes.Equal(recovered, value) {
		t.Errorf("recovered value mismatch: got %q, want %q", recovered, value)
	}

	// The sealed value never changes: a second handshake with a fresh
	// ephemeral key recovers the same underlying value.
	req2, ephPriv2 := signedRequest(t, key, time.Now(), 7*24*time.Hour)
	blob2, err := vault.Reencrypt(context.Background(), handle, req2)
	if err != nil {
		t.Fatalf("second re-encryption failed: %v", err)
	}
	recovered2, err := OpenReencrypted(ephPriv2, handle, blob2)
	if err != nil {
		t.Fatalf("failed to open second response: %v", err)
	}
	if !bytes.Equal(recovered2, value) {
		t.Error("repeated handshakes should recover the same value")
	}
}

func TestReencryptRejectsUnauthorizedSigner(t *testing.T) {
	vault := newTestVault(t)
	owner, _ := identity.GenerateKey()
	outsider, _ := identity.GenerateKey()

	handle := sealTestValue(t, vault, owner, []byte("value"))
	_ = vault.Authorize(context.Background(), handle, owner.Address())

	req, _ := signedRequest(t, outsider, time.Now(), time.Hour)
	_, err := vault.Reencrypt(context.Background(), handle, req)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestReencryptRejectsWrongContext(t *testing.T) {
	vault := newTestVault(t)
	key, _ := identity.GenerateKey()

	handle := sealTestValue(t, vault, key, []byte("value"))
	_ = vault.Authorize(context.Background(), handle, key.Address())

	// A correctly signed request naming a context other than the one the
	// handle was sealed under must be rejected.
	req, _ := signedRequest(t, key, time.Now(), time.Hour)
	req.Context = identity.ID{0xde, 0xad}
	req.Signature = key.Sign(ReencryptDomain, req.SignedPayload())

	_, err := vault.Reencrypt(context.Background(), handle, req)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestReencryptRejectsTamperedSignature(t *testing.T) {
	vault := newTestVault(t)
	key, _ := identity.GenerateKey()

	handle := sealTestValue(t, vault, key, []byte("value"))
	_ = vault.Authorize(context.Background(), handle, key.Address())

	req, _ := signedRequest(t, key, time.Now(), time.Hour)
	req.Signature[0] ^= 0xff

	_, err := vault.Reencrypt(context.Background(), handle, req)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestReencryptRejectsRequestOutsideWindow(t *testing.T) {
	vault := newTestVault(t)
	key, _ := identity.GenerateKey()

	handle := sealTestValue(t, vault, key, []byte("value"))
	_ = vault.Authorize(context.Background(), handle, key.Address())

	t.Run("elapsed window", func(t *testing.T) {
		req, _ := signedRequest(t, key, time.Now().Add(-48*time.Hour), time.Hour)
		_, err := vault.Reencrypt(context.Background(), handle, req)
		if !errors.Is(err, ErrExpiredRequest) {
			t.Errorf("expected ErrExpiredRequest, got %v", err)
		}
	})

	t.Run("future start", func(t *testing.T) {
		req, _ := signedRequest(t, key, time.Now().Add(time.Hour), time.Hour)
		_, err := vault.Reencrypt(context.Background(), handle, req)
		if !errors.Is(err, ErrExpiredRequest) {
			t.Errorf("expected ErrExpiredRequest, got %v", err)
		}
	})

	t.Run("zero window", func(t *testing.T) {
		req, _ := signedRequest(t, key, time.Now(), 0)
		_, err := vault.Reencrypt(context.Background(), handle, req)
		if !errors.Is(err, ErrExpiredRequest) {
			t.Errorf("expected ErrExpiredRequest, got %v", err)
		}
	})
}

func TestReencryptUnknownHandle(t *testing.T) {
	vault := newTestVault(t)
	key, _ := identity.GenerateKey()

	req, _ := signedRequest(t, key, time.Now(), time.Hour)
	_, err := vault.Reencrypt(context.Background(), Handle("deadbeef"), req)
	if !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle, got %v", err)
	}
}

func TestOpenReencryptedRejectsWrongEphemeralKey(t *testing.T) {
	vault := newTestVault(t)
	key, _ := identity.GenerateKey()
	value := []byte("value")

	handle := sealTestValue(t, vault, key, value)
	_ = vault.Authorize(context.Background(), handle, key.Address())

	req, _ := signedRequest(t, key, time.Now(), time.Hour)
	blob, err := vault.Reencrypt(context.Background(), handle, req)
	if err != nil {
		t.Fatalf("re-encryption failed: %v", err)
	}

	var wrongPriv [32]byte
	wrongPriv[0] = 1
	if _, err := OpenReencrypted(wrongPriv, handle, blob); err == nil {
		t.Error("expected failure opening with the wrong ephemeral key")
	}
}
