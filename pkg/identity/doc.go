// Package identity defines docvault account identities and signing keys.
//
// An identity is a fixed-width 20-byte account reference derived from an
// ed25519 public key (truncated SHA-256), rendered as a 0x-prefixed hex
// string. All ownership and authorization checks in the ledger and the
// enclave operate on these identities.
//
// SignerKey wraps the long-term ed25519 key behind an identity. Signatures
// are domain-separated so a signature produced for one protocol step can
// never be replayed in another:
//
//	key, err := identity.GenerateKey()
//	sig := key.Sign("docvault/reencrypt/v1", payload)
//	ok := identity.Verify(key.Public(), "docvault/reencrypt/v1", payload, sig)
//
// The package also carries the request-scoped identity through a
// context.Context, set by the HTTP auth middleware and read by endpoint
// handlers.
package identity
