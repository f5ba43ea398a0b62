// Package handshake implements the client side of the re-encryption
// protocol that recovers a document access key from the enclave.
//
// Each handshake is a single-shot request/response exchange:
//
//  1. generate a fresh one-use X25519 ephemeral keypair
//  2. sign a time-bounded request naming the handle, the ledger context
//     address and the ephemeral public key
//  3. submit the request to the enclave, which checks the signature, the
//     validity window and the handle's authorization set
//  4. decrypt the response locally with the ephemeral private key
//
// Re-running the handshake for the same document always recovers the same
// underlying key, since the sealed value never changes. Failures are
// per-call and recoverable; the caller decides whether to retry, always
// with a fresh request.
package handshake
