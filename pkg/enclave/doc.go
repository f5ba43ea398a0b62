// Package enclave models the confidential-computation coprocessor that
// holds document access keys in sealed form.
//
// The coprocessor is a black box to the rest of the system and exposes
// exactly three primitives through the KeyVault interface:
//
//   - Seal: accept a value under a caller-supplied proof, bind it to a
//     context address, and return an opaque handle
//   - Authorize: extend a handle's read authorization to an identity
//     (monotone, idempotent)
//   - Reencrypt: after verifying a signed, time-bounded request, return
//     the value re-encrypted under a requester-chosen ephemeral key
//
// Vault is the in-process implementation. Sealed values never leave it in
// the clear: Reencrypt output is decryptable only with the requester's
// ephemeral X25519 private key, which the requester discards after one
// use. The authorization table is append-only; there is no revocation.
package enclave
