// Package ledger implements the document register: named encrypted
// documents with a single owner, a monotone editor set, and an opaque
// access-key handle pointing into the enclave vault. Persistence is
// behind the Store interface, with GORM and in-memory implementations in
// the subpackages.
package ledger
