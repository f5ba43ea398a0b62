// Package model defines the database models for the docvault ledger.
//
// # Core Models
//
//   - Document: ledger records with opaque encrypted bodies and sealed
//     access-key handles
//   - EditorGrant: append-only editor set membership per document
//
// # Database Schema
//
// The database uses PostgreSQL with two tables:
//
//   - documents: one row per document, bigserial id, never deleted
//   - editor_grants: one row per (document, editor) pair, insert order
//     preserved for the editor index, never deleted
//
// Bodies are stored exactly as submitted: the ledger never inspects or
// validates ciphertext contents.
package model
