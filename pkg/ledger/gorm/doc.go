// Package gorm provides the GORM-based implementation of the ledger.Store
// interface defined in the parent ledger package.
//
// Identities are persisted in their 0x-hex rendering and parsed back on
// read, so a corrupt row surfaces as an error instead of a zero identity.
package gorm
