// Package audit emits docvault's security events.
//
// Every ledger mutation and enclave re-encryption produces an event:
// create, update, grant, reencrypt. Events are written to stdout in
// RFC5424 syslog format with structured data carrying the indexed
// document id and identity fields, and optionally persisted to a
// dedicated database when AUDIT_DATABASE_URL is set.
//
// Audit logging is on by default; set DOCVAULT_AUDIT_ENABLED=false to
// turn it off.
package audit
