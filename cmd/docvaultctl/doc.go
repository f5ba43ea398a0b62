// Package main implements docvaultctl, the CLI for the docvault server.
//
// docvault stores named documents whose bodies are encrypted client-side
// under per-document access keys. The keys themselves live sealed in an
// in-process vault; editors recover them through a signed re-encryption
// handshake, so the server never needs to hold a key in the clear on
// behalf of a client.
//
// # Quick Start
//
//	# Generate a sealing key for the vault
//	export DOCVAULT_DATA_KEY="$(docvaultctl data-key generate)"
//
//	# Run database migrations
//	docvaultctl db migrate
//
//	# Run the server
//	docvaultctl server
//
//	# Or run without a database for local development
//	docvaultctl server --dev
package main
