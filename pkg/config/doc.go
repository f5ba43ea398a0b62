// Package config provides configuration management for the docvault server.
//
// This package handles loading and validating server configuration from
// environment variables and configuration files.
//
// # Configuration Sources
//
// Configuration is loaded from:
//
//   - Environment variables (primary)
//   - Configuration files (optional)
//
// # Key Configuration Options
//
//   - DOCVAULT_DATA_KEY: Vault sealing key
//   - DOCVAULT_AUDIT_ENABLED: Audit event logging
//   - DOCVAULT_LOG_LEVEL: Logging verbosity
//   - DATABASE_URL: Database connection
//   - PORT: Server listen port
package config
