// Package db embeds the SQL migration files so production builds carry
// the schema with the binary.
package db

import "embed"

// Migrations holds the embedded migration files under db/migrations.
//
//go:embed migrations
var Migrations embed.FS
