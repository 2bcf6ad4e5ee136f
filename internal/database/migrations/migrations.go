// Package migrations embeds the SQL schema for the durable key-value backends.
package migrations

import "embed"

// FS holds one directory of goose migrations per SQL dialect.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
