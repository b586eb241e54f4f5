// Package migrations embeds the SQL schema of the exchange log.
package migrations

import "embed"

// FS holds the numbered up/down migration files applied at startup.
//
//go:embed *.sql
var FS embed.FS
