// Package migrations embeds the SQL schema migrations applied at boot
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
