// Package migrations embeds the CLI session schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
