// Package migrations embeds the remote store Postgres schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
