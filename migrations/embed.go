// Package migrations carries the trip planner schema as goose SQL files.
package migrations

import "embed"

// FS is handed to goose.NewProvider by the API server, tripctl and the
// integration tests.
//
//go:embed *.sql
var FS embed.FS
