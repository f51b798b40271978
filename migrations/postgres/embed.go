// Package migrations embebe los scripts SQL del Identity Store.
package migrations

import "embed"

// FS contiene los scripts *_up.sql, aplicados en orden lexicográfico.
//
//go:embed *.sql
var FS embed.FS
