// SPDX-License-Identifier: GPL-3.0-or-later
package migrations

import "embed"

// FS holds the schema migrations, they are written to run on sqlite3 and postgres alike.
//
//go:embed sql/*.sql
var FS embed.FS

const Root = "sql"
