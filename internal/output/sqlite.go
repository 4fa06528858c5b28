/*
PURPOSE:
  Writes a flattened table into a SQLite database so results can be
  queried with SQL instead of re-flattening the archive per question.

REQUIREMENTS:
  User-specified:
  - Optional output; only runs when a database path is configured.
  - Replace the table on every run, same as the CSV.

  Implementation-discovered:
  - "index" is a reserved word in SQLite, so every identifier must be
    quoted.
  - Fill columns are dynamically typed; affinities are inferred from
    the first row and default to TEXT.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Consumes: internal/table.Table

ERROR HANDLING:
  - All statements run in one transaction; a failed insert leaves the
    previous table intact.

IMPLEMENTATION RULES:
  - Use database/sql with the modernc.org/sqlite driver (pure Go, no
    cgo).
  - One prepared INSERT reused for every row.

USAGE:
  err := output.WriteSQLite("results.db", "results", tbl)

SELF-HEALING INSTRUCTIONS:
  - "database is locked" means another process holds the file; close
    open sqlite3 shells and re-run.

RELATED FILES:
  - internal/table/table.go

MAINTENANCE:
  - Revisit affinity inference if the flattener starts emitting more
    cell types.
*/

package output

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/calawell/probetab/internal/table"
)

// WriteSQLite replaces tableName in the database at path with the
// flattened table.
func WriteSQLite(path, tableName string, tbl *table.Table) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", path, err)
	}
	defer db.Close()

	cols := tbl.Columns()
	defs := make([]string, len(cols))
	for i, name := range cols {
		defs[i] = quoteIdent(name) + " " + affinity(tbl, i)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(tableName)); err != nil {
		return fmt.Errorf("failed to drop old table %s: %w", tableName, err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(tableName), strings.Join(defs, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	marks := strings.Repeat("?, ", len(cols))
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(tableName), strings.TrimSuffix(marks, ", "))
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for _, row := range tbl.Rows() {
		for i, cell := range row {
			args[i] = sqlValue(cell)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// quoteIdent makes a name safe to use as a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// affinity picks a column type from the first row's Go type. Empty
// tables and exotic cells get TEXT.
func affinity(tbl *table.Table, col int) string {
	if tbl.Len() == 0 {
		return "TEXT"
	}
	switch tbl.Rows()[0][col].(type) {
	case int, bool:
		return "INTEGER"
	case float64:
		return "REAL"
	default:
		return "TEXT"
	}
}

// sqlValue maps a cell to a driver-friendly value. Anything the driver
// cannot bind directly is stored as its string form.
func sqlValue(v any) any {
	switch v.(type) {
	case nil, string, int, float64, bool:
		return v
	default:
		return fmt.Sprint(v)
	}
}
