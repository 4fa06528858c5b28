/*
PURPOSE:
  Writes a flattened table to a CSV file, the primary hand-off format
  for the analysis notebooks.

REQUIREMENTS:
  User-specified:
  - Output to CSV.
  - Overwrite on every run; stale rows from a previous flatten must not
    survive (per original Python script, which rewrote the whole frame).

  Implementation-discovered:
  - Floats need full round-trip precision; probabilities near 1e-30 are
    real data, not noise.
  - Cells are dynamically typed (fill values), so rendering has to
    switch on the Go type.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Consumes: internal/table.Table

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Header row first, always, even for an empty table.
  - Check writer.Error() after the final Flush.

USAGE:
  err := output.WriteCSV("results.csv", tbl)

SELF-HEALING INSTRUCTIONS:
  - If a spreadsheet shows probabilities as 0, the exponent got
    truncated downstream; the CSV itself keeps full precision.

RELATED FILES:
  - internal/table/table.go

MAINTENANCE:
  - Update formatCell when the flattener starts emitting new cell
    types.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/calawell/probetab/internal/table"
)

// WriteCSV writes the table to path, overwriting any existing file.
func WriteCSV(path string, tbl *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write(tbl.Columns()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(tbl.Columns()))
	for _, row := range tbl.Rows() {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}

// formatCell renders one cell for CSV. Floats keep round-trip
// precision.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
