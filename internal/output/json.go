/*
PURPOSE:
  Writes a flattened table to a JSON Lines file (NDJSON), one object
  per row. Optimized for machine parsing and jq-style spelunking.

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - JSON Lines is better than a single array here; downstream tools
    stream it line by line.
  - Object keys come out alphabetized (encoding/json sorts map keys);
    consumers must address cells by name, not position.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Consumes: internal/table.Table

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.

USAGE:
  err := output.WriteJSONL("results.jsonl", tbl)

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/table/table.go

MAINTENANCE:
  - Update if we switch to a plain JSON array (not recommended for
    streaming).
*/

package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/calawell/probetab/internal/table"
)

// WriteJSONL writes one JSON object per table row, overwriting any
// existing file.
func WriteJSONL(path string, tbl *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	cols := tbl.Columns()
	for _, row := range tbl.Rows() {
		obj := make(map[string]any, len(cols))
		for i, name := range cols {
			obj[name] = row[i]
		}
		if err := enc.Encode(obj); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}
	return f.Close()
}
