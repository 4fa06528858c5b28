/*
PURPOSE:
  Merges the per-trial result files scattered under a results directory
  into a single archive. Experiment runs write one small JSON file per
  trial; analysis wants one file.

REQUIREMENTS:
  User-specified:
  - Scan the source directory recursively (runs nest under
    per-experiment subdirectories).
  - Return how many files were merged (per original Python script, the
    count is reported before anything is written).
  - Any unreadable or malformed file aborts the whole merge; a partial
    archive is worse than none.

  Implementation-discovered:
  - Directory walk order is platform-dependent; sort the listing so the
    archive is reproducible.
  - A previous archive sitting inside the source tree must be excluded,
    or it gets folded into itself on the next run.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Depends on: internal/archive, internal/output

ERROR HANDLING:
  - First failing file wins; its path is in the wrapped error.
  - Nothing is written to the destination until every record is in hand.

IMPLEMENTATION RULES:
  - Records pass through as raw JSON. Consolidation must never reshape
    or reinterpret trial data.

USAGE:
  count, err := consolidate.Consolidate("results", "mega.json.gz", ".json")

SELF-HEALING INSTRUCTIONS:
  - Zero files found usually means the suffix does not match; runners
    write plain .json files.

RELATED FILES:
  - internal/archive/archive.go
  - internal/cli/consolidate.go

MAINTENANCE:
  - Keep the walk filter in sync with whatever naming scheme the
    experiment runner uses.
*/

package consolidate

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/calawell/probetab/internal/archive"
	"github.com/calawell/probetab/internal/output"
)

// Discover walks sourceDir and returns every file whose name ends in
// suffix, sorted lexicographically.
func Discover(sourceDir, suffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", sourceDir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Consolidate merges every result file under sourceDir into one archive
// at destPath and returns the number of files merged. The archive is
// written only after every file has been read successfully.
func Consolidate(sourceDir, destPath, suffix string) (int, error) {
	files, err := Discover(sourceDir, suffix)
	if err != nil {
		return 0, err
	}
	files = excludeDest(files, destPath)

	output.Logger.Info("Found result files", "dir", sourceDir, "count", len(files))

	records := make([]json.RawMessage, 0, len(files))
	for _, path := range files {
		rec, err := archive.LoadRecord(path)
		if err != nil {
			return 0, err
		}
		records = append(records, rec)
	}

	output.Logger.Info("Writing archive", "path", destPath, "records", len(records))
	if err := archive.Save(destPath, records); err != nil {
		return 0, err
	}

	return len(files), nil
}

// excludeDest drops destPath from the listing so an archive kept inside
// the source tree is never merged into its own successor.
func excludeDest(files []string, destPath string) []string {
	dest, err := filepath.Abs(destPath)
	if err != nil {
		return files
	}
	kept := make([]string, 0, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err == nil && abs == dest {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
