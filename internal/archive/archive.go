/*
PURPOSE:
  Reads and writes result archives. An archive is a single JSON array of
  trial records, optionally gzip-compressed, produced by consolidating
  thousands of small per-trial files.

REQUIREMENTS:
  User-specified:
  - Preserve per-trial files byte-for-byte when merging (no field
    dropping, no key reordering of content we never parsed).
  - Compress archives transparently when the path ends in .gz.

  Implementation-discovered:
  - json.RawMessage keeps unparsed records intact while still validating
    their syntax on load.
  - gzip.Writer must be closed before the file, or the trailer is lost
    and the archive is unreadable.

ARCHITECTURE INTEGRATION:
  - Used by: internal/consolidate, internal/flatten, internal/cli
  - Depends on: internal/model

ERROR HANDLING:
  - Every error is wrapped with the offending path.
  - A malformed result file fails loudly; nothing is silently skipped.

IMPLEMENTATION RULES:
  - Compression is decided by file suffix alone, never by flag.
  - Save writes the whole archive in one shot; there is no append mode.

USAGE:
  raw, err := archive.LoadRecord("results/trial_004.json")
  err = archive.Save("mega.json.gz", records)
  results, err := archive.LoadResults("mega.json.gz")

SELF-HEALING INSTRUCTIONS:
  - "unexpected EOF" on load usually means a consolidation run was
    interrupted mid-write; re-run consolidate.

RELATED FILES:
  - internal/consolidate/consolidate.go
  - internal/flatten/flatten.go

MAINTENANCE:
  - If archives outgrow memory, switch Save/Load to streaming; current
    experiments top out a few thousand records.
*/

package archive

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/calawell/probetab/internal/model"
)

// gzSuffix marks archives that are stored gzip-compressed.
const gzSuffix = ".gz"

// Save serializes v as JSON to path, compressing when path ends in .gz.
func Save(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", path, err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, gzSuffix) {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode archive %s: %w", path, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return fmt.Errorf("failed to finish compressing %s: %w", path, err)
		}
	}
	return f.Close()
}

// Load reads the JSON document at path into v, decompressing when path
// ends in .gz.
func Load(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, gzSuffix) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to decompress %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to decode archive %s: %w", path, err)
	}
	return nil
}

// LoadRecord reads one per-trial result file and returns its JSON
// verbatim. The bytes are validated but not interpreted, so fields the
// record model does not know about survive consolidation.
func LoadRecord(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file %s: %w", path, err)
	}
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse result file %s: %w", path, err)
	}
	return raw, nil
}

// LoadResults reads an archive into typed trial records.
func LoadResults(path string) ([]model.Result, error) {
	var results []model.Result
	if err := Load(path, &results); err != nil {
		return nil, err
	}
	return results, nil
}
