/*
PURPOSE:
  Records what each run read and wrote. Experiments get re-processed
  months later; the manifest answers "which archive built this CSV and
  when" without digging through shell history.

REQUIREMENTS:
  User-specified:
  - One manifest per command run, next to the outputs.
  - Every artifact listed with its record count.

  Implementation-discovered:
  - Runs need stable identifiers so notebooks can cite them; UUIDs are
    cheap and collision-free across machines.
  - Timestamps must be UTC or cross-machine comparisons lie.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Depends on: github.com/google/uuid

ERROR HANDLING:
  - Write failures surface to the caller; a run without a manifest is
    still a successful run.

IMPLEMENTATION RULES:
  - Indented JSON; manifests are read by humans first.

USAGE:
  m := manifest.New("flatten", "mega.json.gz")
  m.AddOutput("csv", "results.csv", 120)
  err := m.Write("flatten_manifest.json")

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/cli/consolidate.go
  - internal/cli/flatten.go

MAINTENANCE:
  - Add fields freely; readers tolerate unknown keys.
*/

package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Entry describes one artifact produced by a run.
type Entry struct {
	Type    string `json:"type"`
	Path    string `json:"path"`
	Records int    `json:"records"`
}

// Manifest describes a single command invocation.
type Manifest struct {
	RunID      string    `json:"run_id"`
	Command    string    `json:"command"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outputs    []Entry   `json:"outputs"`
}

// New starts a manifest for one command run against one input source.
func New(command, source string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Command:   command,
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}

// AddOutput records one produced artifact.
func (m *Manifest) AddOutput(kind, path string, records int) {
	m.Outputs = append(m.Outputs, Entry{Type: kind, Path: path, Records: records})
}

// Write stamps the finish time and writes the manifest as indented
// JSON, overwriting any previous manifest at path.
func (m *Manifest) Write(path string) error {
	m.FinishedAt = time.Now().UTC()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// Load reads a manifest back, mainly for tests and tooling.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}
