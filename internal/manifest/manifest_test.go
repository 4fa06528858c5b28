package manifest

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestManifestRoundTrip(t *testing.T) {
	m := New("flatten", "mega.json.gz")
	m.AddOutput("csv", "results.csv", 120)
	m.AddOutput("sqlite", "results.db", 120)

	path := filepath.Join(t.TempDir(), "flatten_manifest.json")
	if err := m.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.Command != "flatten" || got.Source != "mega.json.gz" {
		t.Errorf("command/source = %q/%q", got.Command, got.Source)
	}
	if len(got.Outputs) != 2 {
		t.Fatalf("outputs = %d, want 2", len(got.Outputs))
	}
	if got.Outputs[1].Type != "sqlite" || got.Outputs[1].Records != 120 {
		t.Errorf("second output = %+v", got.Outputs[1])
	}
	if got.FinishedAt.Before(got.StartedAt) {
		t.Errorf("finished %v before started %v", got.FinishedAt, got.StartedAt)
	}
}

func TestManifestRunIDIsUUID(t *testing.T) {
	m := New("consolidate", "results")
	if _, err := uuid.Parse(m.RunID); err != nil {
		t.Errorf("run id %q is not a UUID: %v", m.RunID, err)
	}

	if New("consolidate", "results").RunID == m.RunID {
		t.Error("two runs share a run id")
	}
}
