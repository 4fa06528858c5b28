package cli

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/calawell/probetab/internal/archive"
	"github.com/calawell/probetab/internal/config"
	"github.com/calawell/probetab/internal/manifest"
	"github.com/calawell/probetab/internal/model"

	_ "modernc.org/sqlite"
)

// resetCLI clears flag state shared between commands; package-level
// override vars survive across Execute calls otherwise.
func resetCLI() {
	cfgFile = ""
	sourceOverride, archiveOverride, suffixOverride = "", "", ""
	outputDirOverride, descriptorOverride = "", ""
	csvOverride, jsonlOverride, sqliteOverride = "", "", ""
	tailOverride = 0
	if f := flattenCmd.Flags().Lookup("tail-tokens"); f != nil {
		f.Changed = false
	}
}

func runCommand(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// chdir moves into dir for the duration of the test. It stands in for
// testing.T.Chdir, which needs Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restoring working directory failed: %v", err)
		}
	})
}

// writeTrialFile drops a complete result file at path: four echoed
// tokens with known logprobs and no generated text.
func writeTrialFile(t *testing.T, path string, index int, descriptor string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	content := fmt.Sprintf(`{
  "input": {
    "prompt": {"index": %d, "values": {"subject": "cat"}},
    "prompt_descriptor": %q,
    "full_input": "The cat sat."
  },
  "model": {"engine": "davinci", "echo": true, "max_tokens": 0},
  "output": {"choices": [{"logprobs": {
    "tokens": ["The", "cat", "sat", "."],
    "token_logprobs": [-0.1, -0.2, -0.05, -0.01],
    "text_offset": [0, 4, 8, 11]
  }}]}
}`, index, descriptor)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	return rows
}

func TestPipelineEndToEnd(t *testing.T) {
	resetCLI()
	chdir(t, t.TempDir())

	writeTrialFile(t, filepath.Join("results", "t0.json"), 0, "garden-path")
	writeTrialFile(t, filepath.Join("results", "sub", "t1.json"), 1, "garden-path")
	writeTrialFile(t, filepath.Join("results", "t2.json"), 2, "ultimatum")

	if err := runCommand("consolidate", "-s", "results", "-a", "mega.json.gz"); err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}

	cm, err := manifest.Load("consolidate_manifest.json")
	if err != nil {
		t.Fatalf("consolidate manifest missing: %v", err)
	}
	if cm.Command != "consolidate" || len(cm.Outputs) != 1 || cm.Outputs[0].Records != 3 {
		t.Errorf("consolidate manifest = %+v", cm)
	}

	if err := runCommand("flatten", "-a", "mega.json.gz", "-o", "tables", "-n", "1", "--sqlite", "results.db"); err != nil {
		t.Fatalf("flatten failed: %v", err)
	}

	rows := readCSVFile(t, filepath.Join("tables", "results.csv"))
	if len(rows) != 4 {
		t.Fatalf("CSV rows = %d, want header plus 3", len(rows))
	}
	header := rows[0]
	want := []string{"index", "engine", "tokens", "probability", "subject"}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], want[i])
		}
	}
	wantProb := strconv.FormatFloat(math.Exp(-0.01), 'g', -1, 64)
	for _, row := range rows[1:] {
		if row[2] != "." {
			t.Errorf("tokens cell = %q, want %q", row[2], ".")
		}
		if row[3] != wantProb {
			t.Errorf("probability cell = %q, want %q", row[3], wantProb)
		}
	}

	if _, err := os.Stat(filepath.Join("tables", "results.jsonl")); err != nil {
		t.Errorf("default JSONL sink not written: %v", err)
	}

	db, err := sql.Open("sqlite", filepath.Join("tables", "results.db"))
	if err != nil {
		t.Fatalf("open sqlite output: %v", err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "results"`).Scan(&count); err != nil {
		t.Fatalf("sqlite count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("sqlite count = %d, want 3", count)
	}

	fm, err := manifest.Load(filepath.Join("tables", "flatten_manifest.json"))
	if err != nil {
		t.Fatalf("flatten manifest missing: %v", err)
	}
	if len(fm.Outputs) != 3 {
		t.Errorf("flatten manifest outputs = %d, want csv+jsonl+sqlite", len(fm.Outputs))
	}

	if err := runCommand("inspect", "-a", "mega.json.gz"); err != nil {
		t.Errorf("inspect failed: %v", err)
	}
}

func TestFlattenCommandDescriptorFilter(t *testing.T) {
	resetCLI()
	chdir(t, t.TempDir())

	writeTrialFile(t, filepath.Join("results", "t0.json"), 0, "garden-path")
	writeTrialFile(t, filepath.Join("results", "t1.json"), 1, "ultimatum")

	if err := runCommand("consolidate", "-s", "results", "-a", "mega.json.gz"); err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}
	if err := runCommand("flatten", "-a", "mega.json.gz", "-n", "1", "-d", "ultimatum"); err != nil {
		t.Fatalf("flatten failed: %v", err)
	}

	rows := readCSVFile(t, "results.csv")
	if len(rows) != 2 {
		t.Fatalf("CSV rows = %d, want header plus 1", len(rows))
	}
	if rows[1][0] != "1" {
		t.Errorf("kept index = %q, want %q", rows[1][0], "1")
	}
}

func TestFlattenCommandFailsWithoutEcho(t *testing.T) {
	resetCLI()
	chdir(t, t.TempDir())

	res := model.Result{
		Input: model.Input{
			Prompt:           model.Prompt{Index: 0, Values: map[string]any{}},
			PromptDescriptor: "garden-path",
			FullInput:        "The cat sat.",
		},
		Model: model.ModelSettings{Engine: "davinci", Echo: false, MaxTokens: 0},
		Output: model.Output{Choices: []model.Choice{{
			Logprobs: model.Logprobs{
				Tokens:        []string{"The"},
				TokenLogprobs: []float64{-0.1},
				TextOffset:    []int{0},
			},
		}}},
	}
	if err := archive.Save("mega.json.gz", []model.Result{res}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := runCommand("flatten", "-a", "mega.json.gz", "-n", "1"); err == nil {
		t.Fatal("expected flatten to fail on echo=false, got nil")
	}
}

func TestConsolidateCommandFailsOnMalformed(t *testing.T) {
	resetCLI()
	chdir(t, t.TempDir())

	writeTrialFile(t, filepath.Join("results", "ok.json"), 0, "garden-path")
	if err := os.WriteFile(filepath.Join("results", "bad.json"), []byte("{"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := runCommand("consolidate", "-s", "results", "-a", "mega.json.gz"); err == nil {
		t.Fatal("expected consolidate to fail on malformed input, got nil")
	}
}

func TestInitScaffoldsConfig(t *testing.T) {
	resetCLI()
	chdir(t, t.TempDir())

	if err := runCommand("init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, err := config.Load("probetab.yaml")
	if err != nil {
		t.Fatalf("scaffolded config does not parse: %v", err)
	}
	if cfg.SourceDir != "results" || cfg.TailTokens != 1 {
		t.Errorf("scaffolded config = %+v", cfg)
	}

	// A second init must not clobber a config someone may have edited.
	if err := runCommand("init"); err == nil {
		t.Fatal("expected init to refuse overwriting, got nil")
	}
}

func TestCommandsReadConfigFile(t *testing.T) {
	resetCLI()
	chdir(t, t.TempDir())

	writeTrialFile(t, filepath.Join("trials", "t0.json"), 0, "garden-path")
	cfg := `
source_dir: trials
archive: out/mega.json
output_dir: out
tail_tokens: 2
`
	if err := os.WriteFile("probetab.yaml", []byte(cfg), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.MkdirAll("out", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	if err := runCommand("consolidate"); err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join("out", "mega.json")); err != nil {
		t.Fatalf("archive not at configured path: %v", err)
	}

	if err := runCommand("flatten"); err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	rows := readCSVFile(t, filepath.Join("out", "results.csv"))
	if len(rows) != 2 {
		t.Fatalf("CSV rows = %d, want header plus 1", len(rows))
	}
	// tail_tokens: 2 from the config joins the last two tokens.
	if rows[1][2] != "sat-." {
		t.Errorf("tokens cell = %q, want %q", rows[1][2], "sat-.")
	}
}
