/*
PURPOSE:
  Defines the configuration structure and loading logic for Probetab.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of the results directory, archive path, output
    files, and flatten parameters, so a whole experiment is described
    by one YAML file living next to its data.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Empty output filenames mean "skip that sink" (CSV excepted; it is
    the primary output and always on).

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default config files are fine; defaults apply.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults should match how the experiments actually ran (plain
    .json trial files, gzipped archive).

USAGE:
  cfg, err := config.Load("probetab.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update
    DefaultConfig().

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new processing parameters.
*/

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for Probetab.
type Config struct {
	// SourceDir is scanned recursively for per-trial result files.
	SourceDir string `yaml:"source_dir"`
	// Archive is where consolidate writes and flatten/inspect read.
	Archive string `yaml:"archive"`
	// Suffix selects which files under SourceDir are trial results.
	Suffix    string `yaml:"suffix"`
	OutputDir string `yaml:"output_dir"`
	CSVFile   string `yaml:"csv_file"`
	// JSONLFile and SQLiteFile are skipped when empty.
	JSONLFile  string `yaml:"jsonl_file"`
	SQLiteFile string `yaml:"sqlite_file"`
	// TailTokens is how many trailing echoed tokens form the completion.
	TailTokens int `yaml:"tail_tokens"`
	// Descriptor filters records by prompt_descriptor; empty keeps all.
	Descriptor string `yaml:"descriptor"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SourceDir:  "results",
		Archive:    "mega.json.gz",
		Suffix:     ".json",
		OutputDir:  ".",
		CSVFile:    "results.csv",
		JSONLFile:  "results.jsonl",
		SQLiteFile: "",
		TailTokens: 1,
		Descriptor: "",
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		// Search for defaults
		defaults := []string{"probetab.yaml", ".probetab.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			// No config file found, return default
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}
