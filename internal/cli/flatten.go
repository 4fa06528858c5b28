/*
PURPOSE:
  Defines the 'flatten' subcommand.
  Turns an archive into flat tables, the main workflow of the tool.

REQUIREMENTS:
  User-specified:
  - Tabulate index, engine, completion tokens, joint probability, and
    the prompt fill values.
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.
  - CSV is always written; JSONL and SQLite only when configured.

ARCHITECTURE INTEGRATION:
  - Calls: internal/flatten.Flatten()
  - Uses: internal/config, internal/output, internal/display,
    internal/manifest

ERROR HANDLING:
  - Returns error if config load fails, flattening fails, or any sink
    fails. Partial output files may exist after a sink failure; the
    manifest is only written on full success.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Flatten -> Sinks -> Manifest.

USAGE:
  probetab flatten -a mega.json.gz -n 2 -d ultimatum-accept

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go
  - internal/flatten/flatten.go

MAINTENANCE:
  - Update when adding new CLI overrides or sinks.
*/

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/calawell/probetab/internal/config"
	"github.com/calawell/probetab/internal/display"
	"github.com/calawell/probetab/internal/flatten"
	"github.com/calawell/probetab/internal/manifest"
	"github.com/calawell/probetab/internal/output"
	"github.com/spf13/cobra"
)

var (
	outputDirOverride  string
	tailOverride       int
	descriptorOverride string
	csvOverride        string
	jsonlOverride      string
	sqliteOverride     string
)

var flattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Flatten an archive into tabular outputs",
	Long: `Reads a consolidated archive and produces one row per trial: index,
engine, the completion tokens (the last N tokens of the echoed prompt),
their joint probability, and one column per prompt fill value.

Trials that mistakenly generated text (max_tokens != 0) are salvaged by
cutting the logprob trace where generation began. Trials recorded
without echo cannot be processed at all; the run fails so the gap is
never silent.`,
	Example: `  # Flatten with defaults (uses probetab.yaml)
  probetab flatten

  # Joint probability of the last two echoed tokens, one prompt variant only
  probetab flatten -a mega.json.gz -n 2 -d ultimatum-accept

  # Also export to SQLite for SQL-side analysis
  probetab flatten --sqlite results.db -o ./tables`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides
		if archiveOverride != "" {
			cfg.Archive = archiveOverride
		}
		if outputDirOverride != "" {
			cfg.OutputDir = outputDirOverride
		}
		if cmd.Flags().Changed("tail-tokens") {
			cfg.TailTokens = tailOverride
		}
		if descriptorOverride != "" {
			cfg.Descriptor = descriptorOverride
		}
		if csvOverride != "" {
			cfg.CSVFile = csvOverride
		}
		if jsonlOverride != "" {
			cfg.JSONLFile = jsonlOverride
		}
		if sqliteOverride != "" {
			cfg.SQLiteFile = sqliteOverride
		}

		// 3. Flatten
		tbl, err := flatten.Flatten(cfg.Archive, flatten.Options{
			TailTokens: cfg.TailTokens,
			Descriptor: cfg.Descriptor,
			Progress:   display.NewProgress(os.Stdout),
		})
		if err != nil {
			return err
		}

		// 4. Write outputs
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
		}

		m := manifest.New("flatten", cfg.Archive)

		csvPath := filepath.Join(cfg.OutputDir, cfg.CSVFile)
		if err := output.WriteCSV(csvPath, tbl); err != nil {
			return err
		}
		m.AddOutput("csv", csvPath, tbl.Len())

		if cfg.JSONLFile != "" {
			jsonlPath := filepath.Join(cfg.OutputDir, cfg.JSONLFile)
			if err := output.WriteJSONL(jsonlPath, tbl); err != nil {
				return err
			}
			m.AddOutput("jsonl", jsonlPath, tbl.Len())
		}

		if cfg.SQLiteFile != "" {
			dbPath := filepath.Join(cfg.OutputDir, cfg.SQLiteFile)
			if err := output.WriteSQLite(dbPath, "results", tbl); err != nil {
				return err
			}
			m.AddOutput("sqlite", dbPath, tbl.Len())
		}

		if err := m.Write(manifestPath(cfg.OutputDir, "flatten")); err != nil {
			return err
		}

		fmt.Println(display.Success(fmt.Sprintf("Flattened %d rows into %s", tbl.Len(), cfg.OutputDir)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flattenCmd)

	flattenCmd.Flags().StringVarP(&archiveOverride, "archive", "a", "", "Archive to flatten (.json or .json.gz)")
	flattenCmd.Flags().StringVarP(&outputDirOverride, "output-dir", "o", "", "Output directory for tables")
	flattenCmd.Flags().IntVarP(&tailOverride, "tail-tokens", "n", 0, "How many trailing echoed tokens form the completion")
	flattenCmd.Flags().StringVarP(&descriptorOverride, "descriptor", "d", "", "Keep only records with this prompt_descriptor")
	flattenCmd.Flags().StringVar(&csvOverride, "csv", "", "CSV filename (always written)")
	flattenCmd.Flags().StringVar(&jsonlOverride, "jsonl", "", "JSON Lines filename")
	flattenCmd.Flags().StringVar(&sqliteOverride, "sqlite", "", "SQLite database filename")
}
