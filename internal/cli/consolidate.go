/*
PURPOSE:
  Defines the 'consolidate' subcommand.
  Merges per-trial result files into a single archive.

REQUIREMENTS:
  User-specified:
  - Merge everything under the results directory, recursively.
  - Report how many files went in.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.
  - The manifest goes next to the archive, not next to the inputs.

ARCHITECTURE INTEGRATION:
  - Calls: internal/consolidate.Consolidate()
  - Uses: internal/config, internal/manifest, internal/display

ERROR HANDLING:
  - Returns error if config load fails or the merge fails.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Consolidate -> Manifest.

USAGE:
  probetab consolidate --source ./results --archive mega.json.gz

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go
  - internal/consolidate/consolidate.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/calawell/probetab/internal/config"
	"github.com/calawell/probetab/internal/consolidate"
	"github.com/calawell/probetab/internal/display"
	"github.com/calawell/probetab/internal/manifest"
	"github.com/spf13/cobra"
)

var (
	sourceOverride  string
	archiveOverride string
	suffixOverride  string
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Merge per-trial result files into one archive",
	Long: `Scans the source directory recursively for result files and merges them
into a single JSON archive (gzipped when the path ends in .gz).

Records pass through byte-for-byte; consolidation never reshapes trial
data. Any unreadable or malformed file aborts the merge before the
archive is written.`,
	Example: `  # Merge with defaults (uses probetab.yaml)
  probetab consolidate

  # Merge a specific run into a gzipped archive
  probetab consolidate --source ./runs/ultimatum --archive ultimatum.json.gz

  # Trial files with a non-standard suffix
  probetab consolidate --suffix .result.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides
		if sourceOverride != "" {
			cfg.SourceDir = sourceOverride
		}
		if archiveOverride != "" {
			cfg.Archive = archiveOverride
		}
		if suffixOverride != "" {
			cfg.Suffix = suffixOverride
		}

		// 3. Execution
		m := manifest.New("consolidate", cfg.SourceDir)
		count, err := consolidate.Consolidate(cfg.SourceDir, cfg.Archive, cfg.Suffix)
		if err != nil {
			return err
		}
		m.AddOutput("archive", cfg.Archive, count)
		if err := m.Write(manifestPath(filepath.Dir(cfg.Archive), "consolidate")); err != nil {
			return err
		}

		fmt.Println(display.Success(fmt.Sprintf("Consolidated %d files into %s", count, cfg.Archive)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consolidateCmd)

	consolidateCmd.Flags().StringVarP(&sourceOverride, "source", "s", "", "Directory scanned recursively for result files")
	consolidateCmd.Flags().StringVarP(&archiveOverride, "archive", "a", "", "Destination archive (.json or .json.gz)")
	consolidateCmd.Flags().StringVar(&suffixOverride, "suffix", "", "Filename suffix that marks a result file")
}
