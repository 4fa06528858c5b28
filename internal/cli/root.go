/*
PURPOSE:
  Defines the root Cobra command for the Probetab CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/probetab/main.go
  - Calls: Child commands (consolidate, flatten, inspect)
  - Modifies: Global configuration state (temporarily, until passed down).

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/probetab/main.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "probetab",
		Short: "Consolidate and flatten language-model probability experiments",
		Long: `Probetab turns the output of completion-probability experiments into
analysis-ready tables. 'consolidate' merges per-trial JSON files into one
archive; 'flatten' reads the archive and tabulates the probability of each
echoed completion. Use 'inspect' to sanity-check an archive first.`,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./probetab.yaml)")
}

// manifestPath places a command's manifest next to its outputs.
func manifestPath(dir, command string) string {
	return filepath.Join(dir, command+"_manifest.json")
}
