/*
PURPOSE:
  Defines the 'init' subcommand.
  Scaffolds a starter probetab.yaml so a new experiment directory is
  one command away from working.

REQUIREMENTS:
  User-specified:
  - Write a commented config template next to the data.

  Implementation-discovered:
  - Must refuse to clobber an existing config; people tune these by
    hand.

ARCHITECTURE INTEGRATION:
  - Writes the file that internal/config.Load() searches for.

ERROR HANDLING:
  - Errors if the file exists or cannot be written.

IMPLEMENTATION RULES:
  - The template ships embedded in the binary; no network, no lookup
    paths.
  - Keep the template in sync with config.DefaultConfig().

USAGE:
  probetab init

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/cli/templates/probetab.yaml
  - internal/config/config.go

MAINTENANCE:
  - Update the template when Config gains fields.
*/

package cli

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/calawell/probetab/internal/output"
	"github.com/spf13/cobra"
)

//go:embed templates/probetab.yaml
var configTemplate []byte

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter probetab.yaml into the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		const name = "probetab.yaml"

		if _, err := os.Stat(name); err == nil {
			return fmt.Errorf("%s already exists; edit it in place or remove it first", name)
		}

		if err := os.WriteFile(name, configTemplate, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}

		output.Logger.Info("Wrote starter config", "path", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
