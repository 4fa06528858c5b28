/*
PURPOSE:
  Defines the 'inspect' subcommand.
  Helps debug an archive before committing to a long flatten.

REQUIREMENTS:
  User-specified:
  - Show what is in an archive: counts, engines, prompt variants.

  Implementation-discovered:
  - Useful validation step before full flatten; surfaces echo and
    max_tokens anomalies early.

ARCHITECTURE INTEGRATION:
  - Calls: internal/archive.LoadResults()

ERROR HANDLING:
  - Prints error if archive is missing or malformed.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  probetab inspect -a mega.json.gz

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/archive/archive.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"
	"sort"

	"github.com/calawell/probetab/internal/archive"
	"github.com/calawell/probetab/internal/config"
	"github.com/calawell/probetab/internal/display"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize the contents of an archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Reuse config loading/override logic?
		// Let's try to be consistent with the other commands.
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if archiveOverride != "" {
			cfg.Archive = archiveOverride
		}

		results, err := archive.LoadResults(cfg.Archive)
		if err != nil {
			return err
		}

		engines := map[string]int{}
		descriptors := map[string]int{}
		noEcho, generated := 0, 0
		for _, res := range results {
			engines[res.Model.Engine]++
			descriptors[res.Input.PromptDescriptor]++
			if !res.Model.Echo {
				noEcho++
			}
			if res.Model.MaxTokens != 0 {
				generated++
			}
		}

		fmt.Printf("%d records in %s\n", len(results), cfg.Archive)
		fmt.Println("Engines:")
		for _, name := range sortedCountKeys(engines) {
			fmt.Printf("- %s: %d\n", displayName(name), engines[name])
		}
		fmt.Println("Prompt descriptors:")
		for _, name := range sortedCountKeys(descriptors) {
			fmt.Printf("- %s: %d\n", displayName(name), descriptors[name])
		}
		if generated > 0 {
			fmt.Printf("%d records generated text (max_tokens != 0); flatten will salvage them\n", generated)
		}
		if noEcho > 0 {
			fmt.Println(display.Warn(fmt.Sprintf("%d records lack echo; flatten will fail on them", noEcho)))
		}

		return nil
	},
}

func sortedCountKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func displayName(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	// `archive` is shared with flatten; both commands register the same var.
	inspectCmd.Flags().StringVarP(&archiveOverride, "archive", "a", "", "Archive to inspect")
}
