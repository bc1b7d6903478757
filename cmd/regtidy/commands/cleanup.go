package commands

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/regtidy/pkg/cleaner/regtidy"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [file|url|-]...",
	Short: "Run the idempotent editor-save cleanup",
	Long: `Cleanup normalizes HTML produced by the editor. Running it twice
gives the same result as running it once.

Examples:
  regtidy cleanup edited.html -o saved.html
  cat edited.html | regtidy cleanup --prettify`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	addCleanerFlags(cleanupCmd)
	addSourceFlags(cleanupCmd)
	addOutputFlags(cleanupCmd)
	cleanupCmd.Flags().Bool("prettify", false, "emit the diff-stable pretty-printed form")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, args, func(cfg *regtidy.Config, cmd *cobra.Command) *regtidy.Cleaner {
		pretty, _ := cmd.Flags().GetBool("prettify")
		indent, _ := cmd.Flags().GetBool("indent")
		return regtidy.NewEditor(cfg, pretty && !indent)
	})
}
