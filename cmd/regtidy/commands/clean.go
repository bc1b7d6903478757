package commands

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/regtidy/pkg/cleaner/regtidy"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file|url|-]...",
	Short: "Run the one-shot import cleanup on legacy HTML",
	Long: `Clean converts legacy regulation HTML (Word exports, old CMS
markup) into canonical HTML and infers its structure.

The import cleanup is NOT idempotent: run it once per document. Use
--mode strict to refuse input that already looks cleaned, and
"regtidy cleanup" for content that has been through the editor.

Examples:
  # Clean a file to stdout
  regtidy clean reglugerd.htm

  # Clean several files into a directory with a JSON report
  regtidy clean *.htm --out-dir clean/ --report report.json --report-format json

  # Fetch and clean the regulation body of a page
  regtidy clean "https://example.is/reglugerd/1" --selector "div.regulation"`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	addCleanerFlags(cleanCmd)
	addSourceFlags(cleanCmd)
	addOutputFlags(cleanCmd)
	cleanCmd.Flags().Bool("skip-prettier", false, "emit single-line HTML instead of the diff-stable form")
}

func runClean(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, args, func(cfg *regtidy.Config, cmd *cobra.Command) *regtidy.Cleaner {
		if skip, _ := cmd.Flags().GetBool("skip-prettier"); skip {
			cfg.SkipPrettier = true
		}
		return regtidy.NewDirty(cfg)
	})
}
