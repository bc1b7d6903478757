package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/regtidy/internal/logger"
	"github.com/jmylchreest/regtidy/pkg/htmldiff"
	"github.com/jmylchreest/regtidy/pkg/prettify"
)

var diffCmd = &cobra.Command{
	Use:   "diff <older> <newer>",
	Short: "Word diff two versions of a document",
	Long: `Diff pretty-prints both documents and marks deleted words with <del>
and inserted words with <ins>, keeping the structure of the newer one.

Examples:
  regtidy diff v1.html v2.html > changes.html
  regtidy diff v1.html v2.html --json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	addSourceFlags(diffCmd)
	flags := diffCmd.Flags()
	flags.Bool("raw", false, "keep empty <ins>/<del> wrappers")
	flags.Duration("slow-threshold", htmldiff.DefaultSlowThreshold, "log a warning for diffs slower than this")
	flags.Bool("json", false, "print the diff with timing as JSON")
	flags.StringP("output", "o", "", "output file (default: stdout)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	loader, err := newLoader(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var sides [2]string
	for i, ref := range args {
		doc, err := loader.Load(ctx, ref)
		if err != nil {
			logger.Error("failed to load input", "ref", ref, "error", err)
			return err
		}
		sides[i] = prettify.Prettify(doc.HTML)
	}

	raw, _ := cmd.Flags().GetBool("raw")
	threshold, _ := cmd.Flags().GetDuration("slow-threshold")
	result := htmldiff.Diff(sides[0], sides[1], htmldiff.Options{Raw: raw, SlowThreshold: threshold})
	logger.Debug("diff complete", "elapsed_ms", result.ElapsedMs, "slow", result.Slow)

	out := result.Diff
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode diff: %w", err)
		}
		out = string(data) + "\n"
	}
	dest, _ := cmd.Flags().GetString("output")
	return writeContent(cmd.OutOrStdout(), dest, out)
}
