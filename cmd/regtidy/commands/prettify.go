package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/regtidy/internal/logger"
	"github.com/jmylchreest/regtidy/pkg/cleaner"
)

var prettifyCmd = &cobra.Command{
	Use:   "prettify [file|url|-]",
	Short: "Print canonical HTML in the diff-stable line form",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransform(cmd, args, cleaner.NewPrettify())
	},
}

var dePrettifyCmd = &cobra.Command{
	Use:   "deprettify [file|url|-]",
	Short: "Join pretty-printed HTML back into single-line form",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransform(cmd, args, cleaner.NewDePrettify())
	},
}

func init() {
	for _, cmd := range []*cobra.Command{prettifyCmd, dePrettifyCmd} {
		rootCmd.AddCommand(cmd)
		addSourceFlags(cmd)
		cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	}
}

// runTransform applies a single cleaner to one input.
func runTransform(cmd *cobra.Command, args []string, cl cleaner.Cleaner) error {
	loader, err := newLoader(cmd)
	if err != nil {
		return err
	}
	ref := inputRefs(args)[0]
	doc, err := loader.Load(context.Background(), ref)
	if err != nil {
		logger.Error("failed to load input", "ref", ref, "error", err)
		return err
	}
	out, err := cl.Clean(doc.HTML)
	if err != nil {
		return err
	}
	dest, _ := cmd.Flags().GetString("output")
	return writeContent(cmd.OutOrStdout(), dest, out)
}
