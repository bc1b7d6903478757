package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/regtidy/internal/server"
	"github.com/jmylchreest/regtidy/pkg/htmldiff"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipelines and the diff adapter over HTTP",
	Long: `Serve exposes:

  POST /api/clean     one-shot import cleanup
  POST /api/cleanup   idempotent editor-save cleanup
  POST /api/diff      word diff of two documents
  POST /api/prettify  pretty-print or reverse it
  GET  /health`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addCleanerFlags(serveCmd)
	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("api-key", "", "require this Bearer token on /api routes")
	flags.String("max-body", "10MB", "max request body size")
	flags.Duration("slow-threshold", htmldiff.DefaultSlowThreshold, "log a warning for diffs slower than this")

	_ = viper.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("server.api_key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("server.max_body", flags.Lookup("max-body"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	maxBody, err := parseSize(viper.GetString("server.max_body"))
	if err != nil {
		return err
	}
	threshold, _ := cmd.Flags().GetDuration("slow-threshold")

	srv := server.New(server.Options{
		Config:            cfg,
		MaxBodyBytes:      maxBody,
		SlowDiffThreshold: threshold,
		APIKey:            viper.GetString("server.api_key"),
	})
	return srv.ListenAndServe(ctx, viper.GetString("server.addr"))
}
