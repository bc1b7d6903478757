// Package commands implements the CLI commands for regtidy.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/regtidy/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "regtidy",
	Short: "Normalize legacy regulation HTML into canonical markup",
	Long: `Regtidy cleans up regulation HTML exported from word processors and
legacy systems, infers its legal structure (chapters, articles,
signatures, footnotes, lists, layout tables) and emits canonical,
diff-stable HTML.

Examples:
  # One-shot import cleanup of a Word export
  regtidy clean reglugerd.htm -o reglugerd.html

  # Idempotent cleanup of editor output
  regtidy cleanup edited.html --prettify

  # Word diff between two versions
  regtidy diff old.html new.html

  # Serve the pipelines over HTTP
  regtidy serve --addr :8080`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log_json"),
			Level: viper.GetString("log_level"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.regtidy.yaml or ./.regtidy.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".regtidy")
		viper.SetConfigType("yaml")
	}

	// Environment variables, e.g. REGTIDY_CLEANER_FILE_SERVER_HOST
	viper.SetEnvPrefix("REGTIDY")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
