package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/regtidy/internal/logger"
	"github.com/jmylchreest/regtidy/internal/source"
	"github.com/jmylchreest/regtidy/pkg/cleaner/regtidy"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// addCleanerFlags registers the pipeline options shared by clean and
// cleanup.
func addCleanerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("mode", "", "validation mode: relaxed, strict")
	flags.String("file-server-host", "", "rewrite file links and images to this host (e.g. https://files.example.is)")
	flags.StringSlice("allow-class", nil, "extra legacy class to keep during import (can be repeated)")
	flags.Bool("stage-debug", false, "log every pipeline stage")
}

// stringSetting returns the flag when it was given, otherwise the viper
// key (config file or environment). Several commands share flag names, so
// flags are not bound to viper keys.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	return viper.GetString(key)
}

// addSourceFlags registers the input loading options.
func addSourceFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Duration("timeout", 30*time.Second, "request timeout for URL inputs")
	flags.String("max-size", "20MB", "max input size (e.g. 500KB, 20MB, 0=unlimited)")
	flags.String("selector", "", "CSS selector of the fragment to clean in a full page")
}

// loadConfig builds the pipeline configuration from defaults, the
// "cleaner" section of the config file, the environment and flags, in
// increasing precedence.
func loadConfig(cmd *cobra.Command) (*regtidy.Config, error) {
	cfg := regtidy.DefaultConfig()

	var fileCfg regtidy.Config
	if err := viper.UnmarshalKey("cleaner", &fileCfg); err != nil {
		return nil, fmt.Errorf("read cleaner config: %w", err)
	}
	cfg = cfg.Merge(&fileCfg)

	if mode := stringSetting(cmd, "mode", "cleaner.mode"); mode != "" {
		cfg.Mode = regtidy.ValidationMode(mode)
	}
	if host := stringSetting(cmd, "file-server-host", "cleaner.file_server_host"); host != "" {
		cfg.FileServerHost = host
	}
	if debug, _ := cmd.Flags().GetBool("stage-debug"); debug {
		cfg.Debug = true
	}
	if classes, _ := cmd.Flags().GetStringSlice("allow-class"); len(classes) > 0 {
		cfg = cfg.Merge(&regtidy.Config{ExtraAllowedClasses: classes})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("cleaner config",
		"mode", cfg.Mode,
		"file_server_host", cfg.FileServerHost,
		"extra_classes", len(cfg.ExtraAllowedClasses))
	return cfg, nil
}

// parseSize parses a human-readable size; "" and "0" mean unlimited.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(n), nil
}

func newLoader(cmd *cobra.Command) (*source.Loader, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	selector, _ := cmd.Flags().GetString("selector")
	sizeStr, _ := cmd.Flags().GetString("max-size")
	maxBytes, err := parseSize(sizeStr)
	if err != nil {
		return nil, err
	}
	logger.Debug("loader configured", "timeout", timeout, "max_bytes", maxBytes, "selector", selector)
	return source.NewLoader(source.Config{
		Timeout:  timeout,
		MaxBytes: maxBytes,
		Selector: selector,
		Stdin:    cmd.InOrStdin(),
	}), nil
}

// inputRefs returns args, or stdin when there are none.
func inputRefs(args []string) []string {
	if len(args) == 0 {
		return []string{source.Stdin}
	}
	return args
}
