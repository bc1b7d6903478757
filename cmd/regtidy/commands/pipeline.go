package commands

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/yosssi/gohtml"

	"github.com/jmylchreest/regtidy/internal/logger"
	"github.com/jmylchreest/regtidy/internal/output"
	"github.com/jmylchreest/regtidy/internal/source"
	"github.com/jmylchreest/regtidy/pkg/cleaner/regtidy"
)

// documentReport is one record of the --report output.
type documentReport struct {
	Source      string            `json:"source" yaml:"source"`
	Output      string            `json:"output,omitempty" yaml:"output,omitempty"`
	Cleaner     string            `json:"cleaner" yaml:"cleaner"`
	InputBytes  int               `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int               `json:"output_bytes" yaml:"output_bytes"`
	Warnings    []regtidy.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Stats       *regtidy.Stats    `json:"stats,omitempty" yaml:"stats,omitempty"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r documentReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", r.Source, r.Cleaner)
	if r.Error != "" {
		fmt.Fprintf(&sb, "Error: %s\n", r.Error)
		return sb.String()
	}
	if r.Output != "" {
		fmt.Fprintf(&sb, "Output: %s\n", r.Output)
	}
	if r.Stats != nil {
		sb.WriteString(r.Stats.String())
	} else {
		fmt.Fprintf(&sb, "Size: %s -> %s\n", humanize.Bytes(uint64(r.InputBytes)), humanize.Bytes(uint64(r.OutputBytes)))
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&sb, "Warning: %s\n", w)
	}
	return sb.String()
}

// addOutputFlags registers the output options shared by clean and cleanup.
func addOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("output", "o", "", "output file for a single input (default: stdout)")
	flags.String("out-dir", "", "write each cleaned document into this directory")
	flags.Bool("indent", false, "indent the output for reading instead of the diff-stable form")
	flags.String("report", "", "write a per-document report to this file (- for stderr)")
	flags.String("report-format", "text", "report format: json, jsonl, yaml, text")
}

type pipelineFactory func(cfg *regtidy.Config, cmd *cobra.Command) *regtidy.Cleaner

// runPipeline loads every input, runs the cleaner built by newCleaner on
// it and writes the result. A failing document is reported and skipped;
// the command fails if any document failed.
func runPipeline(cmd *cobra.Command, args []string, newCleaner pipelineFactory) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	indent, _ := cmd.Flags().GetBool("indent")
	if indent {
		cfg.SkipPrettier = true
	}

	loader, err := newLoader(cmd)
	if err != nil {
		return err
	}

	refs := inputRefs(args)
	outPath, _ := cmd.Flags().GetString("output")
	outDir, _ := cmd.Flags().GetString("out-dir")
	if len(refs) > 1 && outPath != "" && outPath != "-" {
		return fmt.Errorf("--output takes a single input; use --out-dir for %d inputs", len(refs))
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
	}

	report, closeReport, err := openReport(cmd)
	if err != nil {
		return err
	}
	defer closeReport()

	cl := newCleaner(cfg, cmd)
	logger.Debug("pipeline ready", "cleaner", cl.Name(), "inputs", len(refs))

	failed := 0
	for _, ref := range refs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rec := documentReport{Source: ref, Cleaner: cl.Name()}
		if err := cleanOne(ctx, cmd, loader, cl, ref, outPath, outDir, indent, &rec); err != nil {
			logError("%s: %v", ref, err)
			rec.Error = err.Error()
			failed++
		}
		if report != nil {
			if err := report.Write(rec); err != nil {
				logger.Error("failed to write report", "error", err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(refs))
	}
	logInfo("cleaned %d document(s) with %s", len(refs), cl.Name())
	return nil
}

func cleanOne(ctx context.Context, cmd *cobra.Command, loader *source.Loader, cl *regtidy.Cleaner, ref, outPath, outDir string, indent bool, rec *documentReport) error {
	doc, err := loader.Load(ctx, ref)
	if err != nil {
		return err
	}
	result := cl.CleanWithStats(doc.HTML)
	rec.Stats = result.Stats
	rec.Warnings = result.Warnings
	rec.InputBytes = result.Stats.InputBytes
	if result.Error != nil {
		return result.Error
	}
	for _, w := range result.Warnings {
		logger.Warn("cleanup warning", "source", ref, "stage", w.Stage, "message", w.Message, "context", w.Context)
	}

	content := result.Content
	if indent {
		content = gohtml.Format(content) + "\n"
	}
	rec.OutputBytes = len(content)

	dest := outPath
	if outDir != "" {
		dest = filepath.Join(outDir, outputName(ref))
	}
	rec.Output = dest
	return writeContent(cmd.OutOrStdout(), dest, content)
}

// outputName derives a file name for ref inside --out-dir.
func outputName(ref string) string {
	name := ""
	switch {
	case ref == source.Stdin:
		name = "stdin"
	case source.IsURL(ref):
		if u, err := url.Parse(ref); err == nil {
			name = path.Base(u.Path)
			if name == "/" || name == "." || name == "" {
				name = u.Host
			}
		}
	default:
		name = filepath.Base(ref)
	}
	if name == "" {
		name = "document"
	}
	ext := filepath.Ext(name)
	if ext == ".htm" || ext == ".html" {
		name = strings.TrimSuffix(name, ext)
	}
	return name + ".html"
}

// writeContent writes content to dest, or to stdout when dest is "" or "-".
func writeContent(stdout io.Writer, dest, content string) error {
	if dest == "" || dest == "-" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	return os.WriteFile(dest, []byte(content), 0o644) //#nosec G306 -- output documents are not secret
}

// openReport opens the --report destination. It returns a nil writer when
// no report was asked for.
func openReport(cmd *cobra.Command) (output.Writer, func(), error) {
	reportPath, _ := cmd.Flags().GetString("report")
	if reportPath == "" {
		return nil, func() {}, nil
	}
	formatStr, _ := cmd.Flags().GetString("report-format")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = cmd.ErrOrStderr()
	closeFile := func() {}
	if reportPath != "-" {
		f, err := os.Create(reportPath) //#nosec G304 -- CLI tool writes to user-specified report file
		if err != nil {
			logger.Error("failed to create report file", "path", reportPath, "error", err)
			return nil, nil, err
		}
		w = f
		closeFile = func() { _ = f.Close() }
	}

	writer, err := output.NewWriter(w, format)
	if err != nil {
		closeFile()
		return nil, nil, err
	}
	return writer, func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to flush report", "error", err)
		}
		closeFile()
	}, nil
}
