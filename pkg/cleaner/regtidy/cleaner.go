package regtidy

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jmylchreest/regtidy/internal/logger"
	"github.com/jmylchreest/regtidy/pkg/dom"
	"github.com/jmylchreest/regtidy/pkg/prettify"
)

// ErrAlreadyCleaned is returned in strict mode when DirtyClean receives
// content that already carries canonical structure.
var ErrAlreadyCleaned = errors.New("input already looks cleaned; the import cleanup must only run once")

// Cleaner runs one of the two pipelines. It implements the cleaner.Cleaner
// interface and is safe for concurrent use.
type Cleaner struct {
	config   *Config
	name     string
	stages   []Stage
	dirty    bool
	prettify bool
}

// NewDirty creates the one-shot import cleaner. If config is nil,
// DefaultConfig() is used.
func NewDirty(config *Config) *Cleaner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Cleaner{
		config:   config,
		name:     "dirty",
		stages:   DirtyStages(),
		dirty:    true,
		prettify: !config.SkipPrettier,
	}
}

// NewEditor creates the idempotent editor-save cleaner. Its output is not
// pretty-printed unless prettyPrint is set.
func NewEditor(config *Config, prettyPrint bool) *Cleaner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Cleaner{
		config:   config,
		name:     "editor",
		stages:   EditorStages(),
		prettify: prettyPrint,
	}
}

// DirtyClean converts legacy regulation HTML into canonical HTML. It is
// not idempotent; run it exactly once per document.
func DirtyClean(input string, config *Config) (string, error) {
	return NewDirty(config).Clean(input)
}

// CleanupEditorOutput normalizes editor output. Applying it twice yields
// the same result as applying it once.
func CleanupEditorOutput(input string, config *Config) (string, error) {
	return NewEditor(config, false).Clean(input)
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "regtidy-" + c.name
}

// Stages returns the stage names in execution order.
func (c *Cleaner) Stages() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name
	}
	return names
}

// Clean runs the pipeline. An error aborts the whole document; partial
// output is never returned.
func (c *Cleaner) Clean(input string) (string, error) {
	result := c.CleanWithStats(input)
	if result.Error != nil {
		return "", result.Error
	}
	return result.Content, nil
}

// CleanWithStats runs the pipeline and returns detailed stats.
func (c *Cleaner) CleanWithStats(input string) *Result {
	startTime := time.Now()
	result := &Result{
		Stats: NewStats(),
	}
	result.Stats.InputBytes = len(input)
	defer func() {
		result.Stats.OutputBytes = len(result.Content)
		result.Stats.TotalDuration = time.Since(startTime)
	}()

	if c.dirty && c.config.Mode == ModeStrict && LooksCleaned(input) {
		result.Error = ErrAlreadyCleaned
		return result
	}

	// Parse
	parseStart := time.Now()
	sanitized := elementPolicy().Sanitize(input)
	body, err := dom.Parse(sanitized)
	result.Stats.ParseDuration = time.Since(parseStart)
	if err != nil {
		result.Error = err
		return result
	}

	doc := &Doc{Body: body, Config: c.config, Result: result}
	if c.dirty {
		doc.legacyClasses = make(map[string]bool)
		for _, cls := range LegacyClasses {
			doc.legacyClasses[cls] = true
		}
		for _, cls := range c.config.ExtraAllowedClasses {
			doc.legacyClasses[cls] = true
		}
	}

	// Transform
	transformStart := time.Now()
	for _, stage := range c.stages {
		stageStart := time.Now()
		if err := stage.Run(doc); err != nil {
			result.Error = fmt.Errorf("%s: %w", stage.Name, err)
			logger.Warn("cleanup aborted", "cleaner", c.Name(), "stage", stage.Name, "error", err)
			return result
		}
		elapsed := time.Since(stageStart)
		result.Stats.RecordStage(stage.Name, elapsed)
		if c.config.Debug {
			logger.Debug("stage done", "cleaner", c.Name(), "stage", stage.Name, "elapsed", elapsed)
		}
	}
	result.Stats.TransformDuration = time.Since(transformStart)

	// Output
	outputStart := time.Now()
	out, err := dom.RenderChildren(body)
	if err != nil {
		result.Error = fmt.Errorf("render: %w", err)
		return result
	}
	if c.prettify {
		out = prettify.Prettify(out)
	}
	result.Content = out
	result.Stats.OutputDuration = time.Since(outputStart)

	logger.Debug("cleanup complete",
		"cleaner", c.Name(),
		"input_bytes", result.Stats.InputBytes,
		"output_bytes", len(out),
		"warnings", len(result.Warnings))

	return result
}

var (
	canonicalClassRe = regexp.MustCompile(`class="[^"]*\b(?:article__title|chapter__title|doc__title|footnote-reference)\b`)
	legacyMarkerRe   = regexp.MustCompile(`(?i)mso-|class="?Mso|<o:p|urn:schemas-microsoft-com|<font\b`)
)

// LooksCleaned reports whether input carries canonical classes and none of
// the markers legacy exports are recognizable by.
func LooksCleaned(input string) bool {
	return canonicalClassRe.MatchString(input) && !legacyMarkerRe.MatchString(input)
}
