// Package regtidy normalizes legacy regulation HTML into the canonical
// dialect and infers its legal structure (chapters, articles, signatures,
// footnotes, lists, layout tables).
//
// Two pipelines share the same stages:
//
//   - DirtyClean is the aggressive one-shot import cleanup. It is NOT
//     idempotent and must never be run twice on the same content.
//   - CleanupEditorOutput is the conservative cleanup run on every editor
//     save. It is idempotent.
package regtidy

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationMode controls how strictly entry points police their input.
type ValidationMode string

const (
	// ModeRelaxed accepts any input.
	ModeRelaxed ValidationMode = "relaxed"
	// ModeStrict makes DirtyClean refuse content that already looks cleaned.
	ModeStrict ValidationMode = "strict"
)

// Default thresholds. These are empirically tuned.
const (
	DefaultArticleNameMaxLength    = 90
	DefaultChapterNameMaxLength    = 90
	DefaultSubchapterNameMaxLength = 60
	DefaultSignatoryMaxLength      = 60
	DefaultDocTitleMaxLength       = 400
	DefaultMinImageDimension       = 3
	DefaultMinSigningYear          = 1800
	DefaultMaxSigningYear          = 2100
	DefaultTabWidth                = 8
)

// LegacyClasses are the class names legacy exports use for structure.
// The import pipeline tolerates them until they are reclassified.
var LegacyClasses = []string{
	"Grein", "Greinarheiti", "Kafli", "Kaflaheiti",
	"Fyrirsogn", "Vidauki",
}

// Thresholds holds the tunable numeric cutoffs of the heuristics.
type Thresholds struct {
	ArticleNameMaxLength    int `json:"article_name_max_length" mapstructure:"article_name_max_length" validate:"gt=0"`
	ChapterNameMaxLength    int `json:"chapter_name_max_length" mapstructure:"chapter_name_max_length" validate:"gt=0"`
	SubchapterNameMaxLength int `json:"subchapter_name_max_length" mapstructure:"subchapter_name_max_length" validate:"gt=0"`
	SignatoryMaxLength      int `json:"signatory_max_length" mapstructure:"signatory_max_length" validate:"gt=0"`
	DocTitleMaxLength       int `json:"doc_title_max_length" mapstructure:"doc_title_max_length" validate:"gt=0"`
	MinImageDimension       int `json:"min_image_dimension" mapstructure:"min_image_dimension" validate:"gte=0"`
	MinSigningYear          int `json:"min_signing_year" mapstructure:"min_signing_year" validate:"gt=0"`
	MaxSigningYear          int `json:"max_signing_year" mapstructure:"max_signing_year" validate:"gtefield=MinSigningYear"`
	TabWidth                int `json:"tab_width" mapstructure:"tab_width" validate:"gt=0"`
}

// Config defines the options of both pipelines.
type Config struct {
	// Mode is the validation mode. Never global; always passed in.
	Mode ValidationMode `json:"mode" mapstructure:"mode" validate:"oneof=relaxed strict"`

	// SkipPrettier returns single-line HTML instead of the diff-stable
	// pretty-printed form.
	SkipPrettier bool `json:"skip_prettier" mapstructure:"skip_prettier"`

	// ExtraAllowedClasses survive attribute sanitization in the import
	// pipeline only. The editor pipeline ignores them.
	ExtraAllowedClasses []string `json:"extra_allowed_classes" mapstructure:"extra_allowed_classes"`

	// FileServerHost is the scheme and host image and file links are
	// rewritten to, e.g. "https://files.example.is". Empty disables it.
	FileServerHost string `json:"file_server_host" mapstructure:"file_server_host" validate:"omitempty,url"`

	// FilePathPrefixes select which link paths point at the file server.
	FilePathPrefixes []string `json:"file_path_prefixes" mapstructure:"file_path_prefixes" validate:"dive,startswith=/"`

	Thresholds Thresholds `json:"thresholds" mapstructure:"thresholds"`

	// Debug enables per-stage debug logging.
	Debug bool `json:"debug" mapstructure:"debug"`
}

// DefaultConfig returns the configuration used by the import pipeline.
func DefaultConfig() *Config {
	return &Config{
		Mode:                ModeRelaxed,
		ExtraAllowedClasses: append([]string(nil), LegacyClasses...),
		FilePathPrefixes:    []string{"/files/"},
		Thresholds:          DefaultThresholds(),
	}
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ArticleNameMaxLength:    DefaultArticleNameMaxLength,
		ChapterNameMaxLength:    DefaultChapterNameMaxLength,
		SubchapterNameMaxLength: DefaultSubchapterNameMaxLength,
		SignatoryMaxLength:      DefaultSignatoryMaxLength,
		DocTitleMaxLength:       DefaultDocTitleMaxLength,
		MinImageDimension:       DefaultMinImageDimension,
		MinSigningYear:          DefaultMinSigningYear,
		MaxSigningYear:          DefaultMaxSigningYear,
		TabWidth:                DefaultTabWidth,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Merge returns a copy of c with the non-zero values of other applied.
// Class and prefix lists are appended, deduplicated.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}
	merged := *c
	merged.ExtraAllowedClasses = append([]string(nil), c.ExtraAllowedClasses...)
	merged.FilePathPrefixes = append([]string(nil), c.FilePathPrefixes...)

	if other.Mode != "" {
		merged.Mode = other.Mode
	}
	if other.SkipPrettier {
		merged.SkipPrettier = true
	}
	if other.Debug {
		merged.Debug = true
	}
	if other.FileServerHost != "" {
		merged.FileServerHost = other.FileServerHost
	}
	merged.ExtraAllowedClasses = appendUnique(merged.ExtraAllowedClasses, other.ExtraAllowedClasses...)
	merged.FilePathPrefixes = appendUnique(merged.FilePathPrefixes, other.FilePathPrefixes...)

	t, o := &merged.Thresholds, other.Thresholds
	if o.ArticleNameMaxLength > 0 {
		t.ArticleNameMaxLength = o.ArticleNameMaxLength
	}
	if o.ChapterNameMaxLength > 0 {
		t.ChapterNameMaxLength = o.ChapterNameMaxLength
	}
	if o.SubchapterNameMaxLength > 0 {
		t.SubchapterNameMaxLength = o.SubchapterNameMaxLength
	}
	if o.SignatoryMaxLength > 0 {
		t.SignatoryMaxLength = o.SignatoryMaxLength
	}
	if o.DocTitleMaxLength > 0 {
		t.DocTitleMaxLength = o.DocTitleMaxLength
	}
	if o.MinImageDimension > 0 {
		t.MinImageDimension = o.MinImageDimension
	}
	if o.MinSigningYear > 0 {
		t.MinSigningYear = o.MinSigningYear
	}
	if o.MaxSigningYear > 0 {
		t.MaxSigningYear = o.MaxSigningYear
	}
	if o.TabWidth > 0 {
		t.TabWidth = o.TabWidth
	}
	return &merged
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			dst = append(dst, v)
			seen[v] = true
		}
	}
	return dst
}
