package regtidy

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats captures metrics about what a pipeline did.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes"`
	OutputBytes int `json:"output_bytes"`

	// Element counts
	ElementsRemoved map[string]int `json:"elements_removed"` // tag -> count

	// Attribute cleaning
	AttributesRemoved int `json:"attributes_removed"`

	// Structure inferred
	Classified      map[string]int `json:"classified"` // class -> count
	ListsBuilt      int            `json:"lists_built"`
	TablesLayout    int            `json:"tables_layout"`
	Indenters       int            `json:"indenters"`
	FootnotesPaired int            `json:"footnotes_paired"`
	LinksRewritten  int            `json:"links_rewritten"`

	// Timing
	StageDurations    map[string]time.Duration `json:"stage_durations_ms"`
	ParseDuration     time.Duration            `json:"parse_duration_ms"`
	TransformDuration time.Duration            `json:"transform_duration_ms"`
	OutputDuration    time.Duration            `json:"output_duration_ms"`
	TotalDuration     time.Duration            `json:"total_duration_ms"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
		Classified:      make(map[string]int),
		StageDurations:  make(map[string]time.Duration),
	}
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// RecordRemoval records that an element was removed.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// RecordClass records that an element was given a semantic class.
func (s *Stats) RecordClass(class string) {
	s.Classified[class]++
}

// RecordStage adds to the time spent in a stage. Stages that run twice
// accumulate.
func (s *Stats) RecordStage(name string, d time.Duration) {
	s.StageDurations[name] += d
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %s -> %s (%.1f%% reduction)\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes)), s.ReductionPercent()))

	sb.WriteString(fmt.Sprintf("Elements removed: %d\n", s.TotalElementsRemoved()))
	if len(s.ElementsRemoved) > 0 {
		sb.WriteString("Removed by tag: ")
		sb.WriteString(joinCounts(s.ElementsRemoved))
		sb.WriteString("\n")
	}

	if s.AttributesRemoved > 0 {
		sb.WriteString(fmt.Sprintf("Attributes removed: %d\n", s.AttributesRemoved))
	}

	if len(s.Classified) > 0 {
		sb.WriteString("Classified: ")
		sb.WriteString(joinCounts(s.Classified))
		sb.WriteString("\n")
	}

	if s.ListsBuilt > 0 || s.TablesLayout > 0 {
		sb.WriteString(fmt.Sprintf("Lists built: %d, layout tables: %d\n", s.ListsBuilt, s.TablesLayout))
	}

	if s.Indenters > 0 || s.FootnotesPaired > 0 {
		sb.WriteString(fmt.Sprintf("Indenters: %d, footnotes: %d\n", s.Indenters, s.FootnotesPaired))
	}

	if s.LinksRewritten > 0 {
		sb.WriteString(fmt.Sprintf("Links rewritten: %d\n", s.LinksRewritten))
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, transform=%v, output=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond),
		s.OutputDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

func joinCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

// Warning represents a non-fatal issue encountered during cleaning.
type Warning struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Context string `json:"context"` // offending element or text
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Stage, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Stage, w.Message)
}

// Result contains the output of a cleaning operation.
type Result struct {
	// Content is the cleaned output. Empty when Error is set.
	Content string `json:"content"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats"`

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning `json:"warnings,omitempty"`

	// Error is set when the pipeline refused or failed the input.
	Error error `json:"-"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(stage, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Stage:   stage,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
