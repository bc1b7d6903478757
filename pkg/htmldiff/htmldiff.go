// Package htmldiff produces a word-level HTML diff of two pretty-printed
// canonical documents.
package htmldiff

import (
	"regexp"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/jmylchreest/regtidy/internal/logger"
)

// DefaultSlowThreshold is the duration above which a diff is flagged slow.
const DefaultSlowThreshold = 1500 * time.Millisecond

// Options configures a diff.
type Options struct {
	// Raw keeps empty <ins>/<del> wrappers in the output.
	Raw bool
	// SlowThreshold overrides DefaultSlowThreshold when positive.
	SlowThreshold time.Duration
}

// Result is the outcome of a diff. Slow is advisory only.
type Result struct {
	Diff      string        `json:"diff"`
	Elapsed   time.Duration `json:"-"`
	ElapsedMs int64         `json:"elapsedMs"`
	Slow      bool          `json:"slow"`
}

var (
	emptyWrapperRe = regexp.MustCompile(`<(ins|del)\b[^>]*>\s*</(?:ins|del)>`)
	tagRe          = regexp.MustCompile(`<[^>]*>`)
	imgTagRe       = regexp.MustCompile(`(?i)^<img\b`)
	blockTagRe     = regexp.MustCompile(`^</?(?:p|h[1-6]|ul|ol|li|table|thead|tbody|tfoot|tr|td|th|blockquote|pre|div|hr|br|caption|dl|dt|dd)\b[^>]*>$`)
)

// Diff compares older and newer line by line. Both are expected in the
// pretty-printed form, where each line is one word or tag. Inserted words
// are wrapped in <ins>, deleted words in <del>; the structure of newer is
// kept.
func Diff(older, newer string, opts Options) Result {
	start := time.Now()
	a := splitLines(older)
	b := splitLines(newer)

	var out []string
	m := difflib.NewMatcher(a, b)
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			out = append(out, b[op.J1:op.J2]...)
		case 'd':
			out = appendDeleted(out, a[op.I1:op.I2])
		case 'i':
			out = appendInserted(out, b[op.J1:op.J2])
		case 'r':
			out = appendDeleted(out, a[op.I1:op.I2])
			out = appendInserted(out, b[op.J1:op.J2])
		}
	}

	diff := strings.Join(out, "\n")
	if !opts.Raw {
		diff = StripEmptyWrappers(diff)
	}

	elapsed := time.Since(start)
	threshold := opts.SlowThreshold
	if threshold <= 0 {
		threshold = DefaultSlowThreshold
	}
	r := Result{
		Diff:      diff,
		Elapsed:   elapsed,
		ElapsedMs: elapsed.Milliseconds(),
		Slow:      elapsed > threshold,
	}
	if r.Slow {
		logger.Warn("slow diff", "elapsed_ms", r.ElapsedMs, "threshold_ms", threshold.Milliseconds(),
			"older_lines", len(a), "newer_lines", len(b))
	}
	return r
}

// StripEmptyWrappers removes <ins> and <del> elements holding nothing but
// whitespace.
func StripEmptyWrappers(s string) string {
	for {
		next := emptyWrapperRe.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}

func splitLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.Trim(l, " \t\r\n\f"); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// appendDeleted adds the words of deleted lines inside one <del>. Tags of
// the older document are dropped so the result keeps newer's structure.
func appendDeleted(out, lines []string) []string {
	var words []string
	for _, l := range lines {
		if w := strings.TrimSpace(tagRe.ReplaceAllString(l, "")); w != "" {
			words = append(words, w)
		}
	}
	return append(out, "<del>"+strings.Join(words, " ")+"</del>")
}

// appendInserted wraps runs of inserted words in <ins>. Block tags are
// emitted unwrapped, and inline tags glued to a word stay outside the
// wrapper so every <ins> is balanced.
func appendInserted(out, lines []string) []string {
	var run []string
	flush := func() {
		if len(run) > 0 {
			out = append(out, "<ins>"+strings.Join(run, " ")+"</ins>")
			run = nil
		}
	}
	for _, l := range lines {
		switch {
		case blockTagRe.MatchString(l):
			flush()
			out = append(out, l)
		case hasMarkup(l):
			flush()
			out = append(out, wrapContent(l, "ins"))
		default:
			run = append(run, l)
		}
	}
	flush()
	return out
}

// hasMarkup reports whether line holds a tag other than an image.
func hasMarkup(line string) bool {
	for _, t := range tagRe.FindAllString(line, -1) {
		if !imgTagRe.MatchString(t) {
			return true
		}
	}
	return false
}

// wrapContent wraps each content segment of line in a tag element. Tags
// are copied outside the wrappers; images count as content.
func wrapContent(line, tag string) string {
	var sb, content strings.Builder
	flush := func() {
		if content.Len() > 0 {
			sb.WriteString("<" + tag + ">" + content.String() + "</" + tag + ">")
			content.Reset()
		}
	}
	last := 0
	for _, loc := range tagRe.FindAllStringIndex(line, -1) {
		content.WriteString(line[last:loc[0]])
		t := line[loc[0]:loc[1]]
		if imgTagRe.MatchString(t) {
			content.WriteString(t)
		} else {
			flush()
			sb.WriteString(t)
		}
		last = loc[1]
	}
	content.WriteString(line[last:])
	flush()
	return sb.String()
}
