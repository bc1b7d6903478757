package prettify_test

import (
	"strings"
	"testing"

	"github.com/jmylchreest/regtidy/pkg/cleaner/regtidy"
	"github.com/jmylchreest/regtidy/pkg/prettify"
)

func TestRoundTripEditorOutput(t *testing.T) {
	inputs := map[string]string{
		"indenter":      `<p>A<span data-legacy-indenter="3"></span>B</p>`,
		"two indenters": `<p>A<span data-legacy-indenter="2"></span>B<span data-legacy-indenter="4"></span>C</p>`,
		"article":       `<h3 class="article__title">1. gr. <em class="article__name">Gildissvið</em></h3><p>Texti <strong>feitur</strong> greinar.</p>`,
		"list":          `<ol type="a"><li>Fyrsti</li><li>Annar</li></ol>`,
		"footnote":      `<p>Texti<a class="footnote-reference" href="#_ftn1" id="_ftnref1">1</a></p><p class="footnote" id="_ftn1"><a class="footnote__marker" href="#_ftnref1">1</a> Neðanmálsgrein.</p>`,
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			cleaned, err := regtidy.CleanupEditorOutput(in, nil)
			if err != nil {
				t.Fatalf("CleanupEditorOutput() error = %v", err)
			}
			if got := prettify.DePrettify(prettify.Prettify(cleaned)); got != cleaned {
				t.Errorf("round trip changed output:\n in: %q\nout: %q", cleaned, got)
			}
		})
	}
}

func TestIndenterWidthSurvivesPrettify(t *testing.T) {
	cleaned, err := regtidy.CleanupEditorOutput(`<p>A<span data-legacy-indenter="3"></span>B</p>`, nil)
	if err != nil {
		t.Fatalf("CleanupEditorOutput() error = %v", err)
	}
	run := " " + strings.Repeat("\u00a0", 3) + " "
	if !strings.Contains(cleaned, run) {
		t.Fatalf("indenter not rehydrated: %q", cleaned)
	}
	if got := prettify.DePrettify(prettify.Prettify(cleaned)); !strings.Contains(got, run) {
		t.Errorf("indenter width lost: %q", got)
	}
}
