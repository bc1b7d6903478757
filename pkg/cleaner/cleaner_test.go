package cleaner

import (
	"errors"
	"strings"
	"testing"

	"github.com/jmylchreest/regtidy/pkg/cleaner/regtidy"
)

// --- NoopCleaner Tests ---

func TestNoopCleaner_Clean(t *testing.T) {
	c := NewNoop()

	tests := []struct {
		name  string
		input string
	}{
		{"empty_string", ""},
		{"plain_text", "Halló heimur"},
		{"html_content", `<p class="MsoNormal">1. gr.</p>`},
		{"whitespace", "  \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Clean(tt.input)
			if err != nil {
				t.Errorf("Clean() error = %v, want nil", err)
			}
			if got != tt.input {
				t.Errorf("Clean() = %q, want %q", got, tt.input)
			}
		})
	}
}

// --- Prettify Tests ---

func TestPrettifyCleaners(t *testing.T) {
	input := "<p>A <em>b</em></p><p>C</p>"

	pretty, err := NewPrettify().Clean(input)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if !strings.HasPrefix(pretty, "<p>\n\n") {
		t.Errorf("expected pretty output, got %q", pretty)
	}

	back, err := NewDePrettify().Clean(pretty)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if back != input {
		t.Errorf("round trip = %q, want %q", back, input)
	}
}

// --- ChainCleaner Tests ---

func TestChainCleaner_Empty(t *testing.T) {
	c := NewChain()

	input := "unchanged content"
	got, err := c.Clean(input)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if got != input {
		t.Errorf("Clean() = %q, want %q", got, input)
	}
}

type suffixCleaner struct{ suffix string }

func (c *suffixCleaner) Clean(html string) (string, error) { return html + c.suffix, nil }
func (c *suffixCleaner) Name() string                      { return "suffix" + c.suffix }

type errorCleaner struct{ err error }

func (c *errorCleaner) Clean(string) (string, error) { return "", c.err }
func (c *errorCleaner) Name() string                 { return "error" }

func TestChainCleaner_Order(t *testing.T) {
	c := NewChain(&suffixCleaner{"1"}, &suffixCleaner{"2"}, &suffixCleaner{"3"})
	got, err := c.Clean("x")
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if got != "x123" {
		t.Errorf("Clean() = %q, want %q", got, "x123")
	}
}

func TestChainCleaner_ErrorPropagation(t *testing.T) {
	sentinel := errors.New("boom")
	c := NewChain(NewNoop(), &errorCleaner{err: sentinel}, &suffixCleaner{"!"})

	got, err := c.Clean("x")
	if !errors.Is(err, sentinel) {
		t.Fatalf("Clean() error = %v, want %v", err, sentinel)
	}
	if !strings.HasPrefix(err.Error(), "error: ") {
		t.Errorf("error should name the failing cleaner, got %q", err)
	}
	if got != "" {
		t.Errorf("partial output returned: %q", got)
	}
}

func TestChainCleaner_Name(t *testing.T) {
	c := NewChain(regtidy.NewEditor(nil, false), NewPrettify())
	if got, want := c.Name(), "chain(regtidy-editor->prettify)"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

// --- Factory Tests ---

func TestNew(t *testing.T) {
	tests := []struct {
		names   []string
		want    string
		wantErr bool
	}{
		{[]string{"dirty"}, "regtidy-dirty", false},
		{[]string{"editor"}, "regtidy-editor", false},
		{[]string{"noop"}, "noop", false},
		{[]string{"editor", "prettify"}, "chain(regtidy-editor->prettify)", false},
		{[]string{"markdown"}, "", true},
		{nil, "", true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.names, "+"), func(t *testing.T) {
			c, err := New(nil, tt.names...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%v) error = %v, wantErr %v", tt.names, err, tt.wantErr)
			}
			if err == nil && c.Name() != tt.want {
				t.Errorf("New(%v).Name() = %q, want %q", tt.names, c.Name(), tt.want)
			}
		})
	}
}

func TestNames(t *testing.T) {
	want := []string{"deprettify", "dirty", "editor", "noop", "prettify"}
	got := Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestEditorChainIsIdempotent(t *testing.T) {
	c, err := New(regtidy.DefaultConfig(), "editor", "prettify")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	input := `<h3 class="article__title">1. gr. <em class="article__name">Gildissvið</em></h3><p>Texti  greinar.</p>`

	once, err := c.Clean(input)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	twice, err := c.Clean(prettifyInverse(t, once))
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if once != twice {
		t.Errorf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func prettifyInverse(t *testing.T, s string) string {
	t.Helper()
	out, err := NewDePrettify().Clean(s)
	if err != nil {
		t.Fatalf("DePrettify error = %v", err)
	}
	return out
}
