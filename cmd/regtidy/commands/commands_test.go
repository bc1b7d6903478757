package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/regtidy/pkg/cleaner/regtidy"
	"github.com/jmylchreest/regtidy/pkg/htmldiff"
)

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"-":                                 "stdin.html",
		"skjol/reglugerd.htm":               "reglugerd.html",
		"a.html":                            "a.html",
		"notes.txt":                         "notes.txt.html",
		"https://example.is/reglugerd/1234": "1234.html",
		"https://example.is/":               "example.is.html",
	}
	for ref, want := range tests {
		if got := outputName(ref); got != want {
			t.Errorf("outputName(%q) = %q, want %q", ref, got, want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"10MB", 10 * 1000 * 1000, false},
		{"512KiB", 512 * 1024, false},
		{"lots", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("parseSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestDocumentReportString(t *testing.T) {
	stats := regtidy.NewStats()
	stats.InputBytes, stats.OutputBytes = 2000, 1000
	r := documentReport{
		Source:   "a.htm",
		Cleaner:  "regtidy-dirty",
		Output:   "out/a.html",
		Stats:    stats,
		Warnings: []regtidy.Warning{{Stage: "reconstructLists", Message: "mixed markers"}},
	}
	out := r.String()
	for _, want := range []string{"a.htm (regtidy-dirty)", "Output: out/a.html", "50.0% reduction", "[reconstructLists] mixed markers"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}

	failed := documentReport{Source: "b.htm", Cleaner: "regtidy-dirty", Error: "id conflict"}
	if out := failed.String(); !strings.Contains(out, "Error: id conflict") {
		t.Errorf("error not reported: %q", out)
	}
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "reglugerd.htm")
	out := filepath.Join(dir, "reglugerd.html")
	if err := os.WriteFile(in, []byte(`<p class="MsoNormal">Texti <b>feitur</b></p>`), 0o600); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"clean", in, "--skip-prettier", "-o", out, "-q"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("clean: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<p>Texti <strong>feitur</strong></p>" {
		t.Errorf("output = %q", got)
	}
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "v1.html")
	newer := filepath.Join(dir, "v2.html")
	_ = os.WriteFile(older, []byte("<p>Gamli texti</p>"), 0o600)
	_ = os.WriteFile(newer, []byte("<p>Nýi texti</p>"), 0o600)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{"diff", older, newer, "--json", "-q"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("diff: %v", err)
	}

	var result htmldiff.Result
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if !strings.Contains(result.Diff, "<ins>Nýi</ins>") {
		t.Errorf("diff = %q", result.Diff)
	}
}

func TestSlowThresholdDefaults(t *testing.T) {
	for _, cmd := range []*cobra.Command{diffCmd, serveCmd} {
		got, err := cmd.Flags().GetDuration("slow-threshold")
		if err != nil {
			t.Fatalf("%s: %v", cmd.Name(), err)
		}
		if got != htmldiff.DefaultSlowThreshold {
			t.Errorf("%s slow-threshold default = %v, want %v", cmd.Name(), got, htmldiff.DefaultSlowThreshold)
		}
	}
}
