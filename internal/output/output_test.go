package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type record struct {
	Source   string `json:"source" yaml:"source"`
	Warnings int    `json:"warnings" yaml:"warnings"`
}

type summary struct{ n int }

func (s summary) String() string {
	return strings.Repeat("x", s.n)
}

func TestNewWriter(t *testing.T) {
	tests := []struct {
		format  Format
		want    string
		wantErr bool
	}{
		{FormatJSON, "*output.JSONWriter", false},
		{FormatJSONL, "*output.JSONLWriter", false},
		{FormatYAML, "*output.YAMLWriter", false},
		{FormatText, "*output.TextWriter", false},
		{Format("xml"), "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWriter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err == nil {
				if got := typeName(w); got != tt.want {
					t.Errorf("NewWriter(%q) = %s, want %s", tt.format, got, tt.want)
				}
			}
		})
	}
}

func typeName(w Writer) string {
	switch w.(type) {
	case *JSONWriter:
		return "*output.JSONWriter"
	case *JSONLWriter:
		return "*output.JSONLWriter"
	case *YAMLWriter:
		return "*output.YAMLWriter"
	case *TextWriter:
		return "*output.TextWriter"
	}
	return "unknown"
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSONL", FormatJSONL, false},
		{" yaml ", FormatYAML, false},
		{"text", FormatText, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJSONWriter(t *testing.T) {
	t.Run("single record is an object", func(t *testing.T) {
		buf := &bytes.Buffer{}
		w := NewJSONWriter(buf, false, "")
		_ = w.Write(record{Source: "a.html", Warnings: 1})
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if got, want := buf.String(), `{"source":"a.html","warnings":1}`+"\n"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("several records are an array", func(t *testing.T) {
		buf := &bytes.Buffer{}
		w := NewJSONWriter(buf, true, "  ")
		_ = w.Write(record{Source: "a.html"})
		_ = w.Write(record{Source: "b.html"})
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		var got []record
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 2 || got[1].Source != "b.html" {
			t.Errorf("got %+v", got)
		}
		if !strings.Contains(buf.String(), "\n  {") {
			t.Errorf("expected indented output, got %q", buf.String())
		}
	})

	t.Run("empty writes nothing", func(t *testing.T) {
		buf := &bytes.Buffer{}
		if err := NewJSONWriter(buf, true, "  ").Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestJSONLWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)
	_ = w.Write(record{Source: "<a>.html"})
	_ = w.Write(record{Source: "b.html", Warnings: 2})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != `{"source":"<a>.html","warnings":0}` {
		t.Errorf("line 0 = %q", lines[0])
	}
}

func TestYAMLWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)
	_ = w.Write(record{Source: "a.html"})
	_ = w.Write(record{Source: "b.html"})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	dec := yaml.NewDecoder(strings.NewReader(buf.String()))
	var sources []string
	for {
		var r record
		if err := dec.Decode(&r); err != nil {
			break
		}
		sources = append(sources, r.Source)
	}
	if len(sources) != 2 || sources[0] != "a.html" || sources[1] != "b.html" {
		t.Errorf("decoded %v from %q", sources, buf.String())
	}

	t.Run("empty writes nothing", func(t *testing.T) {
		buf := &bytes.Buffer{}
		if err := NewYAMLWriter(buf).Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestTextWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)
	_ = w.Write(summary{n: 3})
	_ = w.Write(record{Source: "a.html", Warnings: 1})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	want := "xxx\n\n{Source:a.html Warnings:1}\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOptions(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON, WithPretty(true), WithIndent("\t"))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	_ = w.Write(record{Source: "a.html"})
	_ = w.Close()
	if !strings.Contains(buf.String(), "\n\t\"source\"") {
		t.Errorf("expected tab indent, got %q", buf.String())
	}

	buf.Reset()
	w, _ = NewWriter(buf, FormatJSON, WithPretty(false))
	_ = w.Write(record{Source: "a.html"})
	_ = w.Close()
	if strings.Contains(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		t.Errorf("expected compact output, got %q", buf.String())
	}
}
