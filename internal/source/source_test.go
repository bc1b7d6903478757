package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.is/a.html": true,
		"HTTP://example.is":         true,
		"reglugerd.html":            false,
		"-":                         false,
		"ftp://example.is/a":        false,
	}
	for ref, want := range tests {
		if got := IsURL(ref); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", ref, got, want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "reglugerd.html", []byte("<p>1. gr.</p>"))

	doc, err := NewLoader(Config{}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.HTML != "<p>1. gr.</p>" {
		t.Errorf("HTML = %q", doc.HTML)
	}
	if doc.Bytes != 13 || doc.Ref != path {
		t.Errorf("unexpected metadata %+v", doc)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := NewLoader(Config{}).Load(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want not-exist", err)
	}
}

func TestLoadStdin(t *testing.T) {
	l := NewLoader(Config{Stdin: strings.NewReader("<p>Texti</p>")})
	doc, err := l.Load(context.Background(), Stdin)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.HTML != "<p>Texti</p>" {
		t.Errorf("HTML = %q", doc.HTML)
	}
}

func TestLoadTooLarge(t *testing.T) {
	l := NewLoader(Config{MaxBytes: 4, Stdin: strings.NewReader("<p>Texti</p>")})
	if _, err := l.Load(context.Background(), Stdin); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Load() error = %v, want ErrTooLarge", err)
	}

	l = NewLoader(Config{MaxBytes: 12, Stdin: strings.NewReader("<p>Texti</p>")})
	if _, err := l.Load(context.Background(), Stdin); err != nil {
		t.Errorf("Load() at the limit error = %v", err)
	}
}

func TestLoadDecodesLegacyCharset(t *testing.T) {
	// 0xF0 is "ð" and 0xE1 is "á" in windows-1252.
	raw := []byte(`<html><head><meta http-equiv="Content-Type" content="text/html; charset=windows-1252"></head><body><p>Vi` + "\xf0" + `auki ` + "\xe1" + `</p></body></html>`)
	path := writeFile(t, "legacy.htm", raw)

	doc, err := NewLoader(Config{}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !strings.Contains(doc.HTML, "Viðauki á") {
		t.Errorf("not decoded: %q", doc.HTML)
	}
}

func TestLoadSelector(t *testing.T) {
	page := `<html><body><nav>Valmynd</nav><div class="regulation"><p>1. gr.</p></div></body></html>`
	path := writeFile(t, "page.html", []byte(page))

	doc, err := NewLoader(Config{Selector: "div.regulation"}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.HTML != "<p>1. gr.</p>" {
		t.Errorf("HTML = %q", doc.HTML)
	}

	if _, err := NewLoader(Config{Selector: "article"}).Load(context.Background(), path); err == nil {
		t.Error("expected error when the selector matches nothing")
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reglugerd" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<p>Gildistaka</p>"))
	}))
	defer srv.Close()

	l := NewLoader(Config{})
	doc, err := l.Load(context.Background(), srv.URL+"/reglugerd")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.HTML != "<p>Gildistaka</p>" {
		t.Errorf("HTML = %q", doc.HTML)
	}
	if !strings.HasPrefix(doc.ContentType, "text/html") {
		t.Errorf("ContentType = %q", doc.ContentType)
	}

	if _, err := l.Load(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("expected error for 404")
	}
}
