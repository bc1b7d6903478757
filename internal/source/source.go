// Package source loads regulation HTML from files, stdin or URLs.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html/charset"

	"github.com/jmylchreest/regtidy/internal/logger"
)

// Stdin is the reference that reads from standard input.
const Stdin = "-"

const defaultUserAgent = "regtidy/1.0 (+https://github.com/jmylchreest/regtidy)"

// ErrTooLarge is returned when a document exceeds Config.MaxBytes.
var ErrTooLarge = errors.New("document exceeds size limit")

// Config holds loader options.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBytes limits the raw document size. Zero means unlimited.
	MaxBytes int64
	// Selector picks the fragment to clean out of a full page, e.g.
	// "div.regulation". Empty keeps the whole document.
	Selector string
	// Stdin replaces os.Stdin, for tests and servers.
	Stdin io.Reader
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Document is one loaded input.
type Document struct {
	Ref         string    `json:"ref"`
	HTML        string    `json:"-"`
	ContentType string    `json:"content_type,omitempty"`
	Bytes       int       `json:"bytes"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Loader resolves references to documents.
type Loader struct {
	config Config
}

// NewLoader creates a loader, filling unset options from DefaultConfig.
func NewLoader(cfg Config) *Loader {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	return &Loader{config: cfg}
}

// IsURL reports whether ref is fetched over HTTP.
func IsURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads ref: "-" for stdin, an http(s) URL, or a file path. Input is
// decoded to UTF-8 using the declared or sniffed charset.
func (l *Loader) Load(ctx context.Context, ref string) (Document, error) {
	doc := Document{Ref: ref}
	var (
		raw []byte
		err error
	)
	switch {
	case ref == Stdin:
		raw, err = l.readAll(l.config.Stdin)
	case IsURL(ref):
		raw, doc.ContentType, err = l.fetch(ctx, ref)
	default:
		raw, err = l.readFile(ref)
	}
	if err != nil {
		return doc, fmt.Errorf("load %s: %w", ref, err)
	}

	text, err := decode(raw, doc.ContentType)
	if err != nil {
		return doc, fmt.Errorf("decode %s: %w", ref, err)
	}
	if l.config.Selector != "" {
		text, err = selectFragment(text, l.config.Selector)
		if err != nil {
			return doc, fmt.Errorf("select %s: %w", ref, err)
		}
	}

	doc.HTML = text
	doc.Bytes = len(raw)
	doc.LoadedAt = time.Now()
	logger.Debug("document loaded", "ref", ref, "bytes", doc.Bytes, "content_type", doc.ContentType)
	return doc, nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path) //#nosec G304 -- CLI reads user-specified input files
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return l.readAll(f)
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	if l.config.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.config.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.config.MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// fetch retrieves a page using Colly.
func (l *Loader) fetch(ctx context.Context, targetURL string) ([]byte, string, error) {
	logger.Debug("fetch starting", "url", targetURL)

	c := colly.NewCollector(
		colly.UserAgent(l.config.UserAgent),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(l.config.Timeout)
	// Colly truncates at MaxBodySize; one extra byte detects overflow.
	c.MaxBodySize = 0
	if l.config.MaxBytes > 0 {
		c.MaxBodySize = int(l.config.MaxBytes) + 1
	}

	var (
		body        []byte
		contentType string
		fetchErr    error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		contentType = r.Headers.Get("Content-Type")
		logger.Debug("fetch response received", "status", r.StatusCode, "content_type", contentType, "body_size", len(r.Body))
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch error (status %d): %w", status, err)
	})

	if err := c.Visit(targetURL); err != nil {
		return nil, "", fmt.Errorf("failed to visit URL: %w", err)
	}
	if fetchErr != nil {
		return nil, "", fetchErr
	}
	if l.config.MaxBytes > 0 && int64(len(body)) > l.config.MaxBytes {
		return nil, "", ErrTooLarge
	}
	return body, contentType, nil
}

// decode converts raw to UTF-8. Valid UTF-8 passes through; anything else
// is decoded by its declared or sniffed charset, which for legacy exports
// is usually windows-1252 in a meta tag.
func decode(raw []byte, contentType string) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// selectFragment returns the inner HTML of every element matching selector,
// concatenated in document order.
func selectFragment(page, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", err
	}
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return "", fmt.Errorf("selector %q matched nothing", selector)
	}
	var sb strings.Builder
	var innerErr error
	sel.Each(func(_ int, s *goquery.Selection) {
		if innerErr != nil {
			return
		}
		inner, err := s.Html()
		if err != nil {
			innerErr = err
			return
		}
		sb.WriteString(inner)
	})
	if innerErr != nil {
		return "", innerErr
	}
	return sb.String(), nil
}
