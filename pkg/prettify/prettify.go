// Package prettify converts canonical HTML to and from a diff-stable text
// form with one token per line.
//
// Words and the inline tags glued to them form one line. Block tags sit
// on their own line between blank lines, <br> sits on its own line, and
// <pre> elements are copied byte for byte. DePrettify joins the lines
// back together.
package prettify

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

type printer struct {
	lines []string
	cur   strings.Builder
}

func (p *printer) flush() {
	if p.cur.Len() > 0 {
		p.lines = append(p.lines, p.cur.String())
		p.cur.Reset()
	}
}

func (p *printer) blank() {
	if n := len(p.lines); n > 0 && p.lines[n-1] != "" {
		p.lines = append(p.lines, "")
	}
}

// own puts s on a line of its own, optionally between blank lines.
func (p *printer) own(s string, separated bool) {
	p.flush()
	if separated {
		p.blank()
	}
	p.lines = append(p.lines, s)
	if separated {
		p.blank()
	}
}

func (p *printer) text(raw string) {
	for _, r := range raw {
		if isSpace(r) {
			p.flush()
			continue
		}
		p.cur.WriteRune(r)
	}
}

// asciiSpace is the whitespace Prettify breaks lines on. U+00A0 is
// content, as in indenter runs.
const asciiSpace = " \t\n\r\f"

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// Prettify reformats s into the diff-stable form. It is deterministic and
// idempotent.
func Prettify(s string) string {
	p := &printer{}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				p.text(string(z.Raw()))
			}
			return p.finish()
		case html.TextToken:
			p.text(string(z.Raw()))
		case html.StartTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Pre {
				p.own(raw+rawUntilClose(z, atom.Pre), true)
				continue
			}
			p.tag(string(name), raw)
		case html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			p.tag(string(name), string(z.Raw()))
		case html.CommentToken, html.DoctypeToken:
			p.own(string(z.Raw()), false)
		}
	}
}

func (p *printer) tag(name, raw string) {
	switch {
	case name == "br":
		p.own(raw, false)
	case dom.BlockTags[name]:
		p.own(raw, true)
	default:
		p.cur.WriteString(raw)
	}
}

// rawUntilClose returns the raw source up to and including the end tag
// closing the element a was opened with.
func rawUntilClose(z *html.Tokenizer, a atom.Atom) string {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		sb.Write(z.Raw())
		if tt != html.StartTagToken && tt != html.EndTagToken {
			continue
		}
		name, _ := z.TagName()
		if atom.Lookup(name) != a {
			continue
		}
		if tt == html.StartTagToken {
			depth++
		} else {
			depth--
		}
	}
	return sb.String()
}

func (p *printer) finish() string {
	p.flush()
	for len(p.lines) > 0 && p.lines[len(p.lines)-1] == "" {
		p.lines = p.lines[:len(p.lines)-1]
	}
	if len(p.lines) == 0 {
		return ""
	}
	return strings.Join(p.lines, "\n") + "\n"
}

var (
	preRe   = regexp.MustCompile(`(?is)<pre\b[^>]*>.*?</pre\s*>`)
	tagRe   = regexp.MustCompile(`^</?([a-zA-Z][a-zA-Z0-9]*)\b[^>]*>$`)
	blankRe = regexp.MustCompile(`^\s*$`)
)

// DePrettify collapses the pretty form back into single-line HTML. Lines
// are joined with a space except next to block tags and <br>. <pre>
// elements are kept verbatim.
func DePrettify(s string) string {
	var tokens []string
	last := 0
	for _, loc := range preRe.FindAllStringIndex(s, -1) {
		tokens = appendLines(tokens, s[last:loc[0]])
		tokens = append(tokens, s[loc[0]:loc[1]])
		last = loc[1]
	}
	tokens = appendLines(tokens, s[last:])

	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 && !isBreaking(tokens[i-1]) && !isBreaking(t) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t)
	}
	return sb.String()
}

func appendLines(tokens []string, s string) []string {
	for _, line := range strings.Split(s, "\n") {
		if blankRe.MatchString(line) {
			continue
		}
		tokens = append(tokens, strings.Trim(line, asciiSpace))
	}
	return tokens
}

// isBreaking reports whether a token is a lone block tag, <br> or <pre>.
func isBreaking(t string) bool {
	if preRe.MatchString(t) && strings.HasPrefix(strings.ToLower(t), "<pre") {
		return true
	}
	m := tagRe.FindStringSubmatch(t)
	if m == nil {
		return false
	}
	name := strings.ToLower(m[1])
	return name == "br" || dom.BlockTags[name]
}
