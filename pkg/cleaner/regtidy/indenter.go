package regtidy

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

var (
	tabCountRe = regexp.MustCompile(`(?i)mso-tab-count\s*:\s*(\d+)`)
	spaceRunRe = regexp.MustCompile(`(?i)mso-spacerun|mso-tab-count`)
)

func isIndenter(n *html.Node) bool {
	return dom.IsElement(n, "span") && dom.HasAttr(n, dom.AttrIndenter)
}

// IndenterWidth returns the width of an indenter marker, or 0.
func IndenterWidth(n *html.Node) int {
	w, err := strconv.Atoi(dom.AttrOr(n, dom.AttrIndenter, ""))
	if err != nil || w < 0 {
		return 0
	}
	return w
}

// flagIndenters replaces word-processor tab and space-run spans with empty
// indenter markers. The width is the number of whitespace characters the
// span held, or its tab count times the tab width.
func flagIndenters(d *Doc) {
	d.each("span[style]", func(n *html.Node) {
		style := dom.AttrOr(n, "style", "")
		if !spaceRunRe.MatchString(style) {
			return
		}
		text := dom.TextContent(n)
		if !dom.IsWhitespace(text) {
			return
		}
		width := 0
		for _, r := range text {
			if r != '\u200b' && r != '\ufeff' {
				width++
			}
		}
		if width == 0 {
			if m := tabCountRe.FindStringSubmatch(style); m != nil {
				tabs, _ := strconv.Atoi(m[1])
				width = tabs * d.Config.Thresholds.TabWidth
			}
		}
		if width == 0 {
			d.remove(n)
			return
		}
		for _, c := range dom.Children(n) {
			n.RemoveChild(c)
		}
		n.Attr = []html.Attribute{{Key: dom.AttrIndenter, Val: strconv.Itoa(width)}}
		d.Stats().Indenters++
	})
}

// releaseContent moves text an editor typed into a marker out after it.
// Markers holding only whitespace are left alone.
func releaseContent(n *html.Node) {
	if dom.IsWhitespace(dom.TextContent(n)) {
		return
	}
	next := n.NextSibling
	for _, c := range dom.Children(n) {
		n.RemoveChild(c)
		n.Parent.InsertBefore(c, next)
	}
}

// removeOrphanIndenters drops markers with no content beside them.
func removeOrphanIndenters(d *Doc) {
	d.each("span["+dom.AttrIndenter+"]", func(n *html.Node) {
		releaseContent(n)
		if !adjacentContent(n, true) && !adjacentContent(n, false) {
			d.remove(n)
		}
	})
}

func adjacentContent(n *html.Node, forward bool) bool {
	step := func(s *html.Node) *html.Node {
		if forward {
			return s.NextSibling
		}
		return s.PrevSibling
	}
	for s := step(n); s != nil; s = step(s) {
		if dom.IsBlank(s) || isIndenter(s) {
			continue
		}
		if dom.IsElement(s, "br") || dom.IsBlock(s) {
			return false
		}
		return hasContent(s)
	}
	return false
}

// rehydrateIndenters fills every marker with a fixed-width run of
// non-breaking spaces, padded by one regular space on each side.
func rehydrateIndenters(d *Doc) {
	d.each("span["+dom.AttrIndenter+"]", func(n *html.Node) {
		releaseContent(n)
		for _, c := range dom.Children(n) {
			n.RemoveChild(c)
		}
		w := IndenterWidth(n)
		n.AppendChild(dom.NewText(" " + strings.Repeat("\u00a0", w) + " "))
	})
}
