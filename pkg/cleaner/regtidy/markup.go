package regtidy

import (
	"regexp"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

var (
	// hiddenSelector matches content the legacy export never displayed.
	hiddenSelector = cascadia.MustCompile(`[hidden], [aria-hidden="true"], [style*="display:none"], [style*="display: none"], [style*="mso-hide:all"], [style*="visibility:hidden"]`)

	// bookmarkSelector matches word-processor bookmark anchors.
	bookmarkSelector = cascadia.MustCompile(`a[name^="_Toc"], a[name^="_Hlk"], a[name^="OLE_LINK"], a[name^="_GoBack"]`)

	entityRe    = regexp.MustCompile(`&(?:[a-zA-Z][a-zA-Z0-9]{1,31}|#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6});`)
	textAlignRe = regexp.MustCompile(`(?i)text-align\s*:\s*([a-z]+)`)
	footnoteBox = regexp.MustCompile(`(?i)mso-element\s*:\s*footnote`)
)

// escapePre flattens everything inside <pre> into a single text node.
// Later stages never look inside pre again.
func escapePre(d *Doc) {
	for _, pre := range d.Find("pre").Nodes {
		if dom.InPre(pre.Parent) {
			continue
		}
		var sb strings.Builder
		preText(pre, &sb)
		for _, c := range dom.Children(pre) {
			pre.RemoveChild(c)
		}
		if sb.Len() > 0 {
			pre.AppendChild(dom.NewText(sb.String()))
		}
	}
}

func preText(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			sb.WriteString(c.Data)
		case dom.IsElement(c, "br"):
			sb.WriteString("\n")
		case c.Type == html.ElementNode:
			preText(c, sb)
		}
	}
}

// stripComments removes comment nodes.
func stripComments(d *Doc) {
	dom.Walk(d.Body, func(n *html.Node) bool {
		if n.Type == html.CommentNode {
			dom.Detach(n)
			return false
		}
		return true
	})
}

// unescapeEntities decodes entities that survived as literal text, which
// happens when legacy exports escape twice. Decoding again is exactly why
// the import pipeline must never run twice.
func unescapeEntities(d *Doc) {
	dom.Walk(d.Body, func(n *html.Node) bool {
		if dom.IsElement(n, "pre") {
			return false
		}
		if n.Type == html.TextNode && entityRe.MatchString(n.Data) {
			n.Data = html.UnescapeString(n.Data)
		}
		return true
	})
}

// stripNoise drops hidden content and unwraps bookmark anchors.
func stripNoise(d *Doc) {
	for _, n := range hiddenSelector.MatchAll(d.Body) {
		if d.attached(n) {
			d.remove(n)
		}
	}
	for _, n := range bookmarkSelector.MatchAll(d.Body) {
		if d.attached(n) {
			d.Stats().RecordRemoval(n.Data)
			dom.Unwrap(n)
		}
	}
}

// normalizeTags maps presentational tags onto the canonical vocabulary.
func normalizeTags(d *Doc) {
	renames := map[string]string{"b": "strong", "i": "em", "strike": "s"}
	for _, n := range dom.Elements(d.Body, nil) {
		if to, ok := renames[n.Data]; ok {
			dom.Rename(n, to)
		}
	}

	d.each("center", func(n *html.Node) {
		if hasBlockChild(n) {
			for _, c := range dom.ElementChildren(n) {
				if dom.IsBlock(c) && !dom.HasAttr(c, "align") {
					dom.SetAttr(c, "align", "center")
				}
			}
			dom.Unwrap(n)
			return
		}
		dom.Rename(n, "p")
		dom.SetAttr(n, "align", "center")
	})

	// Word names footnote anchors instead of giving them ids.
	d.each(`a[name^="_ftn"]`, func(n *html.Node) {
		if !dom.HasAttr(n, "id") {
			dom.SetAttr(n, "id", dom.AttrOr(n, "name", ""))
		}
		dom.RemoveAttr(n, "name")
	})
}

// normalizeAlignment turns inline text-align styles into align attributes.
func normalizeAlignment(d *Doc) {
	d.each("[style]", func(n *html.Node) {
		if !dom.IsBlock(n) || dom.HasAttr(n, "align") {
			return
		}
		if m := textAlignRe.FindStringSubmatch(dom.AttrOr(n, "style", "")); m != nil {
			dom.SetAttr(n, "align", strings.ToLower(m[1]))
		}
	})
}

// unwrapContainers dissolves <div> wrappers. A div holding only inline
// content becomes a paragraph. Otherwise its id moves onto its first block
// child, which fails hard if that child already has a different id.
func unwrapContainers(d *Doc) error {
	divs := d.Find("div").Nodes
	for i := len(divs) - 1; i >= 0; i-- {
		div := divs[i]
		if !d.attached(div) || dom.InPre(div) {
			continue
		}
		if footnoteBox.MatchString(dom.AttrOr(div, "style", "")) {
			dom.RemoveAttr(div, "id")
		}
		if !hasBlockChild(div) {
			dom.Rename(div, "p")
			continue
		}
		if target := firstBlockChild(div); target != nil {
			if err := dom.PushDownID(div, target); err != nil {
				return err
			}
		}
		if align, ok := dom.Attr(div, "align"); ok {
			for _, c := range dom.ElementChildren(div) {
				if dom.IsBlock(c) && !dom.HasAttr(c, "align") {
					dom.SetAttr(c, "align", align)
				}
			}
		}
		d.Stats().RecordRemoval("div")
		dom.Unwrap(div)
	}
	return nil
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsBlock(c) {
			return true
		}
	}
	return false
}

func firstBlockChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsBlock(c) {
			return c
		}
	}
	return nil
}

// unwrapBareElements unwraps spans and anchors left without attributes
// and drops images without a source.
func unwrapBareElements(d *Doc) {
	d.each("span, a", func(n *html.Node) {
		if len(n.Attr) == 0 {
			dom.Unwrap(n)
		}
	})
	d.each("img", func(n *html.Node) {
		if dom.AttrOr(n, "src", "") == "" {
			d.remove(n)
		}
	})
}

// paragraphContainers may hold paragraphs but not loose inline content.
var paragraphContainers = map[string]bool{"body": true, "blockquote": true}

// paragraphize wraps loose inline content of the body and blockquotes in
// paragraphs. Runs without text are left for whitespace reconciliation.
func paragraphize(d *Doc) {
	containers := append([]*html.Node{d.Body}, d.Find("blockquote").Nodes...)
	for _, container := range containers {
		if !d.attached(container) || dom.InPre(container) {
			continue
		}
		var run []*html.Node
		flush := func() {
			if runHasContent(run) {
				p := dom.NewElement("p")
				dom.InsertBefore(run[0], p)
				for _, n := range run {
					dom.Detach(n)
					p.AppendChild(n)
				}
			}
			run = nil
		}
		for _, c := range dom.Children(container) {
			if dom.IsInline(c) || c.Type == html.CommentNode {
				run = append(run, c)
				continue
			}
			flush()
		}
		flush()
	}
}

func runHasContent(run []*html.Node) bool {
	for _, n := range run {
		if hasContent(n) {
			return true
		}
	}
	return false
}

// hasContent reports whether n renders something other than whitespace
// and line breaks.
func hasContent(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return !dom.IsWhitespace(n.Data)
	case html.ElementNode:
		switch {
		case dom.IsElement(n, "img", "hr"):
			return true
		case dom.IsElement(n, "pre"):
			return dom.TextContent(n) != ""
		case dom.IsElement(n, "a") && dom.HasAttr(n, "id"):
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if hasContent(c) {
				return true
			}
		}
	}
	return false
}

// removableWhenEmpty are elements that mean nothing without content.
var removableWhenEmpty = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "dl": true, "dt": true, "dd": true,
	"blockquote": true, "caption": true, "table": true,
	"span": true, "strong": true, "em": true, "u": true, "s": true,
	"sub": true, "sup": true, "small": true, "code": true, "a": true,
	"ins": true, "del": true, "abbr": true,
}

// removeEmpty removes elements with no content, innermost first.
func removeEmpty(d *Doc) {
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for _, c := range dom.Children(n) {
			if c.Type == html.ElementNode && c.Data != "pre" {
				visit(c)
			}
		}
		if n == d.Body || !removableWhenEmpty[n.Data] || isIndenter(n) {
			return
		}
		if !hasContent(n) && !hasIndenter(n) {
			d.remove(n)
		}
	}
	visit(d.Body)
}

func hasIndenter(n *html.Node) bool {
	found := false
	dom.Walk(n, func(c *html.Node) bool {
		if isIndenter(c) {
			found = true
		}
		return !found
	})
	return found
}

// sortAttributes orders attributes by name so output is stable.
func sortAttributes(d *Doc) {
	dom.Walk(d.Body, func(n *html.Node) bool {
		if n.Type == html.ElementNode && len(n.Attr) > 1 {
			sort.SliceStable(n.Attr, func(i, j int) bool {
				return n.Attr[i].Key < n.Attr[j].Key
			})
		}
		return true
	})
}
