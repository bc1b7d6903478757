package regtidy

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

// reconcileWhitespace brings whitespace and line breaks into canonical
// form:
//
//   - runs of whitespace, non-breaking spaces included, become one space
//   - inline elements never start or end with whitespace
//   - lines (block content between block boundaries) are trimmed of
//     whitespace and <br> at both ends
//   - no whitespace touches a <br>, and at most two <br> follow each other
//   - a double <br> inside a paragraph splits it in two
//
// Text inside <pre> and indenter markers is never touched. The stage is
// idempotent.
func reconcileWhitespace(d *Doc) {
	normalizeText(d.Body)
	pullOutSpaces(d.Body)
	normalizeText(d.Body)
	trimAroundBreaks(d)
	trimLines(d.Body)
	limitBreaks(d)
	if splitParagraphs(d) {
		pruneEmpty(d.Body)
		normalizeText(d.Body)
		trimLines(d.Body)
	}
	pruneEmpty(d.Body)
}

// opaque elements keep their whitespace.
func opaque(n *html.Node) bool {
	return dom.IsElement(n, "pre") || isIndenter(n)
}

// phrasing reports whether n is an inline element that can hold text.
func phrasing(n *html.Node) bool {
	return n.Type == html.ElementNode && dom.IsInline(n) && !dom.IsVoid(n) && !opaque(n)
}

// disposable reports whether n may be dropped once it has no children.
func disposable(n *html.Node) bool {
	if !phrasing(n) || !removableWhenEmpty[n.Data] {
		return false
	}
	return !(n.Data == "a" && dom.HasAttr(n, "id"))
}

// normalizeText merges adjacent text nodes and collapses whitespace runs.
func normalizeText(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.TextNode:
			for next != nil && next.Type == html.TextNode {
				c.Data += next.Data
				after := next.NextSibling
				n.RemoveChild(next)
				next = after
			}
			c.Data = collapseSpaces(c.Data)
			if c.Data == "" {
				n.RemoveChild(c)
			}
		case c.Type == html.ElementNode && !opaque(c):
			normalizeText(c)
		}
		c = next
	}
}

// collapseSpaces turns each whitespace run into a single space. Runs made
// only of zero-width characters disappear.
func collapseSpaces(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inRun, visible := false, false
	for _, r := range s {
		if dom.IsSpace(r) {
			inRun = true
			if r != '\u200b' && r != '\ufeff' {
				visible = true
			}
			continue
		}
		if inRun && visible {
			sb.WriteByte(' ')
		}
		inRun, visible = false, false
		sb.WriteRune(r)
	}
	if inRun && visible {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// pullOutSpaces moves leading and trailing spaces of inline elements to
// the outside, innermost first, and drops inline elements left empty.
func pullOutSpaces(n *html.Node) {
	for _, c := range dom.Children(n) {
		if c.Type == html.ElementNode && !opaque(c) {
			pullOutSpaces(c)
		}
	}
	if !phrasing(n) || n.Parent == nil {
		return
	}
	if f := n.FirstChild; dom.IsText(f) && strings.HasPrefix(f.Data, " ") {
		f.Data = strings.TrimLeft(f.Data, " ")
		if f.Data == "" {
			n.RemoveChild(f)
		}
		spaceBefore(n)
	}
	if l := n.LastChild; dom.IsText(l) && strings.HasSuffix(l.Data, " ") {
		l.Data = strings.TrimRight(l.Data, " ")
		if l.Data == "" {
			n.RemoveChild(l)
		}
		spaceAfter(n)
	}
	if n.FirstChild == nil && disposable(n) {
		dom.Detach(n)
	}
}

func spaceBefore(n *html.Node) {
	if prev := n.PrevSibling; dom.IsText(prev) {
		if !strings.HasSuffix(prev.Data, " ") {
			prev.Data += " "
		}
		return
	}
	n.Parent.InsertBefore(dom.NewText(" "), n)
}

func spaceAfter(n *html.Node) {
	if next := n.NextSibling; dom.IsText(next) {
		if !strings.HasPrefix(next.Data, " ") {
			next.Data = " " + next.Data
		}
		return
	}
	n.Parent.InsertBefore(dom.NewText(" "), n.NextSibling)
}

// trimAroundBreaks removes spaces directly before and after <br>.
func trimAroundBreaks(d *Doc) {
	d.each("br", func(br *html.Node) {
		if prev := br.PrevSibling; dom.IsText(prev) {
			prev.Data = strings.TrimRight(prev.Data, " ")
			if prev.Data == "" {
				dom.Detach(prev)
			}
		}
		if next := br.NextSibling; dom.IsText(next) {
			next.Data = strings.TrimLeft(next.Data, " ")
			if next.Data == "" {
				dom.Detach(next)
			}
		}
	})
}

// trimLines trims every line, that is every run of inline children of the
// body or a block element.
func trimLines(n *html.Node) {
	var run []*html.Node
	for _, c := range dom.Children(n) {
		if dom.IsInline(c) || c.Type == html.CommentNode {
			run = append(run, c)
			continue
		}
		trimRun(run)
		run = nil
		if c.Type == html.ElementNode && !opaque(c) {
			trimLines(c)
		}
	}
	trimRun(run)
}

func trimRun(run []*html.Node) {
	if len(run) == 0 {
		return
	}
	trimEdge(run, true)
	trimEdge(run, false)
}

// trimEdge strips spaces and <br> from one end of a line until it reaches
// visible content.
func trimEdge(run []*html.Node, fromStart bool) {
	for {
		leaf := edgeLeaf(run, fromStart)
		switch {
		case leaf == nil:
			return
		case dom.IsText(leaf):
			if fromStart {
				leaf.Data = strings.TrimLeft(leaf.Data, " ")
			} else {
				leaf.Data = strings.TrimRight(leaf.Data, " ")
			}
			if leaf.Data != "" {
				return
			}
			detachUp(leaf)
		case dom.IsElement(leaf, "br"):
			detachUp(leaf)
		default:
			return
		}
	}
}

// edgeLeaf finds the first (or last) leaf of the line that is not inside
// an empty inline wrapper.
func edgeLeaf(run []*html.Node, fromStart bool) *html.Node {
	for i := range run {
		n := run[i]
		if !fromStart {
			n = run[len(run)-1-i]
		}
		if n.Parent == nil {
			continue
		}
		if leaf := descend(n, fromStart); leaf != nil {
			return leaf
		}
	}
	return nil
}

func descend(n *html.Node, fromStart bool) *html.Node {
	switch {
	case n.Type == html.TextNode:
		return n
	case n.Type != html.ElementNode:
		return nil
	case !phrasing(n):
		return n
	}
	if fromStart {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if leaf := descend(c, true); leaf != nil {
				return leaf
			}
		}
		return nil
	}
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if leaf := descend(c, false); leaf != nil {
			return leaf
		}
	}
	return nil
}

// detachUp removes n and every inline ancestor it leaves empty.
func detachUp(n *html.Node) {
	parent := n.Parent
	dom.Detach(n)
	for parent != nil && parent.FirstChild == nil && disposable(parent) {
		next := parent.Parent
		dom.Detach(parent)
		parent = next
	}
}

// limitBreaks keeps at most two consecutive <br>.
func limitBreaks(d *Doc) {
	d.each("br", func(br *html.Node) {
		prev := br.PrevSibling
		if dom.IsElement(prev, "br") && dom.IsElement(prev.PrevSibling, "br") {
			dom.Detach(br)
		}
	})
}

// splitParagraphs splits paragraphs at every double <br>. It reports
// whether anything was split.
func splitParagraphs(d *Doc) bool {
	split := false
	d.each("br", func(br *html.Node) {
		next := br.NextSibling
		if !dom.IsElement(next, "br") {
			return
		}
		p := dom.Closest(br.Parent, dom.IsBlock)
		if !dom.IsElement(p, "p") {
			return
		}
		tail := dom.SplitAfter(p, next)
		for _, c := range dom.Classes(tail) {
			if isPrimary(c) {
				dom.RemoveClass(tail, c)
			}
		}
		dom.Detach(br)
		dom.Detach(next)
		split = true
	})
	return split
}

// pruneEmpty drops childless inline wrappers and paragraphs.
func pruneEmpty(n *html.Node) {
	for _, c := range dom.Children(n) {
		if c.Type != html.ElementNode || opaque(c) {
			continue
		}
		pruneEmpty(c)
		if c.FirstChild == nil && (disposable(c) || c.Data == "p") {
			dom.Detach(c)
		}
	}
}
