package regtidy

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

var (
	footnoteRefRe  = regexp.MustCompile(`^#_ftn(\d+)$`)
	footnoteBackRe = regexp.MustCompile(`^#_ftnref(\d+)$`)
	bracketedRe    = regexp.MustCompile(`^\s*\[\s*\w+\s*\]\s*$`)
	brackets       = strings.NewReplacer("[", "", "]", "")
)

// pairFootnotes classifies footnote references and the footnotes they
// point at. A footnote body takes over its marker's id so cross references
// keep resolving.
func pairFootnotes(d *Doc) {
	d.each("a[href]", func(a *html.Node) {
		href := dom.AttrOr(a, "href", "")
		if m := footnoteRefRe.FindStringSubmatch(href); m != nil {
			markReference(d, a, m[1])
			return
		}
		if footnoteBackRe.MatchString(href) {
			markFootnote(d, a)
		}
	})
}

func markReference(d *Doc, a *html.Node, num string) {
	if !dom.HasClass(a, dom.ClassFootnoteReference) {
		if dom.IsClassified(a) {
			return
		}
		d.classify(a, dom.ClassFootnoteReference)
		d.Stats().FootnotesPaired++
	}
	if !dom.HasAttr(a, "id") {
		id := "_ftnref" + num
		if d.Find("#"+id).Length() == 0 {
			dom.SetAttr(a, "id", id)
		}
	}
	stripBrackets(a)
}

func markFootnote(d *Doc, a *html.Node) {
	if !dom.HasClass(a, dom.ClassFootnoteMarker) {
		if dom.IsClassified(a) {
			return
		}
		d.classify(a, dom.ClassFootnoteMarker)
	}
	stripBrackets(a)

	body := dom.Closest(a.Parent, dom.IsBlock)
	if body == nil || body == d.Body || dom.IsElement(body, "td", "th", "li") {
		return
	}
	if dom.IsClassified(body) && !dom.HasClass(body, dom.ClassFootnote) {
		return
	}
	if !dom.HasClass(body, dom.ClassFootnote) {
		d.classify(body, dom.ClassFootnote)
	}
	id, ok := dom.Attr(a, "id")
	if !ok {
		return
	}
	switch have := dom.AttrOr(body, "id", ""); have {
	case "":
		dom.SetAttr(body, "id", id)
		dom.RemoveAttr(a, "id")
	case id:
		dom.RemoveAttr(a, "id")
	}
}

// stripBrackets turns "[1]" into "1".
func stripBrackets(a *html.Node) {
	if !bracketedRe.MatchString(dom.TextContent(a)) {
		return
	}
	dom.Walk(a, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			n.Data = brackets.Replace(n.Data)
		}
		return true
	})
}
