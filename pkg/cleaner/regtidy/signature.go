package regtidy

import (
	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

// maxSignatories bounds how many paragraphs after a signing line are read
// as signatory names.
const maxSignatories = 3

// detectSignatures classifies the signing date, the "on behalf of" line
// and the signatories that follow them. A signing line that continues
// after a <br> is split so the classification covers only that line.
func detectSignatures(d *Doc) {
	t := d.Config.Thresholds
	var anchors []*html.Node
	d.each("p", func(p *html.Node) {
		if dom.IsClassified(p) || dom.Closest(p.Parent, func(n *html.Node) bool { return dom.IsElement(n, "li") }) != nil {
			return
		}
		first, _, broken := candidateLines(p)
		var kind Kind
		if _, ok := DetectSigningDate(first, t.MinSigningYear, t.MaxSigningYear); ok {
			kind = KindSigningDate
		} else if _, ok := DetectOnBehalfOf(first); ok {
			kind = KindOnBehalfOf
		} else {
			return
		}
		if broken {
			splitAtFirstBreak(p)
		}
		d.classify(p, kind.Classes()...)
		anchors = append(anchors, p)
	})

	for _, anchor := range anchors {
		next := dom.NextSignificant(anchor)
		for i := 0; i < maxSignatories && dom.IsElement(next, "p"); i++ {
			if dom.HasClass(next, dom.ClassOnBehalfOf) {
				next = dom.NextSignificant(next)
				continue
			}
			if dom.IsClassified(next) || !isSignatory(next, t.SignatoryMaxLength) {
				break
			}
			d.classify(next, KindSignatory.Classes()...)
			next = dom.NextSignificant(next)
		}
	}
}

// isSignatory reports whether every line of p reads like a name.
func isSignatory(p *html.Node, maxLen int) bool {
	if hasBlockChild(p) {
		return false
	}
	first, rest, broken := candidateLines(p)
	if _, ok := DetectSignatory(first, maxLen); !ok {
		return false
	}
	if broken {
		_, ok := DetectSignatory(rest, maxLen)
		return ok
	}
	return true
}

// splitAtFirstBreak moves everything after the first <br> of p into a new
// paragraph and drops the <br>.
func splitAtFirstBreak(p *html.Node) {
	brs := dom.Elements(p, func(n *html.Node) bool { return dom.IsElement(n, "br") })
	if len(brs) == 0 {
		return
	}
	tail := dom.SplitAfter(p, brs[0])
	dom.Detach(brs[0])
	if tail != nil && !hasContent(tail) {
		dom.Detach(tail)
	}
}
