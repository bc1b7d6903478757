package dom

import "golang.org/x/net/html"

// Semantic classes of the canonical dialect.
const (
	ClassArticleTitle            = "article__title"
	ClassArticleName             = "article__name"
	ClassArticleTitleProvisional = "article__title--provisional"
	ClassChapterTitle            = "chapter__title"
	ClassChapterName             = "chapter__name"
	ClassChapterTitleAppendix    = "chapter__title--appendix"
	ClassSectionTitle            = "section__title"
	ClassSubchapterTitle         = "subchapter__title"
	ClassSubchapterName          = "subchapter__name"
	ClassDocTitle                = "doc__title"
	ClassSigningDate             = "Dags"
	ClassOnBehalfOf              = "FHUndirskr"
	ClassSignatory               = "Undirritun"
	ClassFootnote                = "footnote"
	ClassFootnoteMarker          = "footnote__marker"
	ClassFootnoteReference       = "footnote-reference"

	ClassLayout     = "layout"
	ClassLayoutList = "layout--list"

	// AttrIndenter marks a legacy fixed-width indenter span.
	AttrIndenter = "data-legacy-indenter"
)

// PrimaryClasses are the semantic classes of which an element may carry
// at most one.
var PrimaryClasses = []string{
	ClassArticleTitle, ClassArticleName,
	ClassChapterTitle, ClassChapterName,
	ClassSectionTitle,
	ClassSubchapterTitle, ClassSubchapterName,
	ClassDocTitle,
	ClassSigningDate, ClassOnBehalfOf, ClassSignatory,
	ClassFootnote, ClassFootnoteMarker, ClassFootnoteReference,
}

// ModifierClasses may only accompany their base class.
var ModifierClasses = map[string]string{
	ClassArticleTitleProvisional: ClassArticleTitle,
	ClassChapterTitleAppendix:    ClassChapterTitle,
	ClassLayoutList:              ClassLayout,
}

// CanonicalClasses is every class the canonical dialect allows.
var CanonicalClasses = func() map[string]bool {
	m := map[string]bool{ClassLayout: true}
	for _, c := range PrimaryClasses {
		m[c] = true
	}
	for c := range ModifierClasses {
		m[c] = true
	}
	return m
}()

// BlockTags are elements that start a new block formatting context.
var BlockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "caption": true, "center": true, "dd": true, "div": true,
	"dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "tbody": true,
	"td": true, "tfoot": true, "th": true, "thead": true, "tr": true,
	"ul": true,
}

// InlineTags are phrasing elements.
var InlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true,
	"br": true, "cite": true, "code": true, "del": true, "dfn": true,
	"em": true, "font": true, "i": true, "img": true, "ins": true,
	"kbd": true, "mark": true, "q": true, "s": true, "samp": true,
	"small": true, "span": true, "strike": true, "strong": true,
	"sub": true, "sup": true, "time": true, "u": true, "var": true,
	"wbr": true,
}

// TableCellTags are table cells.
var TableCellTags = map[string]bool{"td": true, "th": true}

// VoidTags never have children.
var VoidTags = map[string]bool{
	"area": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
	"wbr": true,
}

// StripWithContent are removed together with everything inside them.
var StripWithContent = []string{
	"script", "style", "noscript", "iframe", "object", "embed", "svg",
	"math", "template", "title", "head", "form", "button", "select",
	"textarea", "input",
}

// AllowedTags is the element vocabulary of the canonical dialect. Other
// elements are unwrapped, keeping their content.
var AllowedTags = []string{
	"p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre",
	"ul", "ol", "li", "dl", "dt", "dd", "hr", "br",
	"table", "caption", "colgroup", "col", "thead", "tbody", "tfoot", "tr", "td", "th",
	"a", "em", "strong", "i", "b", "u", "s", "sub", "sup", "span", "img",
	"code", "small", "abbr", "center", "ins", "del",
}

// IsBlock reports whether n is a block-level element.
func IsBlock(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && BlockTags[n.Data]
}

// IsInline reports whether n is an inline element or text. Unknown
// elements count as inline.
func IsInline(n *html.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		return !BlockTags[n.Data]
	}
	return false
}

// IsVoid reports whether n is a void element.
func IsVoid(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && VoidTags[n.Data]
}

// PrimaryClass returns the semantic class of n, or "".
func PrimaryClass(n *html.Node) string {
	for _, c := range Classes(n) {
		for _, p := range PrimaryClasses {
			if c == p {
				return c
			}
		}
	}
	return ""
}

// IsClassified reports whether n already carries a semantic class.
func IsClassified(n *html.Node) bool {
	return PrimaryClass(n) != ""
}
