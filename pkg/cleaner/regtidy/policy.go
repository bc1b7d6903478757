package regtidy

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// elementPolicy is the element allow-list applied to raw input before
// parsing. Unknown elements are unwrapped; scripts, styles and form
// controls are dropped with their content. Attributes the structural
// stages read (style, border, width) pass through; sanitizeAttributes
// polices the final set.
func elementPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements(dom.AllowedTags...)
		p.SkipElementsContent(dom.StripWithContent...)

		p.AllowAttrs("id", "class", "style", "align", "title", "lang").Globally()
		p.AllowAttrs("href", "name").OnElements("a")
		p.AllowAttrs("src", "alt", "width", "height").OnElements("img")
		p.AllowAttrs("border", "width", "cellpadding", "cellspacing").OnElements("table")
		p.AllowAttrs("colspan", "rowspan", "width", "valign").OnElements("td", "th")
		p.AllowAttrs("start", "type").OnElements("ol", "ul", "li")
		p.AllowAttrs(dom.AttrIndenter).OnElements("span")

		p.AllowURLSchemes("http", "https", "mailto", "data")
		p.AllowRelativeURLs(true)
		policy = p
	})
	return policy
}
