package regtidy

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

// splitMode says where a title ends and its name begins.
type splitMode int

const (
	splitNone splitMode = iota
	splitBreak
	splitDash
	splitSpace
)

var firstSpaceRe = regexp.MustCompile(`\s+`)

// legacyTitleKinds maps legacy class names (lower-cased) to the title they
// denote. Explicit classes win over content-based guessing.
var legacyTitleKinds = map[string]Kind{
	"grein":     KindArticleTitle,
	"kafli":     KindChapterTitle,
	"vidauki":   KindAppendix,
	"fyrirsogn": KindDocTitle,
}

// legacyNameKinds maps legacy name classes to the title kind they belong
// to.
var legacyNameKinds = map[string]Kind{
	"greinarheiti": KindArticleTitle,
	"kaflaheiti":   KindChapterTitle,
}

var titleClasses = []string{
	dom.ClassArticleTitle, dom.ClassChapterTitle,
	dom.ClassSectionTitle, dom.ClassSubchapterTitle,
}

var nameClasses = []string{
	dom.ClassArticleName, dom.ClassChapterName, dom.ClassSubchapterName,
}

// formatting is unwrapped inside titles.
var formatting = map[string]bool{
	"strong": true, "em": true, "b": true, "i": true, "u": true,
	"s": true, "small": true, "span": true, "font": true,
}

func legacyKind(n *html.Node, kinds map[string]Kind) (Kind, bool) {
	for _, c := range dom.Classes(n) {
		if k, ok := kinds[strings.ToLower(c)]; ok {
			return k, true
		}
	}
	return KindNone, false
}

// applyLegacyClasses turns legacy structure classes into canonical
// titles. Names are merged into the title heading right before them.
func applyLegacyClasses(d *Doc) {
	d.each("[class]", func(n *html.Node) {
		if dom.IsClassified(n) {
			return
		}
		kind, ok := legacyKind(n, legacyTitleKinds)
		if !ok {
			return
		}
		first, _, broken := candidateLines(n)
		mode := splitNone
		if broken {
			mode = splitBreak
		}
		applyTitle(d, n, Classification{Kind: kind, Title: normalizeLine(first)}, mode)
	})
	d.each("[class]", func(n *html.Node) {
		if dom.IsClassified(n) {
			return
		}
		kind, ok := legacyKind(n, legacyNameKinds)
		if !ok {
			return
		}
		prev := dom.PrevSignificant(n)
		if prev == nil || dom.PrimaryClass(prev) != kind.Classes()[0] || hasName(prev) {
			return
		}
		mergeName(d, prev, n, kind.NameClass())
	})
}

// titleCandidates returns unclassified top-level blocks that may be
// titles. When loose is false only centered, heading or wholly bold
// blocks qualify.
func titleCandidates(d *Doc, loose bool) []*html.Node {
	var out []*html.Node
	for c := d.Body.FirstChild; c != nil; c = c.NextSibling {
		if !dom.IsElement(c, "p", "h1", "h2", "h3", "h4", "h5", "h6") || dom.IsClassified(c) {
			continue
		}
		if loose || isCentered(c) || dom.IsElement(c, "h1", "h2", "h3", "h4", "h5", "h6") || whollyWrapped(c, "strong") {
			out = append(out, c)
		}
	}
	return out
}

func isCentered(n *html.Node) bool {
	return dom.AttrOr(n, "align", "") == "center"
}

// whollyWrapped reports whether all content of n sits in one element of
// one of tags.
func whollyWrapped(n *html.Node, tags ...string) bool {
	first, last := dom.FirstSignificantChild(n), dom.LastSignificantChild(n)
	return first != nil && first == last && dom.IsElement(first, tags...)
}

// candidateLines returns the text before the first <br> of n, the text
// after it, and whether there was a <br>.
func candidateLines(n *html.Node) (first, rest string, broken bool) {
	var head, tail strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				if broken {
					tail.WriteString(c.Data)
				} else {
					head.WriteString(c.Data)
				}
			case dom.IsElement(c, "br"):
				if broken {
					tail.WriteString(" ")
				}
				broken = true
			case c.Type == html.ElementNode:
				walk(c.FirstChild)
			}
		}
	}
	walk(n.FirstChild)
	return normalizeLine(head.String()), normalizeLine(tail.String()), broken
}

// detectTitle runs detect against n and reports how n must be split.
func detectTitle(n *html.Node, detect func(string) (Classification, bool), allowDash bool) (Classification, splitMode, bool) {
	first, rest, broken := candidateLines(n)
	if broken {
		c, ok := detect(first)
		if ok {
			c.Name = rest
		}
		return c, splitBreak, ok
	}
	if c, ok := detect(first); ok {
		if c.Name != "" {
			return c, splitSpace, true
		}
		return c, splitNone, true
	}
	if allowDash {
		if title, name, ok := SplitName(first); ok {
			if c, ok := detect(title); ok {
				c.Name = name
				return c, splitDash, true
			}
		}
	}
	return Classification{}, splitNone, false
}

func (d *Doc) nameLimit(k Kind) int {
	t := d.Config.Thresholds
	switch k {
	case KindArticleTitle, KindProvisionalArticle:
		return t.ArticleNameMaxLength
	case KindChapterTitle, KindAppendix:
		return t.ChapterNameMaxLength
	}
	return t.SubchapterNameMaxLength
}

// applyTitle restructures n into a title of kind c.Kind. The part after
// the split becomes an <em> name when short enough, otherwise a plain
// paragraph after the title.
func applyTitle(d *Doc, n *html.Node, c Classification, mode splitMode) {
	unwrapFormatting(n)
	normalizeText(n)

	var title, name []*html.Node
	switch mode {
	case splitBreak:
		title, name = splitAtBreak(n)
	case splitDash:
		title, name = splitAtText(n, NameSeparatorRe)
	case splitSpace:
		title, name = splitAtText(n, firstSpaceRe)
	default:
		title = dom.Children(n)
	}
	for _, c := range dom.Children(n) {
		n.RemoveChild(c)
	}
	for _, t := range title {
		n.AppendChild(t)
	}

	if nameText := normalizeLine(textOf(name)); nameText != "" {
		nameClass := c.Kind.NameClass()
		if nameClass != "" && len([]rune(nameText)) < d.nameLimit(c.Kind) {
			em := dom.NewElement("em", html.Attribute{Key: "class", Val: nameClass})
			for _, nn := range name {
				em.AppendChild(nn)
			}
			n.AppendChild(dom.NewText(" "))
			n.AppendChild(em)
		} else {
			p := dom.NewElement("p")
			for _, nn := range name {
				p.AppendChild(nn)
			}
			dom.InsertAfter(n, p)
		}
	}

	if tag := c.Kind.HeadingTag(); tag != "" {
		dom.Rename(n, tag)
		dom.RemoveAttr(n, "align")
	}
	dom.SetClasses(n, nil)
	d.classify(n, c.Kind.Classes()...)
}

// splitAtBreak splits the children of n at the first direct <br>, which
// is dropped.
func splitAtBreak(n *html.Node) (before, after []*html.Node) {
	seen := false
	for _, c := range dom.Children(n) {
		switch {
		case !seen && dom.IsElement(c, "br"):
			seen = true
		case seen:
			after = append(after, c)
		default:
			before = append(before, c)
		}
	}
	return before, after
}

// splitAtText splits the children of n around the first match of re in a
// direct text child. The match itself is dropped.
func splitAtText(n *html.Node, re *regexp.Regexp) (before, after []*html.Node) {
	found := false
	for _, c := range dom.Children(n) {
		if found {
			after = append(after, c)
			continue
		}
		if c.Type == html.TextNode {
			if loc := re.FindStringIndex(c.Data); loc != nil {
				found = true
				if head := c.Data[:loc[0]]; head != "" {
					before = append(before, dom.NewText(head))
				}
				if tail := c.Data[loc[1]:]; tail != "" {
					after = append(after, dom.NewText(tail))
				}
				continue
			}
		}
		before = append(before, c)
	}
	return before, after
}

func textOf(nodes []*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(dom.TextContent(n))
	}
	return sb.String()
}

// unwrapFormatting strips presentational wrappers inside a title, except
// name elements and indenters.
func unwrapFormatting(n *html.Node) {
	for _, el := range dom.Elements(n, func(el *html.Node) bool {
		return formatting[el.Data] && !isNameElement(el) && !isIndenter(el)
	}) {
		dom.Unwrap(el)
	}
}

func isNameElement(n *html.Node) bool {
	for _, c := range nameClasses {
		if dom.HasClass(n, c) {
			return true
		}
	}
	return false
}

func hasName(title *html.Node) bool {
	return len(dom.Elements(title, isNameElement)) > 0
}

// mergeName moves the content of src into a name element at the end of
// title and removes src.
func mergeName(d *Doc, title, src *html.Node, nameClass string) {
	unwrapFormatting(src)
	em := dom.NewElement("em", html.Attribute{Key: "class", Val: nameClass})
	for _, c := range dom.Children(src) {
		src.RemoveChild(c)
		if dom.IsElement(c, "br") {
			c = dom.NewText(" ")
		}
		em.AppendChild(c)
	}
	title.AppendChild(dom.NewText(" "))
	title.AppendChild(em)
	d.Stats().RecordClass(nameClass)
	dom.Detach(src)
}

// guessTitles classifies candidates matching detect.
func guessTitles(d *Doc, detect func(string) (Classification, bool), loose, allowDash bool) {
	for _, n := range titleCandidates(d, loose) {
		if c, mode, ok := detectTitle(n, detect, allowDash); ok {
			applyTitle(d, n, c, mode)
		}
	}
}

func guessArticleTitles(d *Doc) {
	guessTitles(d, DetectArticleTitle, true, true)
}

func guessChapterTitles(d *Doc) {
	guessTitles(d, DetectChapterTitle, false, true)
}

func guessSectionTitles(d *Doc) {
	guessTitles(d, DetectSectionTitle, false, false)
}

func guessSubchapterTitles(d *Doc) {
	guessTitles(d, DetectSubchapterTitle, false, false)
}

func guessAppendixTitles(d *Doc) {
	guessTitles(d, DetectAppendix, false, true)
}

// guessNames merges a short centered or emphasized paragraph that follows
// a title without a name into that title.
func guessNames(d *Doc, titleClass, nameClass string, maxLen int) {
	for _, title := range dom.Elements(d.Body, func(n *html.Node) bool {
		return dom.PrimaryClass(n) == titleClass
	}) {
		if hasName(title) {
			continue
		}
		next := dom.NextSignificant(title)
		if !dom.IsElement(next, "p") || dom.IsClassified(next) || hasBlockChild(next) {
			continue
		}
		if !isCentered(next) && !whollyWrapped(next, "em", "strong") {
			continue
		}
		text := normalizeLine(dom.TextContent(next))
		if text == "" || len([]rune(text)) >= maxLen || matchesTitleGrammar(text) {
			continue
		}
		if _, ok := DetectSigningDate(text, d.Config.Thresholds.MinSigningYear, d.Config.Thresholds.MaxSigningYear); ok {
			continue
		}
		mergeName(d, title, next, nameClass)
	}
}

func guessChapterNames(d *Doc) {
	guessNames(d, dom.ClassChapterTitle, dom.ClassChapterName, d.Config.Thresholds.ChapterNameMaxLength)
}

func guessArticleNames(d *Doc) {
	guessNames(d, dom.ClassArticleTitle, dom.ClassArticleName, d.Config.Thresholds.ArticleNameMaxLength)
}

// guessDocTitle marks the first block as the document title when it opens
// with a regulation type word.
func guessDocTitle(d *Doc) {
	for c := d.Body.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsBlank(c) {
			continue
		}
		if dom.IsClassified(c) || !dom.IsElement(c, "p", "h1", "h2") {
			return
		}
		first, _, _ := candidateLines(c)
		text := normalizeLine(dom.TextContent(c))
		if _, ok := DetectDocTitle(first); ok && len([]rune(text)) < d.Config.Thresholds.DocTitleMaxLength {
			d.classify(c, dom.ClassDocTitle)
		}
		return
	}
}

// normalizeTitleMarkup strips formatting from titles and makes every name
// a plain <em> separated from the title by a space.
func normalizeTitleMarkup(d *Doc) {
	for _, title := range dom.Elements(d.Body, func(n *html.Node) bool {
		return contains(titleClasses, dom.PrimaryClass(n))
	}) {
		unwrapFormatting(title)
	}
	for _, name := range dom.Elements(d.Body, isNameElement) {
		if !d.attached(name) {
			continue
		}
		for _, inner := range dom.Elements(name, func(n *html.Node) bool {
			return formatting[n.Data] && !isIndenter(n)
		}) {
			dom.Unwrap(inner)
		}
		if !hasContent(name) {
			d.remove(name)
			continue
		}
		if name.Data != "em" {
			dom.Rename(name, "em")
		}
		if prev := name.PrevSibling; dom.IsText(prev) && !strings.HasSuffix(prev.Data, " ") {
			prev.Data += " "
		}
	}
}
