package regtidy

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

// Doc is the mutable document a pipeline threads through its stages.
type Doc struct {
	Body   *html.Node
	Config *Config
	Result *Result

	// legacyClasses are tolerated until reclassification. Editor runs
	// leave it empty.
	legacyClasses map[string]bool
}

// Stats is shorthand for the result stats.
func (d *Doc) Stats() *Stats {
	return d.Result.Stats
}

// Find runs a CSS selector over the current tree.
func (d *Doc) Find(selector string) *goquery.Selection {
	return goquery.NewDocumentFromNode(d.Body).Find(selector)
}

// each calls fn for every element matching selector that is still attached
// to the tree and outside <pre>. Matches are snapshotted first, so fn may
// mutate the tree.
func (d *Doc) each(selector string, fn func(*html.Node)) {
	for _, n := range d.Find(selector).Nodes {
		if !d.attached(n) || dom.InPre(n) {
			continue
		}
		fn(n)
	}
}

func (d *Doc) attached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.Body {
			return true
		}
	}
	return false
}

func (d *Doc) classify(n *html.Node, classes ...string) {
	for _, c := range classes {
		dom.AddClass(n, c)
	}
	if len(classes) > 0 {
		d.Stats().RecordClass(classes[0])
	}
}

func (d *Doc) remove(n *html.Node) {
	if n.Type == html.ElementNode {
		d.Stats().RecordRemoval(n.Data)
	}
	dom.Detach(n)
}

// Stage is one named, ordered transformation. The stage list is data so
// ordering can be inspected and tested.
type Stage struct {
	Name string
	Run  func(*Doc) error
}

func pass(name string, fn func(*Doc)) Stage {
	return Stage{Name: name, Run: func(d *Doc) error {
		fn(d)
		return nil
	}}
}

// DirtyStages returns the import pipeline in execution order.
func DirtyStages() []Stage {
	return []Stage{
		pass("escapePre", escapePre),
		pass("flagIndenters", flagIndenters),
		pass("stripComments", stripComments),
		pass("unescapeEntities", unescapeEntities),
		pass("stripNoise", stripNoise),
		pass("normalizeTags", normalizeTags),
		pass("normalizeAlignment", normalizeAlignment),
		{Name: "unwrapContainers", Run: unwrapContainers},
		pass("rewriteImages", rewriteImages),
		pass("rewriteLinks", rewriteLinks),
		pass("classifyTables", classifyTables),
		pass("unwrapLayoutLists", unwrapLayoutLists),
		pass("sanitizeAttributes", sanitizeAttributes),
		pass("unwrapBareElements", unwrapBareElements),
		pass("paragraphize", paragraphize),
		pass("reconcileWhitespace", reconcileWhitespace),
		pass("removeOrphanIndenters", removeOrphanIndenters),
		pass("removeEmpty", removeEmpty),
		pass("wrapStrayListItems", wrapStrayListItems),
		pass("reconstructLists", reconstructLists),
		pass("reduceTables", reduceTables),
		pass("pairFootnotes", pairFootnotes),
		pass("applyLegacyClasses", applyLegacyClasses),
		pass("guessArticleTitles", guessArticleTitles),
		pass("guessChapterTitles", guessChapterTitles),
		pass("guessChapterNames", guessChapterNames),
		pass("guessArticleTitles", guessArticleTitles),
		pass("guessArticleNames", guessArticleNames),
		pass("guessSectionTitles", guessSectionTitles),
		pass("guessSubchapterTitles", guessSubchapterTitles),
		pass("guessAppendixTitles", guessAppendixTitles),
		pass("guessDocTitle", guessDocTitle),
		pass("detectSignatures", detectSignatures),
		pass("normalizeTitleMarkup", normalizeTitleMarkup),
		pass("finalizeClasses", finalizeClasses),
		pass("removeEmpty", removeEmpty),
		pass("reconcileWhitespace", reconcileWhitespace),
		pass("rehydrateIndenters", rehydrateIndenters),
		pass("sortAttributes", sortAttributes),
	}
}

// EditorStages returns the editor-save pipeline in execution order. Every
// stage in it is idempotent.
func EditorStages() []Stage {
	return []Stage{
		pass("escapePre", escapePre),
		pass("stripComments", stripComments),
		pass("normalizeTags", normalizeTags),
		pass("normalizeAlignment", normalizeAlignment),
		{Name: "unwrapContainers", Run: unwrapContainers},
		pass("unwrapLayoutLists", unwrapLayoutLists),
		pass("sanitizeAttributes", sanitizeAttributes),
		pass("unwrapBareElements", unwrapBareElements),
		pass("paragraphize", paragraphize),
		pass("reconcileWhitespace", reconcileWhitespace),
		pass("removeOrphanIndenters", removeOrphanIndenters),
		pass("removeEmpty", removeEmpty),
		pass("wrapStrayListItems", wrapStrayListItems),
		pass("pairFootnotes", pairFootnotes),
		pass("normalizeTitleMarkup", normalizeTitleMarkup),
		pass("removeEmpty", removeEmpty),
		pass("reconcileWhitespace", reconcileWhitespace),
		pass("rehydrateIndenters", rehydrateIndenters),
		pass("sortAttributes", sortAttributes),
	}
}
