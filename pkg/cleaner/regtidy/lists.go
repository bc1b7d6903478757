package regtidy

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

var listStyleNoneRe = regexp.MustCompile(`(?i)list-style(?:-type)?\s*:\s*none`)

// unwrapLayoutLists replaces single-item lists with no visible marker by
// the item's content. Word uses them for indentation.
func unwrapLayoutLists(d *Doc) {
	lists := d.Find("ol, ul").Nodes
	for i := len(lists) - 1; i >= 0; i-- {
		list := lists[i]
		if !d.attached(list) || dom.InPre(list) {
			continue
		}
		var items []*html.Node
		other := false
		for _, c := range dom.Children(list) {
			switch {
			case dom.IsBlank(c):
			case dom.IsElement(c, "li"):
				items = append(items, c)
			default:
				other = true
			}
		}
		if other || len(items) != 1 {
			continue
		}
		li := items[0]
		if !listStyleNoneRe.MatchString(dom.AttrOr(list, "style", "")) &&
			!listStyleNoneRe.MatchString(dom.AttrOr(li, "style", "")) {
			continue
		}
		for _, c := range dom.Children(li) {
			li.RemoveChild(c)
			dom.InsertBefore(list, c)
		}
		d.remove(list)
	}
}

// wrapStrayListItems groups consecutive <li> outside any list into a <ul>.
func wrapStrayListItems(d *Doc) {
	d.each("li", func(li *html.Node) {
		if dom.IsElement(li.Parent, "ol", "ul") {
			return
		}
		ul := dom.NewElement("ul")
		dom.InsertBefore(li, ul)
		for n := li; n != nil; {
			next := n.NextSibling
			if !dom.IsElement(n, "li") && !dom.IsBlank(n) {
				break
			}
			dom.Detach(n)
			ul.AppendChild(n)
			n = next
		}
		for dom.IsBlank(ul.LastChild) {
			b := ul.LastChild
			ul.RemoveChild(b)
			dom.InsertAfter(ul, b)
		}
	})
}

// reconstructLists turns blockquotes whose lines all carry list markers of
// one kind into real lists. Blockquotes with mixed or multi-level markers
// are split into one paragraph per line instead.
func reconstructLists(d *Doc) {
	quotes := d.Find("blockquote").Nodes
	for i := len(quotes) - 1; i >= 0; i-- {
		bq := quotes[i]
		if !d.attached(bq) || dom.InPre(bq) {
			continue
		}
		items, ok := blockquoteItems(bq)
		if !ok || len(items) == 0 {
			continue
		}
		first, ok := InferMarker(itemText(items[0]))
		if !ok {
			continue
		}
		markers, ok := itemMarkers(items, first)
		if !ok {
			splitLines(d, bq)
			d.Result.AddWarning("reconstructLists", "mixed list markers, kept as paragraphs", truncate(itemText(items[0]), 60))
			continue
		}
		list := buildList(items, markers)
		dom.InsertBefore(bq, list)
		dom.Detach(bq)
		d.Stats().ListsBuilt++
	}
}

// blockquoteItems splits the paragraphs of bq into lines. Any other block
// child disqualifies bq.
func blockquoteItems(bq *html.Node) ([][]*html.Node, bool) {
	var items [][]*html.Node
	for _, c := range dom.Children(bq) {
		switch {
		case dom.IsBlank(c):
		case dom.IsElement(c, "p"):
			var line []*html.Node
			for _, n := range dom.Children(c) {
				if dom.IsElement(n, "br") {
					if len(line) > 0 {
						items = append(items, line)
					}
					line = nil
					continue
				}
				line = append(line, n)
			}
			if len(line) > 0 {
				items = append(items, line)
			}
		default:
			return nil, false
		}
	}
	return items, true
}

func itemText(nodes []*html.Node) string {
	return strings.TrimLeft(collapseSpaces(textOf(nodes)), " ")
}

func itemMarkers(items [][]*html.Node, first Marker) ([]Marker, bool) {
	if first.Kind == MarkerComplex {
		return nil, false
	}
	markers := []Marker{first}
	for _, item := range items[1:] {
		m, ok := ParseMarker(itemText(item), first.Kind)
		if !ok {
			return nil, false
		}
		markers = append(markers, m)
	}
	return markers, true
}

func buildList(items [][]*html.Node, markers []Marker) *html.Node {
	kind := markers[0].Kind
	list := dom.NewElement(kind.ListTag())
	if t := kind.ListType(); t != "" {
		dom.SetAttr(list, "type", t)
	}
	if start := markers[0].Ordinal(); kind != MarkerBullet && start > 1 {
		dom.SetAttr(list, "start", strconv.Itoa(start))
	}
	for i, item := range items {
		li := dom.NewElement("li")
		for _, n := range item {
			dom.Detach(n)
			li.AppendChild(n)
		}
		trimLeading(li)
		stripPrefix(li, markers[i].Len)
		pruneEmpty(li)
		list.AppendChild(li)
	}
	return list
}

// trimLeading drops leading whitespace from the first text of n.
func trimLeading(n *html.Node) {
	done := false
	dom.Walk(n, func(c *html.Node) bool {
		if done || c.Type != html.TextNode {
			return !done
		}
		c.Data = strings.TrimLeft(c.Data, " ")
		done = true
		return false
	})
}

// stripPrefix removes the first size bytes of text under n, then any
// space left at the start.
func stripPrefix(n *html.Node, size int) {
	done := false
	dom.Walk(n, func(c *html.Node) bool {
		if done || c.Type != html.TextNode {
			return !done
		}
		if size > 0 {
			if len(c.Data) <= size {
				size -= len(c.Data)
				c.Data = ""
				return false
			}
			c.Data = c.Data[size:]
			size = 0
		}
		c.Data = strings.TrimLeft(c.Data, " ")
		done = c.Data != ""
		return false
	})
	dom.Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode && c.Data == "" && c.Parent != nil {
			dom.Detach(c)
		}
		return true
	})
}

// splitLines splits every paragraph of bq at its <br> elements.
func splitLines(d *Doc, bq *html.Node) {
	for _, p := range dom.ElementChildren(bq) {
		if !dom.IsElement(p, "p") {
			continue
		}
		for {
			br := lastDirectBreak(p)
			if br == nil {
				break
			}
			tail := dom.SplitAfter(p, br)
			dom.Detach(br)
			if !hasContent(tail) {
				d.remove(tail)
			}
		}
	}
}

func lastDirectBreak(p *html.Node) *html.Node {
	for c := p.LastChild; c != nil; c = c.PrevSibling {
		if dom.IsElement(c, "br") {
			return c
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
