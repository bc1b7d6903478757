package regtidy

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

var borderWidthRe = regexp.MustCompile(`(?i)border(?:-width)?\s*:[^;]*?(\d+(?:\.\d+)?)\s*(?:px|pt)`)

// borderWidth estimates the outer border width of a table from its border
// attribute, its style, or the word-processor grid class, in that order.
func borderWidth(t *html.Node) float64 {
	if v, ok := dom.Attr(t, "border"); ok {
		v = strings.TrimSuffix(strings.TrimSpace(v), "px")
		if v == "" {
			return 1
		}
		if w, err := strconv.ParseFloat(v, 64); err == nil {
			return w
		}
		return 1
	}
	style := dom.AttrOr(t, "style", "")
	if m := borderWidthRe.FindStringSubmatch(style); m != nil {
		w, _ := strconv.ParseFloat(m[1], 64)
		return w
	}
	if dom.HasClass(t, "MsoTableGrid") {
		return 1
	}
	return 0
}

// classifyTables marks borderless tables as layout tables. A layout table
// whose leading columns hold only list markers is a list in disguise.
func classifyTables(d *Doc) {
	d.each("table", func(t *html.Node) {
		if borderWidth(t) > 0 {
			return
		}
		dom.AddClass(t, dom.ClassLayout)
		d.Stats().TablesLayout++
		if isListLayout(t) {
			dom.AddClass(t, dom.ClassLayoutList)
		}
	})
}

func tableRows(t *html.Node) []*html.Node {
	var rows []*html.Node
	for _, c := range dom.ElementChildren(t) {
		switch {
		case dom.IsElement(c, "tr"):
			rows = append(rows, c)
		case dom.IsElement(c, "thead", "tbody", "tfoot"):
			for _, r := range dom.ElementChildren(c) {
				if dom.IsElement(r, "tr") {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}

func rowCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for _, c := range dom.ElementChildren(tr) {
		if dom.TableCellTags[c.Data] {
			cells = append(cells, c)
		}
	}
	return cells
}

// isListLayout reports whether every row has the same two or three cells
// and all cells but the last hold a bare list marker.
func isListLayout(t *html.Node) bool {
	rows := tableRows(t)
	if len(rows) == 0 {
		return false
	}
	cols := len(rowCells(rows[0]))
	if cols < 2 || cols > 3 {
		return false
	}
	for _, row := range rows {
		cells := rowCells(row)
		if len(cells) != cols {
			return false
		}
		for _, c := range cells[:cols-1] {
			if !IsBareMarker(normalizeLine(dom.TextContent(c))) {
				return false
			}
		}
	}
	return true
}

// reduceTables hoists single-cell rows at the top and bottom of a real
// table out into paragraphs, and unwraps layout tables that hold a single
// cell.
func reduceTables(d *Doc) {
	tables := d.Find("table").Nodes
	for i := len(tables) - 1; i >= 0; i-- {
		t := tables[i]
		if !d.attached(t) || dom.InPre(t) {
			continue
		}
		rows := tableRows(t)
		if len(rows) == 1 && dom.HasClass(t, dom.ClassLayout) && len(rowCells(rows[0])) == 1 {
			hoist(rowCells(rows[0])[0], t, true)
			d.remove(t)
			continue
		}
		if !hasWideRow(rows) {
			continue
		}
		for len(rows) > 1 && len(rowCells(rows[0])) == 1 {
			hoist(rowCells(rows[0])[0], t, true)
			dom.Detach(rows[0])
			rows = rows[1:]
		}
		for len(rows) > 1 && len(rowCells(rows[len(rows)-1])) == 1 {
			last := rows[len(rows)-1]
			hoist(rowCells(last)[0], t, false)
			dom.Detach(last)
			rows = rows[:len(rows)-1]
		}
	}
}

func hasWideRow(rows []*html.Node) bool {
	for _, r := range rows {
		if len(rowCells(r)) > 1 {
			return true
		}
	}
	return false
}

// hoist moves the content of cell next to the table, before or right
// after it. Inline content is wrapped in a paragraph.
func hoist(cell, table *html.Node, before bool) {
	if !hasContent(cell) {
		return
	}
	var out []*html.Node
	var run *html.Node
	for _, c := range dom.Children(cell) {
		cell.RemoveChild(c)
		if dom.IsBlock(c) {
			run = nil
			out = append(out, c)
			continue
		}
		if run == nil {
			if dom.IsBlank(c) {
				continue
			}
			run = dom.NewElement("p")
			out = append(out, run)
		}
		run.AppendChild(c)
	}
	if before {
		for _, n := range out {
			dom.InsertBefore(table, n)
		}
		return
	}
	for i := len(out) - 1; i >= 0; i-- {
		dom.InsertAfter(table, out[i])
	}
}
