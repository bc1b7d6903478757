package regtidy

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

// AttrRule decides the fate of one attribute. It returns the attribute to
// emit, which may be renamed or rewritten, or ok=false to drop it.
type AttrRule func(d *Doc, n *html.Node, key, val string) (newKey, newVal string, ok bool)

// AttrPolicy maps tag -> attribute -> rule. Tags not listed fall back to
// the block or inline defaults.
type AttrPolicy struct {
	Tags   map[string]map[string]AttrRule
	Block  map[string]AttrRule
	Inline map[string]AttrRule
}

// Rules for a tag.
func (p *AttrPolicy) Rules(tag string) map[string]AttrRule {
	if rules, ok := p.Tags[tag]; ok {
		return rules
	}
	if dom.BlockTags[tag] {
		return p.Block
	}
	return p.Inline
}

// Keep keeps an attribute unchanged.
func Keep(_ *Doc, _ *html.Node, key, val string) (string, string, bool) {
	return key, val, true
}

func keepAlign(_ *Doc, _ *html.Node, key, val string) (string, string, bool) {
	v := strings.ToLower(strings.TrimSpace(val))
	if v == "center" || v == "right" {
		return key, v, true
	}
	return "", "", false
}

func keepClass(d *Doc, n *html.Node, key, val string) (string, string, bool) {
	kept := filterClasses(strings.Fields(val), d.legacyClasses)
	if len(kept) == 0 {
		return "", "", false
	}
	return key, strings.Join(kept, " "), true
}

func keepPositiveInt(min int) AttrRule {
	return func(_ *Doc, _ *html.Node, key, val string) (string, string, bool) {
		v, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || v < min {
			return "", "", false
		}
		return key, strconv.Itoa(v), true
	}
}

var listTypes = map[string]bool{"a": true, "A": true, "i": true, "I": true}

func keepListType(_ *Doc, _ *html.Node, key, val string) (string, string, bool) {
	v := strings.TrimSpace(val)
	if listTypes[v] {
		return key, v, true
	}
	return "", "", false
}

var (
	listStyleRe = regexp.MustCompile(`(?i)list-style(?:-type)?\s*:\s*([a-z-]+)`)
	styleTypes  = map[string]string{
		"lower-alpha": "a", "lower-latin": "a",
		"upper-alpha": "A", "upper-latin": "A",
		"lower-roman": "i", "upper-roman": "I",
	}
)

// listStyleToType converts a list-style-type declaration into the type
// attribute.
func listStyleToType(_ *Doc, n *html.Node, _, val string) (string, string, bool) {
	if dom.HasAttr(n, "type") {
		return "", "", false
	}
	m := listStyleRe.FindStringSubmatch(val)
	if m == nil {
		return "", "", false
	}
	if t, ok := styleTypes[strings.ToLower(m[1])]; ok {
		return "type", t, true
	}
	return "", "", false
}

func keepIndenter(_ *Doc, _ *html.Node, key, val string) (string, string, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || v < 1 {
		return "", "", false
	}
	return key, strconv.Itoa(v), true
}

// CanonicalPolicy is the attribute allow-list of the canonical dialect.
var CanonicalPolicy = func() *AttrPolicy {
	block := map[string]AttrRule{"id": Keep, "class": keepClass, "align": keepAlign}
	inline := map[string]AttrRule{"id": Keep, "class": keepClass}
	cell := map[string]AttrRule{
		"id": Keep, "class": keepClass, "align": keepAlign,
		"colspan": keepPositiveInt(2), "rowspan": keepPositiveInt(2),
	}
	return &AttrPolicy{
		Block:  block,
		Inline: inline,
		Tags: map[string]map[string]AttrRule{
			"a":     {"id": Keep, "class": keepClass, "href": Keep},
			"img":   {"src": Keep, "alt": Keep},
			"ol":    {"id": Keep, "class": keepClass, "type": keepListType, "start": keepPositiveInt(2), "style": listStyleToType},
			"ul":    {"id": Keep, "class": keepClass},
			"li":    {"id": Keep, "class": keepClass},
			"table": {"id": Keep, "class": keepClass},
			"tbody": {}, "thead": {}, "tfoot": {}, "tr": {},
			"td":    cell,
			"th":    cell,
			"span":  {"id": Keep, "class": keepClass, dom.AttrIndenter: keepIndenter},
			"br":    {},
			"hr":    {},
		},
	}
}()

// sanitizeAttributes applies CanonicalPolicy to every element.
func sanitizeAttributes(d *Doc) {
	for _, n := range dom.Elements(d.Body, nil) {
		sanitizeElement(d, CanonicalPolicy, n)
	}
}

func sanitizeElement(d *Doc, p *AttrPolicy, n *html.Node) {
	rules := p.Rules(n.Data)
	var kept []html.Attribute
	seen := make(map[string]bool, len(n.Attr))
	for _, a := range n.Attr {
		rule, ok := rules[a.Key]
		if !ok || a.Namespace != "" {
			d.Stats().AttributesRemoved++
			continue
		}
		key, val, ok := rule(d, n, a.Key, a.Val)
		if !ok || seen[key] {
			d.Stats().AttributesRemoved++
			continue
		}
		seen[key] = true
		kept = append(kept, html.Attribute{Key: key, Val: val})
	}
	n.Attr = kept
}

// filterClasses keeps canonical classes plus extra. At most one primary
// class survives, and a modifier only survives next to its base.
func filterClasses(classes []string, extra map[string]bool) []string {
	var kept []string
	primary := ""
	for _, c := range classes {
		switch {
		case isPrimary(c):
			if primary != "" {
				continue
			}
			primary = c
		case dom.CanonicalClasses[c], extra[c]:
		default:
			continue
		}
		kept = appendUnique(kept, c)
	}
	var out []string
	for _, c := range kept {
		if base, ok := dom.ModifierClasses[c]; ok && !contains(kept, base) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func isPrimary(c string) bool {
	return contains(dom.PrimaryClasses, c)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// finalizeClasses drops the legacy structure classes once reclassification
// is done. Other configured extra classes stay.
func finalizeClasses(d *Doc) {
	for _, c := range LegacyClasses {
		delete(d.legacyClasses, c)
	}
	d.each("[class]", func(n *html.Node) {
		dom.SetClasses(n, filterClasses(dom.Classes(n), d.legacyClasses))
	})
}
