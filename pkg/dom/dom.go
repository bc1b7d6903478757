// Package dom provides the tree primitives the cleaning pipelines are built
// from. It works directly on golang.org/x/net/html nodes so any stage can
// also be driven through goquery selections over the same tree.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrIDConflict is returned when an id would overwrite a different id.
var ErrIDConflict = errors.New("id conflict")

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// IsElement reports whether n is an element, optionally one of tags.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// Rename changes the tag of an element in place.
func Rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// Attr returns the value of the attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or fallback when missing.
func AttrOr(n *html.Node, key, fallback string) string {
	if v, ok := Attr(n, key); ok {
		return v
	}
	return fallback
}

// HasAttr reports whether the attribute is present.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// CopyAttrs copies every attribute of src onto dst, overwriting duplicates.
func CopyAttrs(dst, src *html.Node) {
	for _, a := range src.Attr {
		SetAttr(dst, a.Key, a.Val)
	}
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries class c.
func HasClass(n *html.Node, c string) bool {
	for _, have := range Classes(n) {
		if have == c {
			return true
		}
	}
	return false
}

// SetClasses replaces the class list, dropping the attribute when empty.
func SetClasses(n *html.Node, classes []string) {
	if len(classes) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(classes, " "))
}

// AddClass appends c unless already present.
func AddClass(n *html.Node, c string) {
	if HasClass(n, c) {
		return
	}
	SetClasses(n, append(Classes(n), c))
}

// RemoveClass drops c from the class list.
func RemoveClass(n *html.Node, c string) {
	var kept []string
	for _, have := range Classes(n) {
		if have != c {
			kept = append(kept, have)
		}
	}
	SetClasses(n, kept)
}

// ShallowClone copies an element and its attributes without children.
func ShallowClone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	return c
}

// Clone deep-copies a subtree. The copy is detached.
func Clone(n *html.Node) *html.Node {
	c := ShallowClone(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertAfter inserts n directly after ref.
func InsertAfter(ref, n *html.Node) {
	Detach(n)
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// InsertBefore inserts n directly before ref.
func InsertBefore(ref, n *html.Node) {
	Detach(n)
	ref.Parent.InsertBefore(n, ref)
}

// ReplaceWith puts nodes where old was and detaches old.
func ReplaceWith(old *html.Node, nodes ...*html.Node) {
	for _, n := range nodes {
		InsertBefore(old, n)
	}
	Detach(old)
}

// Children returns a snapshot of n's children, safe to mutate while ranging.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns a snapshot of n's element children.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// MoveChildren appends all children of src to dst.
func MoveChildren(dst, src *html.Node) {
	for _, c := range Children(src) {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// Unwrap replaces n with its children.
func Unwrap(n *html.Node) {
	if n.Parent == nil {
		return
	}
	for _, c := range Children(n) {
		n.RemoveChild(c)
		n.Parent.InsertBefore(c, n)
	}
	Detach(n)
}

// Wrap puts wrapper where n was and moves n inside it.
func Wrap(n, wrapper *html.Node) {
	n.Parent.InsertBefore(wrapper, n)
	n.Parent.RemoveChild(n)
	wrapper.AppendChild(n)
}

// SplitAfter splits container right after node, which must be a descendant
// of container. Every ancestor between them is shallow-cloned (minus its
// id) so the trailing content keeps its inline formatting. The new
// container holding the tail is inserted after container and returned.
func SplitAfter(container, node *html.Node) *html.Node {
	cur := node
	var carry *html.Node
	for p := node.Parent; p != nil; p = p.Parent {
		clone := ShallowClone(p)
		RemoveAttr(clone, "id")
		if carry != nil {
			clone.AppendChild(carry)
		}
		for s := cur.NextSibling; s != nil; {
			next := s.NextSibling
			p.RemoveChild(s)
			clone.AppendChild(s)
			s = next
		}
		carry = clone
		if p == container {
			break
		}
		cur = p
	}
	InsertAfter(container, carry)
	return carry
}

// PushDownID moves parent's id onto child. A child that already carries a
// different id is a contract violation and yields ErrIDConflict.
func PushDownID(parent, child *html.Node) error {
	id, ok := Attr(parent, "id")
	if !ok || id == "" {
		return nil
	}
	if have, ok := Attr(child, "id"); ok && have != "" && have != id {
		return fmt.Errorf("%w: cannot push id %q onto <%s id=%q>", ErrIDConflict, id, child.Data, have)
	}
	SetAttr(child, "id", id)
	RemoveAttr(parent, "id")
	return nil
}

// TextContent concatenates all descendant text.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// Walk visits n and its descendants in document order. Returning false
// from fn skips the children of the visited node.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// Elements collects descendant elements of root matching pred, skipping
// <pre> subtrees. The result is a snapshot.
func Elements(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return false
			}
			if pred == nil || pred(n) {
				out = append(out, n)
			}
			return n.Data != "pre"
		})
	}
	return out
}

// Closest returns the nearest ancestor-or-self matching pred.
func Closest(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for ; n != nil; n = n.Parent {
		if pred(n) {
			return n
		}
	}
	return nil
}

// InPre reports whether n sits inside a <pre> element.
func InPre(n *html.Node) bool {
	return Closest(n, func(p *html.Node) bool { return IsElement(p, "pre") }) != nil
}

// IsSpace reports whether r is whitespace for cleaning purposes. It
// includes the non-breaking space.
func IsSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v', '\u00a0', '\u200b', '\ufeff':
		return true
	}
	return false
}

// IsWhitespace reports whether s consists only of whitespace.
func IsWhitespace(s string) bool {
	for _, r := range s {
		if !IsSpace(r) {
			return false
		}
	}
	return true
}

// IsBlank reports whether n is a comment or a whitespace-only text node.
func IsBlank(n *html.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case html.CommentNode:
		return true
	case html.TextNode:
		return IsWhitespace(n.Data)
	}
	return false
}

// NextSignificant returns the next sibling that is not blank.
func NextSignificant(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if !IsBlank(s) {
			return s
		}
	}
	return nil
}

// PrevSignificant returns the previous sibling that is not blank.
func PrevSignificant(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if !IsBlank(s) {
			return s
		}
	}
	return nil
}

// FirstSignificantChild returns the first non-blank child.
func FirstSignificantChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !IsBlank(c) {
			return c
		}
	}
	return nil
}

// LastSignificantChild returns the last non-blank child.
func LastSignificantChild(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if !IsBlank(c) {
			return c
		}
	}
	return nil
}

// Parse parses a document or fragment and returns its <body>.
func Parse(s string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	body := FindBody(doc)
	if body == nil {
		return nil, errors.New("parse html: no body element")
	}
	return body, nil
}

// FindBody returns the first <body> element under n.
func FindBody(n *html.Node) *html.Node {
	if IsElement(n, "body") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := FindBody(c); b != nil {
			return b
		}
	}
	return nil
}

// RenderChildren serializes the children of n.
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Render serializes n itself.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}
