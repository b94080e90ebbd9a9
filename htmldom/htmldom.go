// Package htmldom is a small, fault-tolerant HTML parser: tokenizer and
// tree-builder with explicit recovery rather than a full HTML5
// conformance machine. Given identical bytes it always returns the
// same tree and the same ordered warning list — there is no hidden
// state beyond the input.
package htmldom

import (
	"fmt"
	"strings"
)

// NodeType is the closed variant every node belongs to.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
	DoctypeNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case DoctypeNode:
		return "doctype"
	default:
		return "unknown"
	}
}

// Attr is one (name, value) attribute pair, in parse order.
type Attr struct {
	Name  string
	Value string
}

// Node is a single DOM node. Tag and Data are populated depending on
// Type: Element uses Tag/Attrs/Children, Text/Comment/Doctype use Data.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Data     string
	Children []*Node
}

// documentTag marks the synthetic root every parse produces; it is not
// part of the public Element/Text/Comment/Doctype variant and is never
// emitted by Serialize.
const documentTag = "#document"

// Attr returns the value of the named attribute and whether it was
// present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ID returns the element's id attribute value, or "" if absent.
func (n *Node) ID() string {
	v, _ := n.Attr("id")
	return v
}

// Walk visits n and every descendant, in document order.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// FindByID returns the first element in document order whose id
// attribute equals id, or nil.
func FindByID(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node) {
		if found != nil {
			return
		}
		if n.Type == ElementNode && n.ID() == id {
			found = n
		}
	})
	return found
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoidElement reports whether tag never has an end tag or children.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Document is the result of a Parse: the implicit root plus every
// warning produced while recovering from malformed input.
type Document struct {
	Root     *Node
	Warnings []string
}

// Parse tokenizes and tree-builds input, recovering from malformed
// markup per the documented recovery rules instead of failing.
// Well-formed input always produces zero warnings. Text and attribute
// values have the four references Serialize writes (&amp; &lt; &gt;
// &quot;) decoded, so Parse(Serialize(doc)) reproduces doc.
func Parse(input string) Document {
	unescape := strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`)
	tokens, lexWarnings := lex(input)
	root := &Node{Type: ElementNode, Tag: documentTag}
	stack := []*Node{root}
	warnings := append([]string{}, lexWarnings...)

	top := func() *Node { return stack[len(stack)-1] }

	for _, tok := range tokens {
		switch tok.kind {
		case tokenStartTag:
			node := &Node{Type: ElementNode, Tag: tok.name, Attrs: dedupeAttrs(tok.attrs)}
			for i := range node.Attrs {
				node.Attrs[i].Value = unescape.Replace(node.Attrs[i].Value)
			}
			top().Children = append(top().Children, node)
			if !tok.selfClosing && !IsVoidElement(node.Tag) {
				stack = append(stack, node)
			}

		case tokenEndTag:
			idx := -1
			for j := len(stack) - 1; j >= 1; j-- {
				if stack[j].Tag == tok.name {
					idx = j
					break
				}
			}
			if idx == -1 {
				warnings = append(warnings, "Orphan end tag")
				continue
			}
			for j := len(stack) - 1; j > idx; j-- {
				warnings = append(warnings, fmt.Sprintf("<%s> implicitly closed", stack[j].Tag))
			}
			stack = stack[:idx]

		case tokenText:
			if tok.data == "" {
				continue
			}
			top().Children = append(top().Children, &Node{Type: TextNode, Data: unescape.Replace(tok.data)})

		case tokenComment:
			top().Children = append(top().Children, &Node{Type: CommentNode, Data: tok.data})

		case tokenDoctype:
			top().Children = append(top().Children, &Node{Type: DoctypeNode, Data: tok.data})
		}
	}

	for j := len(stack) - 1; j >= 1; j-- {
		warnings = append(warnings, fmt.Sprintf("Unclosed tag <%s> implicitly closed", stack[j].Tag))
	}

	return Document{Root: root, Warnings: warnings}
}

func dedupeAttrs(attrs []Attr) []Attr {
	out := make([]Attr, 0, len(attrs))
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		out = append(out, a)
	}
	return out
}

// Serialize produces a canonical textual form of a parsed document,
// suitable for reproducibility/equality tests: attribute order is
// parse order and self-closing is applied consistently by tag (void
// elements self-close, everything else gets an explicit end tag).
func Serialize(doc Document) string {
	var b strings.Builder
	for _, c := range doc.Root.Children {
		serializeNode(&b, c)
	}
	return b.String()
}

func serializeNode(b *strings.Builder, n *Node) {
	switch n.Type {
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		for _, a := range n.Attrs {
			b.WriteByte(' ')
			b.WriteString(a.Name)
			b.WriteString(`="`)
			b.WriteString(escapeAttr(a.Value))
			b.WriteByte('"')
		}
		if IsVoidElement(n.Tag) {
			b.WriteString(" />")
			return
		}
		b.WriteByte('>')
		for _, c := range n.Children {
			serializeNode(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	case TextNode:
		b.WriteString(escapeText(n.Data))
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.Data)
		b.WriteString("-->")
	case DoctypeNode:
		b.WriteString("<!DOCTYPE")
		if n.Data != "" {
			b.WriteByte(' ')
			b.WriteString(n.Data)
		}
		b.WriteByte('>')
	}
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
