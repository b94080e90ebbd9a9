// Package style resolves the cascade: for every element in a document,
// it combines matching stylesheet rules and the element's inline
// `style` attribute into one flattened set of computed properties,
// applying inheritance for a fixed property list. The selector matcher
// generalizes the teacher's hand-rolled extract.parseSimpleSelector /
// matchSimple approach (tag/id/class matching via a small struct) to
// selector lists and cssom's AST instead of a live *html.Node tree.
package style

import (
	"sort"

	"github.com/marrowdock/vellum/cssom"
	"github.com/marrowdock/vellum/htmldom"
)

// InheritedProperties is the fixed list of properties that flow from
// parent to child when the child does not declare its own value.
var InheritedProperties = []string{
	"color",
	"font-size",
	"font-family",
	"line-height",
	"visibility",
}

// Computed is the flattened set of property values that apply to one
// element after the cascade and inheritance have run.
type Computed struct {
	Properties map[string]string
}

// Get returns a property's computed value and whether it was set.
func (c Computed) Get(prop string) (string, bool) {
	v, ok := c.Properties[prop]
	return v, ok
}

// GetOr returns a property's computed value, or fallback if unset.
func (c Computed) GetOr(prop, fallback string) string {
	if v, ok := c.Properties[prop]; ok {
		return v
	}
	return fallback
}

// Tree is the result of a cascade pass: one Computed per element node.
type Tree struct {
	Styles map[*htmldom.Node]Computed
}

// Of returns the computed style for n, or an empty Computed if n was
// never visited (not an element, or not part of the cascaded document).
func (t Tree) Of(n *htmldom.Node) Computed {
	if s, ok := t.Styles[n]; ok {
		return s
	}
	return Computed{Properties: map[string]string{}}
}

// Cascade resolves computed styles for every element under root.
// root is typically a Document's synthetic root; its own non-element
// children are skipped, and the walk starts fresh (no inherited style)
// at each of its top-level element children.
func Cascade(root *htmldom.Node, sheet cssom.Stylesheet) Tree {
	tree := Tree{Styles: make(map[*htmldom.Node]Computed)}
	var walk func(n *htmldom.Node, parent *Computed)
	walk = func(n *htmldom.Node, parent *Computed) {
		if n.Type != htmldom.ElementNode {
			return
		}
		computed := Computed{Properties: make(map[string]string)}
		if parent != nil {
			for _, prop := range InheritedProperties {
				if v, ok := parent.Properties[prop]; ok {
					computed.Properties[prop] = v
				}
			}
		}
		for _, decl := range ownDeclarations(n, sheet) {
			computed.Properties[decl.Property] = decl.Value
		}
		tree.Styles[n] = computed
		for _, c := range n.Children {
			walk(c, &computed)
		}
	}
	for _, c := range root.Children {
		walk(c, nil)
	}
	return tree
}

type ruleMatch struct {
	specificity [3]int
	order       int
	decls       []cssom.Declaration
}

// ownDeclarations returns n's own (pre-inheritance) declarations: every
// matching sheet rule applied in specificity order (ties broken by
// sheet order), then the inline `style` attribute last so it always
// wins, per spec.md §4.7.
func ownDeclarations(n *htmldom.Node, sheet cssom.Stylesheet) []cssom.Declaration {
	var matches []ruleMatch
	for i, rule := range sheet.Rules {
		for _, sel := range rule.Selectors {
			if cssom.Matches(sel, n) {
				idc, cc, tc := sel.Specificity()
				matches = append(matches, ruleMatch{
					specificity: [3]int{idc, cc, tc},
					order:       i,
					decls:       rule.Declarations,
				})
				break
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return lessSpecificity(matches[i].specificity, matches[j].specificity)
	})

	var out []cssom.Declaration
	for _, m := range matches {
		out = append(out, m.decls...)
	}
	if inline, ok := n.Attr("style"); ok {
		out = append(out, cssom.ParseDeclarations(inline)...)
	}
	return out
}

func lessSpecificity(a, b [3]int) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
