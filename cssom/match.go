package cssom

import (
	"strings"

	"github.com/marrowdock/vellum/htmldom"
)

// Matches reports whether sel matches element n. Only element nodes
// can match; text/comment/doctype nodes never do.
func Matches(sel Selector, n *htmldom.Node) bool {
	if n.Type != htmldom.ElementNode {
		return false
	}
	if sel.Tag != "" && sel.Tag != n.Tag {
		return false
	}
	if sel.ID != "" && n.ID() != sel.ID {
		return false
	}
	for _, c := range sel.Classes {
		if !hasClass(n, c) {
			return false
		}
	}
	return true
}

// MatchesAny reports whether any selector in a selector list matches n.
func MatchesAny(selectors []Selector, n *htmldom.Node) bool {
	for _, sel := range selectors {
		if Matches(sel, n) {
			return true
		}
	}
	return false
}

func hasClass(n *htmldom.Node, class string) bool {
	v, ok := n.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
