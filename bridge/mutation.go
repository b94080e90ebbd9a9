package bridge

import (
	"strings"

	"github.com/marrowdock/vellum/htmldom"
)

// Op is the kind of DOM mutation a bridge call performed, mirroring
// mutation.Op's closed string-enum shape.
type Op string

const (
	OpSetStyle     Op = "set_style"
	OpSetText      Op = "set_text"
	OpSetAttribute Op = "set_attribute"
)

// Mutation is one recorded bridge call, shaped like mutation.Record: a
// flat, JSON-tagged struct keyed by element id rather than xpath.
type Mutation struct {
	Op        Op     `json:"op"`
	ElementID string `json:"element_id"`
	Name      string `json:"name,omitempty"`
	Value     string `json:"value"`
	OldValue  string `json:"old_value,omitempty"`
}

// SetStyleByID sets a single inline style property on the element with
// id, merging into its existing style attribute (or creating one).
// Returns false if no element with id exists.
func (r *Registry) SetStyleByID(root *htmldom.Node, id, property, value string) bool {
	el := QueryByID(root, id)
	if el == nil {
		return false
	}
	old, _ := el.Attr("style")
	next := mergeStyleDeclaration(old, property, value)
	setAttr(el, "style", next)
	r.Mutations = append(r.Mutations, Mutation{Op: OpSetStyle, ElementID: id, Name: property, Value: value, OldValue: old})
	return true
}

// SetTextByID replaces the element's children with a single text node
// holding text. Returns false if no element with id exists.
func (r *Registry) SetTextByID(root *htmldom.Node, id, text string) bool {
	el := QueryByID(root, id)
	if el == nil {
		return false
	}
	old := elementText(el)
	el.Children = []*htmldom.Node{{Type: htmldom.TextNode, Data: text}}
	r.Mutations = append(r.Mutations, Mutation{Op: OpSetText, ElementID: id, Value: text, OldValue: old})
	return true
}

// SetAttributeByID sets an arbitrary attribute on the element with id.
// Returns false if no element with id exists.
func (r *Registry) SetAttributeByID(root *htmldom.Node, id, name, value string) bool {
	el := QueryByID(root, id)
	if el == nil {
		return false
	}
	old, _ := el.Attr(name)
	setAttr(el, name, value)
	r.Mutations = append(r.Mutations, Mutation{Op: OpSetAttribute, ElementID: id, Name: name, Value: value, OldValue: old})
	return true
}

func setAttr(el *htmldom.Node, name, value string) {
	for i, a := range el.Attrs {
		if a.Name == name {
			el.Attrs[i].Value = value
			return
		}
	}
	el.Attrs = append(el.Attrs, htmldom.Attr{Name: name, Value: value})
}

func elementText(el *htmldom.Node) string {
	var b strings.Builder
	for _, c := range el.Children {
		if c.Type == htmldom.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// mergeStyleDeclaration sets property:value within an inline style
// attribute string, replacing an existing declaration for the same
// property or appending a new one.
func mergeStyleDeclaration(style, property, value string) string {
	var decls []string
	found := false
	for _, part := range strings.Split(style, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		name := strings.TrimSpace(kv[0])
		if strings.EqualFold(name, property) {
			decls = append(decls, property+": "+value)
			found = true
			continue
		}
		decls = append(decls, part)
	}
	if !found {
		decls = append(decls, property+": "+value)
	}
	return strings.Join(decls, "; ")
}
