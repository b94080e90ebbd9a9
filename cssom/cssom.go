// Package cssom parses the small CSS subset the cascade understands:
// universal/type/id/class selectors (and their conjunctions) with
// `property: value;` declarations. Unknown at-rules are skipped rather
// than rejected, mirroring the HTML parser's tolerance.
package cssom

import "strings"

// Selector is a single compound selector — no descendant combinators.
// A selector list (comma-separated) is represented as []Selector on
// the owning Rule.
type Selector struct {
	Universal bool
	Tag       string
	ID        string
	Classes   []string
}

// Specificity returns the (id, class, type) specificity triple used by
// the cascade to break ties between matching rules.
func (s Selector) Specificity() (idCount, classCount, typeCount int) {
	if s.ID != "" {
		idCount = 1
	}
	classCount = len(s.Classes)
	if s.Tag != "" {
		typeCount = 1
	}
	return
}

// Declaration is one `property: value` pair.
type Declaration struct {
	Property string
	Value    string
}

// Rule is a selector list sharing one declaration block.
type Rule struct {
	Selectors    []Selector
	Declarations []Declaration
}

// Stylesheet is an ordered list of rules; order is the order rules
// would apply in the cascade (sheet order), before specificity.
type Stylesheet struct {
	Rules []Rule
}

// Parse parses a CSS text into a Stylesheet. Comments are stripped
// first; unknown at-rules (anything starting with '@') are skipped
// whole, whether block-form or statement-form.
func Parse(text string) Stylesheet {
	text = stripComments(text)
	var sheet Stylesheet
	n := len(text)
	i := 0
	for i < n {
		for i < n && isCSSSpace(text[i]) {
			i++
		}
		if i >= n {
			break
		}
		if text[i] == '@' {
			i = skipAtRule(text, i)
			continue
		}
		braceIdx := strings.IndexByte(text[i:], '{')
		if braceIdx == -1 {
			break
		}
		selectorText := text[i : i+braceIdx]
		i = i + braceIdx + 1

		closeIdx := strings.IndexByte(text[i:], '}')
		var declText string
		if closeIdx == -1 {
			declText = text[i:]
			i = n
		} else {
			declText = text[i : i+closeIdx]
			i = i + closeIdx + 1
		}

		selectors := parseSelectorList(selectorText)
		if len(selectors) == 0 {
			continue
		}
		sheet.Rules = append(sheet.Rules, Rule{
			Selectors:    selectors,
			Declarations: parseDeclarations(declText),
		})
	}
	return sheet
}

func skipAtRule(text string, i int) int {
	n := len(text)
	j := i
	for j < n && text[j] != '{' && text[j] != ';' {
		j++
	}
	if j >= n {
		return n
	}
	if text[j] == ';' {
		return j + 1
	}
	depth := 1
	j++
	for j < n && depth > 0 {
		switch text[j] {
		case '{':
			depth++
		case '}':
			depth--
		}
		j++
	}
	return j
}

func stripComments(s string) string {
	var b strings.Builder
	n := len(s)
	i := 0
	for i < n {
		if i+1 < n && s[i] == '/' && s[i+1] == '*' {
			end := strings.Index(s[i+2:], "*/")
			if end == -1 {
				break
			}
			i = i + 2 + end + 2
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func isCSSSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	default:
		return false
	}
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '-' || c == '_'
}

func parseSelectorList(s string) []Selector {
	var out []Selector
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if sel, ok := parseCompoundSelector(part); ok {
			out = append(out, sel)
		}
	}
	return out
}

// parseCompoundSelector parses one non-comma-separated token. Inputs
// using a descendant combinator (whitespace-separated compounds) are
// reduced to their rightmost compound, matching only the target
// element — descendant combinators are out of scope for this subset.
func parseCompoundSelector(s string) (Selector, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Selector{}, false
	}
	token := fields[len(fields)-1]

	var sel Selector
	n := len(token)
	i := 0
	if i < n && token[i] == '*' {
		sel.Universal = true
		i++
	}
	for i < n {
		switch token[i] {
		case '#':
			j := i + 1
			for j < n && isIdentChar(token[j]) {
				j++
			}
			if j == i+1 {
				return Selector{}, false
			}
			sel.ID = token[i+1 : j]
			i = j
		case '.':
			j := i + 1
			for j < n && isIdentChar(token[j]) {
				j++
			}
			if j == i+1 {
				return Selector{}, false
			}
			sel.Classes = append(sel.Classes, token[i+1:j])
			i = j
		default:
			j := i
			for j < n && isIdentChar(token[j]) {
				j++
			}
			if j == i {
				return Selector{}, false
			}
			sel.Tag = strings.ToLower(token[i:j])
			i = j
		}
	}
	if !sel.Universal && sel.Tag == "" && sel.ID == "" && len(sel.Classes) == 0 {
		return Selector{}, false
	}
	return sel, true
}

// ParseDeclarations parses a bare declaration block (no selector or
// braces), the format an element's inline `style` attribute uses.
func ParseDeclarations(s string) []Declaration {
	return parseDeclarations(s)
}

func parseDeclarations(s string) []Declaration {
	var out []Declaration
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.IndexByte(part, ':')
		if idx == -1 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(part[:idx]))
		val := strings.TrimSpace(part[idx+1:])
		if prop == "" || val == "" {
			continue
		}
		out = append(out, Declaration{Property: prop, Value: val})
	}
	return out
}
