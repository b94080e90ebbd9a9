package htmldom

import "strings"

type tokenKind int

const (
	tokenStartTag tokenKind = iota
	tokenEndTag
	tokenText
	tokenComment
	tokenDoctype
)

type token struct {
	kind        tokenKind
	name        string
	attrs       []Attr
	data        string
	selfClosing bool
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNameStart(c byte) bool {
	return isAlpha(c)
}

func isNameChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '-' || c == '_' || c == ':'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	default:
		return false
	}
}

// lex tokenizes raw HTML bytes, recovering from malformed input rather
// than rejecting it. It returns the token stream in document order
// plus any lexical-level warnings (bare '<', unclosed comment).
func lex(input string) ([]token, []string) {
	var tokens []token
	var warnings []string
	var textBuf strings.Builder

	flushText := func() {
		if textBuf.Len() > 0 {
			tokens = append(tokens, token{kind: tokenText, data: textBuf.String()})
			textBuf.Reset()
		}
	}

	n := len(input)
	i := 0
	for i < n {
		c := input[i]
		if c != '<' {
			textBuf.WriteByte(c)
			i++
			continue
		}

		rest := input[i:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			flushText()
			end := strings.Index(input[i+4:], "-->")
			if end == -1 {
				tokens = append(tokens, token{kind: tokenComment, data: input[i+4:]})
				warnings = append(warnings, "Unclosed HTML comment")
				i = n
			} else {
				tokens = append(tokens, token{kind: tokenComment, data: input[i+4 : i+4+end]})
				i = i + 4 + end + 3
			}

		case len(rest) >= 2 && rest[1] == '!':
			flushText()
			end := strings.IndexByte(rest, '>')
			if end == -1 {
				tokens = append(tokens, token{kind: tokenDoctype, data: trimDoctypePrefix(rest[2:])})
				i = n
			} else {
				tokens = append(tokens, token{kind: tokenDoctype, data: trimDoctypePrefix(rest[2:end])})
				i += end + 1
			}

		case len(rest) >= 2 && rest[1] == '/':
			if len(rest) >= 3 && isNameStart(rest[2]) {
				flushText()
				j := i + 2
				start := j
				for j < n && isNameChar(input[j]) {
					j++
				}
				name := strings.ToLower(input[start:j])
				end := strings.IndexByte(input[j:], '>')
				if end == -1 {
					i = n
				} else {
					i = j + end + 1
				}
				tokens = append(tokens, token{kind: tokenEndTag, name: name})
			} else {
				textBuf.WriteByte('<')
				warnings = append(warnings, "Bare '<' treated as text")
				i++
			}

		case len(rest) >= 2 && isNameStart(rest[1]):
			flushText()
			j := i + 1
			start := j
			for j < n && isNameChar(input[j]) {
				j++
			}
			name := strings.ToLower(input[start:j])
			attrs, selfClosing, next := parseAttrs(input, j)
			tokens = append(tokens, token{kind: tokenStartTag, name: name, attrs: attrs, selfClosing: selfClosing})
			i = next

		default:
			textBuf.WriteByte('<')
			warnings = append(warnings, "Bare '<' treated as text")
			i++
		}
	}
	flushText()
	return tokens, warnings
}

func trimDoctypePrefix(s string) string {
	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "DOCTYPE") {
		return strings.TrimSpace(s[len("DOCTYPE"):])
	}
	return strings.TrimSpace(s)
}

// parseAttrs reads attributes starting at pos (just past the tag name)
// up to and including the closing '>' (or the EOF). It returns the
// parsed attributes, whether the tag was self-closed with "/>", and
// the index just past the tag.
func parseAttrs(input string, pos int) ([]Attr, bool, int) {
	var attrs []Attr
	n := len(input)
	i := pos
	for i < n {
		for i < n && isSpace(input[i]) {
			i++
		}
		if i >= n {
			return attrs, false, i
		}
		if input[i] == '>' {
			return attrs, false, i + 1
		}
		if input[i] == '/' {
			if i+1 < n && input[i+1] == '>' {
				return attrs, true, i + 2
			}
			i++
			continue
		}

		start := i
		for i < n && !isSpace(input[i]) && input[i] != '=' && input[i] != '>' && input[i] != '/' {
			i++
		}
		name := strings.ToLower(input[start:i])

		for i < n && isSpace(input[i]) {
			i++
		}

		value := ""
		if i < n && input[i] == '=' {
			i++
			for i < n && isSpace(input[i]) {
				i++
			}
			if i < n && (input[i] == '"' || input[i] == '\'') {
				quote := input[i]
				i++
				vstart := i
				for i < n && input[i] != quote {
					i++
				}
				value = input[vstart:i]
				if i < n {
					i++
				}
			} else {
				vstart := i
				for i < n && !isSpace(input[i]) && input[i] != '>' {
					i++
				}
				value = input[vstart:i]
			}
		}

		if name != "" {
			attrs = append(attrs, Attr{Name: name, Value: value})
		}
	}
	return attrs, false, i
}
