package urlkit

import "strings"

func isUnreservedByte(c byte) bool {
	return isAlnum(c) || c == '-' || c == '.' || c == '_' || c == '~'
}

func fromHex(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

// decodeUnreservedPercents percent-decodes only the %XX triples whose
// decoded byte is in the unreserved set (ALPHA / DIGIT / "-._~"). Every
// other byte — including malformed "%" sequences and reserved-character
// escapes such as %2F — passes through untouched, so "%2e%2e" becomes
// the literal ".." (a traversal) while "%2f" stays "%2f" rather than
// merging path segments behind the resolver's back.
func decodeUnreservedPercents(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' || i+2 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		hi, ok1 := fromHex(s[i+1])
		lo, ok2 := fromHex(s[i+2])
		if !ok1 || !ok2 {
			b.WriteByte(s[i])
			continue
		}
		decoded := byte(hi<<4 | lo)
		if isUnreservedByte(decoded) {
			b.WriteByte(decoded)
			i += 2
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// NormalizePath implements spec §4.1's path normalization: percent-decode
// unreserved bytes, then resolve "." and ".." segments. Empty input
// yields "/"; the result starts with "/" when the input does, and a
// relative input stays relative.
func NormalizePath(input string) (string, error) {
	if input == "" {
		return "/", nil
	}
	decoded := decodeUnreservedPercents(input)

	absolute := decoded[0] == '/'
	trailingSlash := len(decoded) > 1 && decoded[len(decoded)-1] == '/'

	var segments []string
	for _, seg := range strings.Split(decoded, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if n := len(segments); n > 0 && segments[n-1] != ".." {
				segments = segments[:n-1]
			} else if !absolute {
				segments = append(segments, "..")
			}
		default:
			segments = append(segments, seg)
		}
	}

	var b strings.Builder
	if absolute {
		b.WriteByte('/')
	}
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(seg)
	}
	normalized := b.String()
	if normalized == "" && absolute {
		normalized = "/"
	}
	if trailingSlash && normalized != "" && !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}
	return normalized, nil
}
