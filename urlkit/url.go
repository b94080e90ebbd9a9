// Package urlkit parses URLs into their canonical parts and derives
// canonical origins from them. It is the only package in vellum that
// understands URL grammar; every other package compares origins by
// calling into here, never by string-slicing a URL itself.
package urlkit

import (
	"fmt"
	"strconv"
	"strings"
)

// URL is a parsed, validated URL. Scheme and Host are always lowercase
// ASCII. Host is the canonical authority host: bracketed for IPv6,
// dotted-quad for IPv4, or a lowercase dot-separated label sequence.
// Opaque is true for schemes that have no "//" authority (e.g. "data:",
// "javascript:") — Host, Port, Path, Query, and Fragment are not
// meaningful for those and Origin always fails. A "file:" URL may have
// an empty authority ("file:///tmp/x"); Host is then empty.
type URL struct {
	Scheme   string
	Opaque   bool
	Opaqued  string // raw bytes following "scheme:" when Opaque is true
	Host     string
	Port     uint16 // 0 means "not explicit"; EffectivePort falls back to the scheme default
	HasPort  bool
	Path     string
	Query    string
	Fragment string
}

// defaultPorts maps a scheme to its default port. 0 means the scheme has
// no well-known default (origin serialization always includes the port
// in that case when one is present).
var defaultPorts = map[string]uint16{
	"http":  80,
	"https": 443,
	"ws":    80,
	"wss":   443,
}

func toLowerASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func hasControlByte(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x1f || c == 0x7f {
			return true
		}
	}
	return false
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func isSchemeChar(c byte) bool {
	return isAlnum(c) || c == '+' || c == '-' || c == '.'
}

// ParseError reports why parse_url rejected an input. The Message is
// part of no public contract; callers should match on nothing but
// success/failure.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

func errf(format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// Parse implements spec §4.1's parse_url. It never mutates its input and
// always returns either a fully validated URL or a non-nil error.
func Parse(raw string) (URL, error) {
	if raw == "" {
		return URL{}, errf("URL is empty")
	}
	if hasControlByte(raw) {
		return URL{}, errf("URL contains control characters")
	}

	colon := strings.IndexByte(raw, ':')
	if colon <= 0 {
		return URL{}, errf("URL must include a scheme")
	}
	scheme := raw[:colon]
	if !isAlpha(scheme[0]) {
		return URL{}, errf("scheme must start with a letter")
	}
	for i := 1; i < len(scheme); i++ {
		if !isSchemeChar(scheme[i]) {
			return URL{}, errf("invalid scheme character")
		}
	}
	scheme = toLowerASCII(scheme)

	rest := raw[colon+1:]
	if !strings.HasPrefix(rest, "//") {
		return URL{Scheme: scheme, Opaque: true, Opaqued: rest}, nil
	}
	rest = rest[2:]

	authorityEnd := strings.IndexAny(rest, "/?#")
	var authority, tail string
	if authorityEnd == -1 {
		authority = rest
	} else {
		authority = rest[:authorityEnd]
		tail = rest[authorityEnd:]
	}
	if authority == "" && scheme != "file" {
		return URL{}, errf("URL is missing a host")
	}
	if strings.ContainsRune(authority, '@') {
		return URL{}, errf("user-info in URL is not supported")
	}
	if strings.ContainsRune(authority, '\\') {
		return URL{}, errf("backslash in authority is invalid")
	}

	var host string
	var port uint16
	var hasPort bool
	if authority != "" {
		var err error
		host, port, hasPort, err = parseAuthority(authority)
		if err != nil {
			return URL{}, err
		}
	}

	path, query, fragment := splitTail(tail)
	normPath, err := NormalizePath(path)
	if err != nil {
		return URL{}, err
	}

	return URL{
		Scheme:   scheme,
		Host:     host,
		Port:     port,
		HasPort:  hasPort,
		Path:     normPath,
		Query:    query,
		Fragment: fragment,
	}, nil
}

func splitTail(tail string) (path, query, fragment string) {
	if tail == "" {
		return "/", "", ""
	}
	frag := ""
	if i := strings.IndexByte(tail, '#'); i != -1 {
		frag = tail[i+1:]
		tail = tail[:i]
	}
	q := ""
	if i := strings.IndexByte(tail, '?'); i != -1 {
		q = tail[i+1:]
		tail = tail[:i]
	}
	if tail == "" || tail[0] != '/' {
		tail = "/" + tail
	}
	return tail, q, frag
}

func parseAuthority(authority string) (host string, port uint16, hasPort bool, err error) {
	if authority[0] == '[' {
		return parseBracketedHost(authority)
	}

	firstColon := strings.IndexByte(authority, ':')
	if firstColon == -1 {
		h, herr := validateHost(authority)
		if herr != nil {
			return "", 0, false, herr
		}
		return h, 0, false, nil
	}

	if strings.IndexByte(authority[firstColon+1:], ':') != -1 {
		return "", 0, false, errf("IPv6 literals must be enclosed in []")
	}

	rawHost := authority[:firstColon]
	rawPort := authority[firstColon+1:]
	if rawHost == "" {
		return "", 0, false, errf("URL host is empty")
	}
	h, herr := validateHost(rawHost)
	if herr != nil {
		return "", 0, false, herr
	}
	p, perr := validatePort(rawPort)
	if perr != nil {
		return "", 0, false, perr
	}
	return h, p, true, nil
}

func parseBracketedHost(authority string) (host string, port uint16, hasPort bool, err error) {
	end := strings.IndexByte(authority, ']')
	if end == -1 {
		return "", 0, false, errf("IPv6 host is missing a closing bracket")
	}
	inner := authority[1:end]
	if inner == "" {
		return "", 0, false, errf("URL host is empty")
	}
	if err := validateIPv6Literal(inner); err != nil {
		return "", 0, false, err
	}

	rest := authority[end+1:]
	if rest == "" {
		return "[" + toLowerASCII(inner) + "]", 0, false, nil
	}
	if rest[0] != ':' {
		return "", 0, false, errf("invalid host/port separator")
	}
	p, perr := validatePort(rest[1:])
	if perr != nil {
		return "", 0, false, perr
	}
	return "[" + toLowerASCII(inner) + "]", p, true, nil
}

func validateIPv6Literal(inner string) error {
	if !isASCII(inner) {
		return errf("non-ASCII byte in IPv6 literal")
	}
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		isHex := isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		if !isHex && c != ':' && c != '.' {
			return errf("invalid character in IPv6 literal")
		}
	}
	if !strings.ContainsRune(inner, ':') {
		return errf("IPv6 literal must contain ':'")
	}
	return nil
}

func validatePort(raw string) (uint16, error) {
	if raw == "" {
		return 0, errf("explicit port must not be empty")
	}
	for i := 0; i < len(raw); i++ {
		if !isDigit(raw[i]) {
			return 0, errf("port must be numeric")
		}
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 || value > 65535 {
		return 0, errf("port out of range: %s", raw)
	}
	return uint16(value), nil
}

func validateHost(host string) (string, error) {
	if host == "" {
		return "", errf("URL host is empty")
	}
	if !isASCII(host) {
		return "", errf("non-ASCII byte in host")
	}
	if strings.ContainsRune(host, '%') {
		return "", errf("percent-escape in authority is invalid")
	}
	if strings.ContainsRune(host, '\\') {
		return "", errf("backslash in authority is invalid")
	}

	allDigitsAndDots := true
	allDigits := true
	for i := 0; i < len(host); i++ {
		c := host[i]
		if !isDigit(c) {
			allDigits = false
			if c != '.' {
				allDigitsAndDots = false
			}
		}
	}
	if allDigits {
		return "", errf("legacy single-integer host is invalid: %s", host)
	}
	if allDigitsAndDots {
		return validateIPv4(host)
	}
	return validateLabels(host)
}

func validateIPv4(host string) (string, error) {
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return "", errf("invalid IPv4 host: %s", host)
	}
	for _, p := range parts {
		if p == "" || len(p) > 3 {
			return "", errf("invalid IPv4 octet in host: %s", host)
		}
		if len(p) > 1 && p[0] == '0' {
			return "", errf("leading zero in IPv4 octet: %s", host)
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > 255 {
			return "", errf("IPv4 octet out of range: %s", host)
		}
	}
	return host, nil
}

func validateLabels(host string) (string, error) {
	if strings.Contains(host, "..") || host[0] == '.' || host[len(host)-1] == '.' {
		return "", errf("empty label in host: %s", host)
	}
	labels := strings.Split(host, ".")
	for _, l := range labels {
		if l == "" || len(l) > 63 {
			return "", errf("invalid label length in host: %s", host)
		}
		for i := 0; i < len(l); i++ {
			c := l[i]
			if !isAlnum(c) && c != '-' {
				return "", errf("invalid character in host label: %s", host)
			}
		}
	}
	return toLowerASCII(host), nil
}

// String renders the URL back to its textual form.
func (u URL) String() string {
	if u.Opaque {
		return u.Scheme + ":" + u.Opaqued
	}
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Host)
	if u.HasPort {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(u.Port)))
	}
	b.WriteString(u.Path)
	if u.Query != "" {
		b.WriteByte('?')
		b.WriteString(u.Query)
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}
	return b.String()
}

// EffectivePort returns the explicit port if set, else the scheme's
// default port, else 0 (no known default).
func (u URL) EffectivePort() uint16 {
	if u.HasPort {
		return u.Port
	}
	return defaultPorts[u.Scheme]
}

// Origin computes spec §4.1's canonical_origin for a parsed URL. The
// second return value is false for opaque schemes.
func (u URL) Origin() (string, bool) {
	if u.Opaque {
		return "", false
	}
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Host)
	if u.HasPort && u.Port != defaultPorts[u.Scheme] {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(u.Port)))
	}
	return b.String(), true
}

// CanonicalOrigin parses raw and returns its canonical origin, or
// ("", false) if raw does not parse or names an opaque scheme.
func CanonicalOrigin(raw string) (string, bool) {
	u, err := Parse(raw)
	if err != nil {
		return "", false
	}
	return u.Origin()
}

// HTTPOrigin canonicalizes raw for CORS/Origin-header purposes: only
// http/https schemes are accepted, and the input must be origin-shaped
// (no path beyond "/", no query, no fragment — a full URL with a
// resource path is not a valid value for an origin field).
func HTTPOrigin(raw string) (string, bool) {
	u, err := Parse(raw)
	if err != nil || u.Opaque {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Path != "" && u.Path != "/" {
		return "", false
	}
	if u.Query != "" || u.Fragment != "" {
		return "", false
	}
	return u.Origin()
}

// SameOrigin reports whether a and b canonicalize to the same origin.
// Both sides must canonicalize successfully.
func SameOrigin(a, b string) bool {
	oa, ok := CanonicalOrigin(a)
	if !ok {
		return false
	}
	ob, ok := CanonicalOrigin(b)
	if !ok {
		return false
	}
	return oa == ob
}
