package requestpolicy

import (
	"strconv"
	"strings"

	"github.com/marrowdock/vellum/urlkit"
)

type sourceKind int

const (
	sourceInvalid sourceKind = iota
	sourceNone
	sourceSelf
	sourceStar
	sourceScheme
	sourceHost
)

// source is a single CSP source expression parsed once into a small
// AST, per spec.md §9: {Keyword('self'|'none'|'*'), Scheme(s),
// Host{scheme?, host, port?, path?, wildcard?}}.
type source struct {
	kind        sourceKind
	scheme      string
	host        string
	wildcardSub bool
	port        string // "", "*", or a literal numeric string
	path        string
}

// parseSource parses one CSP source token. A malformed token is
// reported as sourceInvalid so it can never match anything — CSP
// parsing fails closed per source.
func parseSource(raw string) source {
	s := strings.TrimSpace(raw)
	switch s {
	case "'none'":
		return source{kind: sourceNone}
	case "'self'":
		return source{kind: sourceSelf}
	case "*":
		return source{kind: sourceStar}
	}

	if strings.HasSuffix(s, ":") && !strings.Contains(s, "//") {
		scheme := strings.TrimSuffix(s, ":")
		if scheme == "" || !isSchemeToken(scheme) {
			return source{kind: sourceInvalid}
		}
		return source{kind: sourceScheme, scheme: strings.ToLower(scheme)}
	}

	scheme := ""
	rest := s
	if idx := strings.Index(s, "://"); idx != -1 {
		scheme = strings.ToLower(s[:idx])
		if !isSchemeToken(scheme) {
			return source{kind: sourceInvalid}
		}
		rest = s[idx+3:]
	}

	hostPort := rest
	path := ""
	if slash := strings.IndexByte(rest, '/'); slash != -1 {
		hostPort = rest[:slash]
		path = rest[slash:]
	}
	if hostPort == "" {
		return source{kind: sourceInvalid}
	}

	host := hostPort
	port := ""
	searchFrom := 0
	if lastBracket := strings.LastIndexByte(hostPort, ']'); lastBracket != -1 {
		searchFrom = lastBracket
	}
	if colon := strings.LastIndexByte(hostPort[searchFrom:], ':'); colon != -1 {
		colon += searchFrom
		host = hostPort[:colon]
		port = hostPort[colon+1:]
		if port != "*" {
			n, err := strconv.Atoi(port)
			if err != nil || n <= 0 || n > 65535 {
				return source{kind: sourceInvalid}
			}
		}
	}

	wildcardSub := false
	if strings.HasPrefix(host, "*.") {
		wildcardSub = true
		host = host[2:]
	}
	if host == "" {
		return source{kind: sourceInvalid}
	}

	return source{
		kind:        sourceHost,
		scheme:      scheme,
		host:        strings.ToLower(host),
		wildcardSub: wildcardSub,
		port:        port,
		path:        path,
	}
}

func isSchemeToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		alpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		digit := c >= '0' && c <= '9'
		if !alpha && !digit && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

// matchSource reports whether u satisfies src, given the request
// policy (for 'self' and scheme-less host resolution).
func matchSource(src source, u urlkit.URL, policy Policy) bool {
	switch src.kind {
	case sourceInvalid, sourceNone:
		return false
	case sourceSelf:
		policyOrigin, ok := urlkit.CanonicalOrigin(policy.Origin)
		if !ok {
			return false
		}
		urlOrigin, ok := u.Origin()
		if !ok {
			return false
		}
		return policyOrigin == urlOrigin
	case sourceStar:
		return !u.Opaque
	case sourceScheme:
		return strings.EqualFold(src.scheme, u.Scheme)
	case sourceHost:
		return matchHostSource(src, u, policy)
	default:
		return false
	}
}

func matchHostSource(src source, u urlkit.URL, policy Policy) bool {
	scheme := src.scheme
	if scheme == "" {
		policyOrigin, ok := urlkit.CanonicalOrigin(policy.Origin)
		if !ok {
			return false
		}
		parsedPolicy, err := urlkit.Parse(policyOrigin)
		if err != nil {
			return false
		}
		scheme = parsedPolicy.Scheme
	}
	if !strings.EqualFold(scheme, u.Scheme) {
		return false
	}

	if !hostMatches(src, u.Host) {
		return false
	}
	if !portMatches(src, u, scheme) {
		return false
	}
	if !pathMatches(src.path, u.Path) {
		return false
	}
	return true
}

func hostMatches(src source, urlHost string) bool {
	urlHost = strings.ToLower(urlHost)
	if src.wildcardSub {
		suffix := "." + src.host
		return strings.HasSuffix(urlHost, suffix) && urlHost != src.host
	}
	return urlHost == src.host
}

func portMatches(src source, u urlkit.URL, scheme string) bool {
	if src.port == "" {
		if !u.HasPort {
			return true
		}
		def, ok := defaultPortFor(scheme)
		return ok && u.Port == def
	}
	if src.port == "*" {
		return true
	}
	n, err := strconv.Atoi(src.port)
	if err != nil {
		return false
	}
	return u.HasPort && int(u.Port) == n
}

func defaultPortFor(scheme string) (uint16, bool) {
	switch strings.ToLower(scheme) {
	case "http", "ws":
		return 80, true
	case "https", "wss":
		return 443, true
	default:
		return 0, false
	}
}

func pathMatches(sourcePath, urlPath string) bool {
	if sourcePath == "" || sourcePath == "/" {
		return true
	}
	if strings.HasSuffix(sourcePath, "/") {
		return strings.HasPrefix(urlPath, sourcePath)
	}
	return urlPath == sourcePath
}

// matchAny evaluates a source list per spec.md §4.8: 'none' anywhere
// makes the whole list match nothing; otherwise the URL must match at
// least one source.
func matchAny(sources []string, u urlkit.URL, policy Policy) bool {
	for _, raw := range sources {
		if parseSource(raw).kind == sourceNone {
			return false
		}
	}
	for _, raw := range sources {
		if matchSource(parseSource(raw), u, policy) {
			return true
		}
	}
	return false
}
