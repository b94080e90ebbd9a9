// Package requestpolicy enforces the scheme allow-list, same-origin /
// cross-origin gate, a CSP connect-src/default-src subset, and a CORS
// response gate — all routed through urlkit's canonical-origin
// normalization so origin comparison never drifts from one caller to
// the next. It generalizes the teacher's shield.HeaderConfig
// "config struct → deterministic header decisions" shape into a small
// source-matching AST.
package requestpolicy

import "strings"

// Violation is the closed set of reasons check_request_policy and
// check_cors_response_policy can fail.
type Violation int

const (
	ViolationNone Violation = iota
	TooManyRedirects
	CrossOriginBlocked
	CorsResponseBlocked
	CspConnectSrcBlocked
	UnsupportedScheme
	EmptyUrl
)

func (v Violation) String() string {
	switch v {
	case ViolationNone:
		return "None"
	case TooManyRedirects:
		return "TooManyRedirects"
	case CrossOriginBlocked:
		return "CrossOriginBlocked"
	case CorsResponseBlocked:
		return "CorsResponseBlocked"
	case CspConnectSrcBlocked:
		return "CspConnectSrcBlocked"
	case UnsupportedScheme:
		return "UnsupportedScheme"
	case EmptyUrl:
		return "EmptyUrl"
	default:
		return "Unknown"
	}
}

// DefaultAllowedSchemes is used when Policy.AllowedSchemes is empty.
// file is included per the shipping configuration decided in
// DESIGN.md — the default policy allows local file navigation.
var DefaultAllowedSchemes = []string{"http", "https", "file"}

// Policy is the full set of gates a request or response is checked
// against.
type Policy struct {
	AllowedSchemes                 []string
	AllowCrossOrigin                bool
	Origin                          string
	EnforceConnectSrc               bool
	ConnectSrcSources               []string
	DefaultSrcSources               []string
	CredentialsModeInclude          bool
	RequireACACForCredentialedCORS  bool
}

func (p Policy) allowedSchemes() []string {
	if len(p.AllowedSchemes) > 0 {
		return p.AllowedSchemes
	}
	return DefaultAllowedSchemes
}

func (p Policy) schemeAllowed(scheme string) bool {
	for _, s := range p.allowedSchemes() {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

// Headers is a case-sensitive multimap keyed by the header name as
// given, so duplicate differently-cased headers (e.g. two
// "Access-Control-Allow-Origin" variants) remain individually visible
// — net/http.Header and every header type in the example pack
// canonicalize case on insertion, which would hide exactly the
// duplicate-case scenario the CORS gate must detect.
type Headers map[string][]string

// Add appends value under the exact given name.
func (h Headers) Add(name, value string) {
	h[name] = append(h[name], value)
}

// GetAll returns every value stored under any key that matches name
// case-insensitively. Values under one key keep their insertion order;
// the order across differently-cased keys is not defined.
func (h Headers) GetAll(name string) []string {
	var out []string
	for k, vs := range h {
		if strings.EqualFold(k, name) {
			out = append(out, vs...)
		}
	}
	return out
}

// MatchingKeys returns every distinct key that matches name
// case-insensitively — used to detect duplicate differently-cased
// headers.
func (h Headers) MatchingKeys(name string) []string {
	var keys []string
	for k := range h {
		if strings.EqualFold(k, name) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Response is a fetch result. It is an error response iff Error is
// non-empty or StatusCode is zero.
type Response struct {
	StatusCode int
	Headers    Headers
	Body       []byte
	Error      string
}

// IsError reports whether r represents a transport/fetch failure.
func (r Response) IsError() bool {
	return r.Error != "" || r.StatusCode == 0
}

// CheckResult is the outcome of check_request_policy.
type CheckResult struct {
	Allowed   bool
	Violation Violation
	Message   string
}

// CorsResult is the outcome of check_cors_response_policy.
type CorsResult struct {
	Allowed   bool
	Violation Violation
}
