package requestpolicy

import (
	"strings"

	"github.com/marrowdock/vellum/urlkit"
)

// CheckRequestPolicy runs the scheme allow-list, cross-origin gate,
// and CSP connect-src/default-src gate, in that order — first failure
// wins.
func CheckRequestPolicy(rawURL string, policy Policy) CheckResult {
	if rawURL == "" {
		return CheckResult{Allowed: false, Violation: EmptyUrl, Message: "url is empty"}
	}

	u, err := urlkit.Parse(rawURL)
	if err != nil {
		return CheckResult{Allowed: false, Violation: UnsupportedScheme, Message: "unparsable url treated as unsupported scheme"}
	}

	if !policy.schemeAllowed(u.Scheme) {
		return CheckResult{Allowed: false, Violation: UnsupportedScheme, Message: "scheme " + u.Scheme + " is not allowed"}
	}

	if !policy.AllowCrossOrigin && policy.Origin != "" {
		policyOrigin, ok := urlkit.CanonicalOrigin(policy.Origin)
		if !ok {
			return CheckResult{Allowed: false, Violation: CrossOriginBlocked, Message: "policy origin is malformed"}
		}
		urlOrigin, ok := u.Origin()
		if !ok || policyOrigin != urlOrigin {
			return CheckResult{Allowed: false, Violation: CrossOriginBlocked, Message: "cross-origin request blocked"}
		}
	}

	if policy.EnforceConnectSrc {
		sources := policy.ConnectSrcSources
		if len(sources) == 0 {
			sources = policy.DefaultSrcSources
		}
		if !matchAny(sources, u, policy) {
			return CheckResult{Allowed: false, Violation: CspConnectSrcBlocked, Message: "no connect-src/default-src source matched"}
		}
	}

	return CheckResult{Allowed: true, Violation: ViolationNone}
}

// hasEnforceableDocumentOrigin reports whether policy.Origin is a
// usable document origin for CORS purposes — either a canonicalizable
// http(s) origin, or the "null" sentinel, which the original
// implementation's is_null_document_origin treats as always
// enforceable (it never equals a real origin, so it is always
// cross-origin with respect to any concrete URL).
func hasEnforceableDocumentOrigin(policy Policy) bool {
	if policy.Origin == "null" {
		return true
	}
	_, ok := urlkit.HTTPOrigin(policy.Origin)
	return ok
}

// isCrossOrigin reports whether u is cross-origin with respect to the
// policy's document origin. The "null" sentinel is always cross-origin
// because it never equals a real serialized origin.
func isCrossOrigin(u urlkit.URL, policy Policy) bool {
	if policy.Origin == "null" {
		return true
	}
	policyOrigin, ok := urlkit.HTTPOrigin(policy.Origin)
	if !ok {
		return true
	}
	urlOrigin, ok := u.Origin()
	if !ok {
		return true
	}
	return policyOrigin != urlOrigin
}

// shouldAttachOriginHeader decomposes build_request_headers_for_policy's
// condition per the original's three-way split: there must be an
// enforceable document origin, the request must be cross-origin, and
// the target URL itself must canonicalize.
func shouldAttachOriginHeader(rawURL string, policy Policy) (string, bool) {
	if !hasEnforceableDocumentOrigin(policy) {
		return "", false
	}
	u, err := urlkit.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if _, ok := u.Origin(); !ok {
		return "", false
	}
	if !isCrossOrigin(u, policy) {
		return "", false
	}
	policyOrigin, ok := urlkit.HTTPOrigin(policy.Origin)
	if !ok {
		return "", false
	}
	return policyOrigin, true
}

// BuildRequestHeadersForPolicy emits an Origin header iff the policy's
// origin canonicalizes under http_origin, the request is cross-origin,
// and the target URL's origin exists. Otherwise the header map is
// empty.
func BuildRequestHeadersForPolicy(rawURL string, policy Policy) map[string]string {
	headers := map[string]string{}
	if origin, ok := shouldAttachOriginHeader(rawURL, policy); ok {
		headers["Origin"] = origin
	}
	return headers
}

// CheckCORSResponsePolicy validates a cross-origin response against
// policy per spec.md §4.8.
func CheckCORSResponsePolicy(effectiveURL string, response Response, policy Policy) CorsResult {
	u, err := urlkit.Parse(effectiveURL)
	if err != nil {
		return CorsResult{Allowed: false, Violation: CorsResponseBlocked}
	}

	effectiveOrigin, effectiveOk := u.Origin()
	effectiveOk = effectiveOk && (u.Scheme == "http" || u.Scheme == "https")
	policyOrigin, policyOk := urlkit.HTTPOrigin(policy.Origin)
	if effectiveOk && policyOk && effectiveOrigin == policyOrigin {
		return CorsResult{Allowed: true, Violation: ViolationNone}
	}

	acaoKeys := response.Headers.MatchingKeys("Access-Control-Allow-Origin")
	if len(acaoKeys) != 1 {
		return CorsResult{Allowed: false, Violation: CorsResponseBlocked}
	}
	acaoValues := response.Headers[acaoKeys[0]]
	if len(acaoValues) != 1 {
		return CorsResult{Allowed: false, Violation: CorsResponseBlocked}
	}
	acao := acaoValues[0]
	if hasControlOrWhitespacePadding(acao) || strings.Contains(acao, ",") {
		return CorsResult{Allowed: false, Violation: CorsResponseBlocked}
	}

	credentialed := policy.CredentialsModeInclude

	var acaoOK bool
	switch {
	case acao == "*":
		acaoOK = !credentialed
	case acao == "null":
		acaoOK = policy.Origin == "null"
	default:
		acaoOrigin, ok := urlkit.HTTPOrigin(acao)
		acaoOK = ok && policyOk && acaoOrigin == policyOrigin
	}
	if !acaoOK {
		return CorsResult{Allowed: false, Violation: CorsResponseBlocked}
	}

	if credentialed {
		acacKeys := response.Headers.MatchingKeys("Access-Control-Allow-Credentials")
		switch len(acacKeys) {
		case 0:
			if policy.RequireACACForCredentialedCORS {
				return CorsResult{Allowed: false, Violation: CorsResponseBlocked}
			}
		case 1:
			values := response.Headers[acacKeys[0]]
			if len(values) != 1 || values[0] != "true" {
				return CorsResult{Allowed: false, Violation: CorsResponseBlocked}
			}
		default:
			return CorsResult{Allowed: false, Violation: CorsResponseBlocked}
		}
	}

	return CorsResult{Allowed: true, Violation: ViolationNone}
}

func hasControlOrWhitespacePadding(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == ' ' || s[len(s)-1] == ' ' {
		return true
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return true
		}
	}
	return false
}
