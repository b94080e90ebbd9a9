package requestpolicy

import "testing"

func TestEmptyURLRejected(t *testing.T) {
	r := CheckRequestPolicy("", Policy{})
	if r.Allowed || r.Violation != EmptyUrl {
		t.Errorf("got %+v, want EmptyUrl", r)
	}
}

func TestUnparsableURLFailsClosedAsUnsupportedScheme(t *testing.T) {
	r := CheckRequestPolicy("http://ex ample.com", Policy{})
	if r.Allowed || r.Violation != UnsupportedScheme {
		t.Errorf("got %+v, want UnsupportedScheme", r)
	}
}

func TestSchemeAllowListDefaultsIncludeFile(t *testing.T) {
	r := CheckRequestPolicy("file:///tmp/x.html", Policy{})
	if !r.Allowed {
		t.Errorf("expected default policy to allow file scheme, got %+v", r)
	}
	r = CheckRequestPolicy("ftp://example.com/x", Policy{})
	if r.Allowed || r.Violation != UnsupportedScheme {
		t.Errorf("expected ftp to be rejected by default, got %+v", r)
	}
}

func TestCrossOriginGateBlocksAndAllows(t *testing.T) {
	policy := Policy{Origin: "https://app.example.com"}
	blocked := CheckRequestPolicy("https://other.example.com/x", policy)
	if blocked.Allowed || blocked.Violation != CrossOriginBlocked {
		t.Errorf("expected cross-origin block, got %+v", blocked)
	}
	allowed := CheckRequestPolicy("https://app.example.com/y", policy)
	if !allowed.Allowed {
		t.Errorf("expected same-origin request to pass, got %+v", allowed)
	}
}

func TestEmptyPolicyOriginDisablesCrossOriginGate(t *testing.T) {
	r := CheckRequestPolicy("https://anywhere.example.com/x", Policy{})
	if !r.Allowed {
		t.Errorf("expected empty origin to disable the cross-origin gate, got %+v", r)
	}
}

func TestMalformedPolicyOriginFailsClosedOnCrossOriginGate(t *testing.T) {
	policy := Policy{Origin: "not a url"}
	r := CheckRequestPolicy("https://example.com/x", policy)
	if r.Allowed || r.Violation != CrossOriginBlocked {
		t.Errorf("expected malformed policy origin to fail closed, got %+v", r)
	}
}

func TestCSPPathTraversalBlocked(t *testing.T) {
	policy := Policy{
		Origin:             "https://api.example.com",
		AllowCrossOrigin:   true,
		EnforceConnectSrc:  true,
		ConnectSrcSources:  []string{"https://api.example.com/v1/"},
	}
	r := CheckRequestPolicy("https://api.example.com/v1/../admin", policy)
	if r.Allowed || r.Violation != CspConnectSrcBlocked {
		t.Errorf("got %+v, want CspConnectSrcBlocked", r)
	}
}

func TestCSPEncodedTraversalBlocked(t *testing.T) {
	policy := Policy{
		Origin:            "https://api.example.com",
		AllowCrossOrigin:  true,
		EnforceConnectSrc: true,
		ConnectSrcSources: []string{"https://api.example.com/v1/"},
	}
	r := CheckRequestPolicy("https://api.example.com/v1/%2e%2e/admin", policy)
	if r.Allowed || r.Violation != CspConnectSrcBlocked {
		t.Errorf("got %+v, want CspConnectSrcBlocked", r)
	}
}

func TestCSPWildcardSubdomainExcludesApex(t *testing.T) {
	policy := Policy{
		Origin:            "https://example.com",
		AllowCrossOrigin:  true,
		EnforceConnectSrc: true,
		ConnectSrcSources: []string{"*.example.com"},
	}
	apex := CheckRequestPolicy("https://example.com/", policy)
	if apex.Allowed {
		t.Errorf("expected wildcard subdomain source to exclude the apex, got %+v", apex)
	}
	sub := CheckRequestPolicy("https://cdn.example.com/", policy)
	if !sub.Allowed {
		t.Errorf("expected wildcard subdomain source to allow a subdomain, got %+v", sub)
	}
}

func TestCSPNoneMakesWholeListMatchNothing(t *testing.T) {
	policy := Policy{
		Origin:            "https://example.com",
		AllowCrossOrigin:  true,
		EnforceConnectSrc: true,
		ConnectSrcSources: []string{"'none'", "https://example.com"},
	}
	r := CheckRequestPolicy("https://example.com/", policy)
	if r.Allowed {
		t.Errorf("'none' present should block everything, got %+v", r)
	}
}

func TestBuildRequestHeadersOmitsOriginForSameOrigin(t *testing.T) {
	policy := Policy{Origin: "https://app.example.com"}
	headers := BuildRequestHeadersForPolicy("https://app.example.com/x", policy)
	if len(headers) != 0 {
		t.Errorf("expected no Origin header for same-origin request, got %v", headers)
	}
}

func TestBuildRequestHeadersAddsOriginForCrossOrigin(t *testing.T) {
	policy := Policy{Origin: "https://app.example.com", AllowCrossOrigin: true}
	headers := BuildRequestHeadersForPolicy("https://api.example.com/x", policy)
	if headers["Origin"] != "https://app.example.com" {
		t.Errorf("headers = %v, want Origin: https://app.example.com", headers)
	}
}

func TestBuildRequestHeadersOmitsOriginForMalformedPolicyOrigin(t *testing.T) {
	policy := Policy{Origin: "not a url", AllowCrossOrigin: true}
	headers := BuildRequestHeadersForPolicy("https://api.example.com/x", policy)
	if len(headers) != 0 {
		t.Errorf("expected empty headers for malformed policy origin, got %v", headers)
	}
}

func TestCredentialedCORSWildcardBlocked(t *testing.T) {
	policy := Policy{Origin: "https://app.example.com", CredentialsModeInclude: true}
	resp := Response{
		StatusCode: 200,
		Headers: Headers{
			"Access-Control-Allow-Origin":      []string{"*"},
			"Access-Control-Allow-Credentials": []string{"true"},
		},
	}
	r := CheckCORSResponsePolicy("https://api.example.com/x", resp, policy)
	if r.Allowed {
		t.Errorf("expected credentialed CORS with ACAO=* to be blocked, got %+v", r)
	}
}

func TestCORSNullOriginAllowedOnlyWithNullPolicyOrigin(t *testing.T) {
	nullPolicy := Policy{Origin: "null"}
	resp := Response{StatusCode: 200, Headers: Headers{"Access-Control-Allow-Origin": []string{"null"}}}
	r := CheckCORSResponsePolicy("https://api.example.com/x", resp, nullPolicy)
	if !r.Allowed {
		t.Errorf("expected null ACAO with null policy origin to be allowed, got %+v", r)
	}

	appPolicy := Policy{Origin: "https://app.example.com"}
	r2 := CheckCORSResponsePolicy("https://api.example.com/x", resp, appPolicy)
	if r2.Allowed {
		t.Errorf("expected null ACAO with a real policy origin to be blocked, got %+v", r2)
	}
}

func TestCORSSameOriginPassesWithoutACAO(t *testing.T) {
	policy := Policy{Origin: "https://app.example.com"}
	resp := Response{StatusCode: 200, Headers: Headers{}}
	r := CheckCORSResponsePolicy("https://app.example.com/x", resp, policy)
	if !r.Allowed {
		t.Errorf("expected same-origin response to pass without ACAO, got %+v", r)
	}
}

func TestCORSDuplicateCaseVariantACAORejected(t *testing.T) {
	policy := Policy{Origin: "https://app.example.com"}
	resp := Response{StatusCode: 200, Headers: Headers{
		"Access-Control-Allow-Origin": []string{"https://app.example.com"},
		"access-control-allow-origin": []string{"https://app.example.com"},
	}}
	r := CheckCORSResponsePolicy("https://api.example.com/x", resp, policy)
	if r.Allowed {
		t.Errorf("expected duplicate case-variant ACAO headers to be rejected, got %+v", r)
	}
}

func TestCORSMultiValuedACAORejected(t *testing.T) {
	policy := Policy{Origin: "https://app.example.com"}
	resp := Response{StatusCode: 200, Headers: Headers{
		"Access-Control-Allow-Origin": []string{"https://app.example.com, https://evil.example.com"},
	}}
	r := CheckCORSResponsePolicy("https://api.example.com/x", resp, policy)
	if r.Allowed {
		t.Errorf("expected comma-containing ACAO to be rejected, got %+v", r)
	}
}
