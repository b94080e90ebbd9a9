package urlkit

import "testing"

func TestParseValidURLs(t *testing.T) {
	cases := []struct {
		raw      string
		scheme   string
		host     string
		hasPort  bool
		port     uint16
		path     string
	}{
		{"http://example.com", "http", "example.com", false, 0, "/"},
		{"https://example.com:8443/a/b", "https", "example.com", true, 8443, "/a/b"},
		{"http://[::1]:8080/", "http", "[::1]", true, 8080, "/"},
		{"https://EXAMPLE.com/PATH", "https", "example.com", false, 0, "/PATH"},
	}
	for _, c := range cases {
		u, err := Parse(c.raw)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", c.raw, err)
		}
		if u.Scheme != c.scheme || u.Host != c.host || u.HasPort != c.hasPort || u.Port != c.port || u.Path != c.path {
			t.Errorf("Parse(%q) = %+v, want scheme=%s host=%s hasPort=%v port=%d path=%s",
				c.raw, u, c.scheme, c.host, c.hasPort, c.port, c.path)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"://missing-scheme",
		"http://",
		"http://host:",
		"http://host:0/",
		"http://host:70000/",
		"http://ho%73t/",
		"http://2130706433/",
		"http://256.1.1.1/",
		"http://01.1.1.1/",
		"http://a..b/",
		"http://user@host/",
		"http://host\\evil/",
		"http://[::1/",
	}
	for _, raw := range cases {
		if _, err := Parse(raw); err == nil {
			t.Errorf("Parse(%q) expected error, got none", raw)
		}
	}
}

func TestCanonicalOriginOmitsDefaultPort(t *testing.T) {
	cases := map[string]string{
		"http://example.com:80/x":   "http://example.com",
		"https://example.com:443/x": "https://example.com",
		"https://example.com:8443/": "https://example.com:8443",
		"ws://example.com:80/":      "ws://example.com",
	}
	for raw, want := range cases {
		got, ok := CanonicalOrigin(raw)
		if !ok {
			t.Fatalf("CanonicalOrigin(%q): expected ok", raw)
		}
		if got != want {
			t.Errorf("CanonicalOrigin(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCanonicalOriginOpaqueScheme(t *testing.T) {
	for _, raw := range []string{"data:text/plain,hi", "javascript:alert(1)"} {
		if _, ok := CanonicalOrigin(raw); ok {
			t.Errorf("CanonicalOrigin(%q) expected not ok", raw)
		}
	}
}

func TestCanonicalOriginIdempotent(t *testing.T) {
	for _, raw := range []string{"http://example.com:80/x", "https://cdn.example.com/y?z=1"} {
		o1, ok1 := CanonicalOrigin(raw)
		if !ok1 {
			t.Fatalf("CanonicalOrigin(%q): expected ok", raw)
		}
		o2, ok2 := CanonicalOrigin(o1)
		if !ok2 || o1 != o2 {
			t.Errorf("CanonicalOrigin not idempotent for %q: %q vs %q", raw, o1, o2)
		}
	}
}

func TestSameOrigin(t *testing.T) {
	if !SameOrigin("https://example.com", "https://example.com:443/a/b") {
		t.Error("expected same origin")
	}
	if SameOrigin("https://example.com", "http://example.com") {
		t.Error("expected different origin across schemes")
	}
	if SameOrigin("not a url", "https://example.com") {
		t.Error("unparsable side must not be treated as same-origin")
	}
}

func TestHTTPOriginRejectsNonHTTP(t *testing.T) {
	if _, ok := HTTPOrigin("ws://example.com"); ok {
		t.Error("expected ws scheme to be rejected")
	}
	if _, ok := HTTPOrigin("https://example.com/path"); ok {
		t.Error("expected a full URL with a path to be rejected as an origin")
	}
	if got, ok := HTTPOrigin("https://example.com"); !ok || got != "https://example.com" {
		t.Errorf("HTTPOrigin(https://example.com) = %q, %v", got, ok)
	}
}

func TestNormalizePathTraversal(t *testing.T) {
	cases := map[string]string{
		"/v1/../admin":     "/admin",
		"/v1/%2e%2e/admin": "/admin",
		"/a/./b":           "/a/b",
		"/a/b/":            "/a/b/",
		"/%41":             "/A",
	}
	for in, want := range cases {
		got, err := NormalizePath(in)
		if err != nil {
			t.Fatalf("NormalizePath(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		base, ref, want string
	}{
		{"https://example.com/a/b", "c", "https://example.com/a/c"},
		{"https://example.com/a/b", "/c", "https://example.com/c"},
		{"https://example.com/a/b", "https://other.com/x", "https://other.com/x"},
		{"https://example.com/a/b", "//cdn.example.com/x", "https://cdn.example.com/x"},
		{"https://example.com/a/b?x=1", "", "https://example.com/a/b?x=1"},
		{"https://example.com/a/b", "#frag", "https://example.com/a/b#frag"},
	}
	for _, c := range cases {
		got, err := ResolveURL(c.base, c.ref)
		if err != nil {
			t.Fatalf("ResolveURL(%q, %q): %v", c.base, c.ref, err)
		}
		if got != c.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", c.base, c.ref, got, c.want)
		}
	}
}

func TestFileURLRoundTrip(t *testing.T) {
	path, err := FileURLToPath("file:///home/user/page.html")
	if err != nil {
		t.Fatalf("FileURLToPath: %v", err)
	}
	if path != "/home/user/page.html" {
		t.Errorf("FileURLToPath = %q", path)
	}

	winPath, err := FileURLToPath("file:///C:/docs/page.html")
	if err != nil {
		t.Fatalf("FileURLToPath (windows): %v", err)
	}
	if winPath != "C:/docs/page.html" {
		t.Errorf("FileURLToPath (windows) = %q", winPath)
	}

	if _, err := FileURLToPath("file://evilhost/x"); err == nil {
		t.Error("expected non-localhost file URL host to be rejected")
	}

	url := PathToFileURL("/home/user/page.html")
	if url != "file:///home/user/page.html" {
		t.Errorf("PathToFileURL = %q", url)
	}
}
