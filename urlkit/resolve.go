package urlkit

import "strings"

// IsAbsolute reports whether value looks like an absolute URL reference:
// it has its own valid scheme and is neither a protocol-relative
// ("//host/...") nor a Windows drive-letter path ("C:\...").
func IsAbsolute(value string) bool {
	if value == "" || strings.HasPrefix(value, "//") {
		return false
	}
	if looksLikeWindowsDrivePath(value) {
		return false
	}
	colon := strings.IndexByte(value, ':')
	if colon <= 0 {
		return false
	}
	if !isAlpha(value[0]) {
		return false
	}
	for i := 1; i < colon; i++ {
		if !isSchemeChar(value[i]) {
			return false
		}
	}
	return true
}

func looksLikeWindowsDrivePath(value string) bool {
	if len(value) < 2 || !isAlpha(value[0]) || value[1] != ':' {
		return false
	}
	return len(value) == 2 || value[2] == '/' || value[2] == '\\'
}

func extractScheme(value string) (string, bool) {
	colon := strings.IndexByte(value, ':')
	if colon <= 0 || !isAlpha(value[0]) {
		return "", false
	}
	for i := 1; i < colon; i++ {
		if !isSchemeChar(value[i]) {
			return "", false
		}
	}
	return toLowerASCII(value[:colon]), true
}

// ResolveURL implements spec §5.13's resolve_url, ported from
// original_source's resolve_url/resolve_http_reference/
// resolve_file_reference: it resolves a (possibly relative) reference
// against a base URL. http/https/ws/wss bases resolve against the
// origin + path; file bases resolve against the filesystem path.
func ResolveURL(baseURL, ref string) (string, error) {
	if ref == "" {
		return baseURL, nil
	}
	if IsAbsolute(ref) {
		return ref, nil
	}

	baseScheme, ok := extractScheme(baseURL)
	if !ok {
		return "", errf("base URL must include a valid scheme")
	}

	if strings.HasPrefix(ref, "//") {
		return baseScheme + ":" + ref, nil
	}

	switch baseScheme {
	case "http", "https", "ws", "wss":
		base, err := Parse(baseURL)
		if err != nil {
			return "", err
		}
		return resolveHTTPReference(base, ref), nil
	case "file":
		return resolveFileReference(baseURL, ref)
	default:
		return "", errf("unsupported base URL scheme: %s", baseScheme)
	}
}

type referenceParts struct {
	path, query, fragment string
}

func splitReference(ref string) referenceParts {
	var parts referenceParts
	withoutFragment := ref
	if i := strings.IndexByte(ref, '#'); i != -1 {
		parts.fragment = ref[i:]
		withoutFragment = ref[:i]
	}
	if i := strings.IndexByte(withoutFragment, '?'); i != -1 {
		parts.path = withoutFragment[:i]
		parts.query = withoutFragment[i:]
	} else {
		parts.path = withoutFragment
	}
	return parts
}

func directoryOf(path string) string {
	if path == "" {
		return ""
	}
	if path[len(path)-1] == '/' {
		return path
	}
	if i := strings.LastIndexByte(path, '/'); i != -1 {
		return path[:i+1]
	}
	return ""
}

func joinPaths(baseDir, relative string) string {
	if baseDir == "" {
		return relative
	}
	if relative == "" {
		return baseDir
	}
	if baseDir[len(baseDir)-1] == '/' {
		return baseDir + relative
	}
	return baseDir + "/" + relative
}

func resolveHTTPReference(base URL, ref string) string {
	origin, _ := base.Origin()
	if ref[0] == '#' {
		return origin + base.Path + queryString(base.Query) + ref
	}

	parts := splitReference(ref)
	basePath := base.Path
	if basePath == "" {
		basePath = "/"
	}

	if parts.path == "" {
		query := parts.query
		if query == "" {
			query = queryString(base.Query)
		}
		return origin + basePath + query + parts.fragment
	}

	var resolvedPath string
	if parts.path[0] == '/' {
		resolvedPath, _ = NormalizePath(parts.path)
	} else {
		baseDir := directoryOf(basePath)
		if baseDir == "" {
			baseDir = "/"
		}
		resolvedPath, _ = NormalizePath(joinPaths(baseDir, parts.path))
	}
	if resolvedPath == "" || resolvedPath[0] != '/' {
		resolvedPath = "/" + resolvedPath
	}
	return origin + resolvedPath + parts.query + parts.fragment
}

func queryString(q string) string {
	if q == "" {
		return ""
	}
	return "?" + q
}

func resolveFileReference(baseURL, ref string) (string, error) {
	basePath, err := FileURLToPath(baseURL)
	if err != nil {
		return "", err
	}
	if ref[0] == '#' {
		return stripFragment(baseURL) + ref, nil
	}

	parts := splitReference(ref)
	if parts.path == "" {
		return PathToFileURL(basePath) + parts.query + parts.fragment, nil
	}

	var resolvedPath string
	if parts.path[0] == '/' {
		resolvedPath, _ = NormalizePath(parts.path)
	} else {
		resolvedPath, _ = NormalizePath(joinPaths(directoryOf(basePath), parts.path))
	}
	if resolvedPath == "" {
		resolvedPath = "/"
	}
	return PathToFileURL(resolvedPath) + parts.query + parts.fragment, nil
}

func stripFragment(value string) string {
	if i := strings.IndexByte(value, '#'); i != -1 {
		return value[:i]
	}
	return value
}
