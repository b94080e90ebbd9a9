package cssom

import (
	"fmt"
	"strings"

	"github.com/marrowdock/vellum/htmldom"
)

// Ref describes one source of CSS found while scanning a document.
type Ref struct {
	Tag        string // "style" or "link"
	InlineText string // populated for Tag == "style"
	Href       string // populated for Tag == "link"
}

// ExtractRefs scans dom for <style> text and <link rel="stylesheet">
// references, in document order. Other <link> rel values are ignored.
func ExtractRefs(root *htmldom.Node) []Ref {
	var refs []Ref
	htmldom.Walk(root, func(n *htmldom.Node) {
		if n.Type != htmldom.ElementNode {
			return
		}
		switch n.Tag {
		case "style":
			refs = append(refs, Ref{Tag: "style", InlineText: collectText(n)})
		case "link":
			if rel, ok := n.Attr("rel"); ok && strings.EqualFold(rel, "stylesheet") {
				href, _ := n.Attr("href")
				refs = append(refs, Ref{Tag: "link", Href: href})
			}
		}
	})
	return refs
}

func collectText(n *htmldom.Node) string {
	var b strings.Builder
	for _, c := range n.Children {
		if c.Type == htmldom.TextNode {
			b.WriteString(c.Data)
		} else {
			b.WriteString(collectText(c))
		}
	}
	return b.String()
}

// Fetcher resolves a stylesheet href to its text, or reports failure.
// It stands in for the out-of-core network fetch collaborator.
type Fetcher func(href string) (string, error)

// LoadResult is the outcome of resolving every linked stylesheet.
type LoadResult struct {
	Merged     Stylesheet
	Warnings   []string
	FailedURLs []string
}

// LoadLinkedCSS parses inlineCSS, then every <style> block, then every
// successfully fetched <link rel="stylesheet">, in that order, and
// merges them into one Stylesheet. A <link> that fails to resolve
// contributes a warning and a FailedURLs entry but does not abort the
// merge — the inline and <style> rules still apply.
func LoadLinkedCSS(root *htmldom.Node, inlineCSS string, fetch Fetcher) LoadResult {
	var result LoadResult

	result.Merged.Rules = append(result.Merged.Rules, Parse(inlineCSS).Rules...)

	refs := ExtractRefs(root)
	for _, ref := range refs {
		if ref.Tag != "style" {
			continue
		}
		result.Merged.Rules = append(result.Merged.Rules, Parse(ref.InlineText).Rules...)
	}
	for _, ref := range refs {
		if ref.Tag != "link" {
			continue
		}
		text, err := fetch(ref.Href)
		if err != nil {
			result.FailedURLs = append(result.FailedURLs, ref.Href)
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to load stylesheet %q: %s", ref.Href, err))
			continue
		}
		result.Merged.Rules = append(result.Merged.Rules, Parse(text).Rules...)
	}
	return result
}
