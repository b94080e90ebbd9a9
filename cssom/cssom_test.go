package cssom

import (
	"errors"
	"testing"

	"github.com/marrowdock/vellum/htmldom"
)

func TestParseBasicRule(t *testing.T) {
	sheet := Parse(`div.content { color: red; font-size: 14px; }`)
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules))
	}
	rule := sheet.Rules[0]
	if len(rule.Selectors) != 1 || rule.Selectors[0].Tag != "div" || rule.Selectors[0].Classes[0] != "content" {
		t.Errorf("unexpected selector: %+v", rule.Selectors)
	}
	if len(rule.Declarations) != 2 || rule.Declarations[0].Property != "color" || rule.Declarations[0].Value != "red" {
		t.Errorf("unexpected declarations: %+v", rule.Declarations)
	}
}

func TestParseSelectorList(t *testing.T) {
	sheet := Parse(`h1, .title, #main { margin: 0; }`)
	if len(sheet.Rules) != 1 || len(sheet.Rules[0].Selectors) != 3 {
		t.Fatalf("expected 1 rule with 3 selectors, got %+v", sheet.Rules)
	}
}

func TestParseSkipsUnknownAtRules(t *testing.T) {
	sheet := Parse(`@import url("x.css"); @media screen { div { color: red; } } p { color: blue; }`)
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected only the trailing rule to survive, got %+v", sheet.Rules)
	}
	if sheet.Rules[0].Selectors[0].Tag != "p" {
		t.Errorf("unexpected surviving rule: %+v", sheet.Rules[0])
	}
}

func TestParseStripsComments(t *testing.T) {
	sheet := Parse(`/* comment */ div { /* inner */ color: red; }`)
	if len(sheet.Rules) != 1 || len(sheet.Rules[0].Declarations) != 1 {
		t.Fatalf("comment stripping broke parsing: %+v", sheet.Rules)
	}
}

func TestSpecificityOrdering(t *testing.T) {
	id, class, typ := Selector{ID: "x"}.Specificity()
	if id != 1 || class != 0 || typ != 0 {
		t.Errorf("id selector specificity = %d,%d,%d", id, class, typ)
	}
	id, class, typ = Selector{Tag: "div", Classes: []string{"a", "b"}}.Specificity()
	if id != 0 || class != 2 || typ != 1 {
		t.Errorf("compound selector specificity = %d,%d,%d", id, class, typ)
	}
}

func TestMatchesUniversalAndCompound(t *testing.T) {
	doc := htmldom.Parse(`<div id="main" class="box active"></div>`)
	div := doc.Root.Children[0]

	if !Matches(Selector{Universal: true}, div) {
		t.Error("universal selector should match any element")
	}
	if !Matches(Selector{Tag: "div", ID: "main", Classes: []string{"box", "active"}}, div) {
		t.Error("compound selector should match")
	}
	if Matches(Selector{Tag: "span"}, div) {
		t.Error("wrong tag should not match")
	}
	if Matches(Selector{Classes: []string{"missing"}}, div) {
		t.Error("missing class should not match")
	}
}

func TestExtractRefsOrderAndFiltering(t *testing.T) {
	doc := htmldom.Parse(`<head>
		<style>a{color:red;}</style>
		<link rel="stylesheet" href="a.css">
		<link rel="icon" href="favicon.ico">
		<link rel="stylesheet" href="b.css">
	</head>`)
	refs := ExtractRefs(doc.Root)
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d: %+v", len(refs), refs)
	}
	if refs[0].Tag != "style" || refs[1].Href != "a.css" || refs[2].Href != "b.css" {
		t.Errorf("unexpected ref order: %+v", refs)
	}
}

func TestLoadLinkedCSSOrderAndFailure(t *testing.T) {
	doc := htmldom.Parse(`<head>
		<style>b{color:green;}</style>
		<link rel="stylesheet" href="ok.css">
		<link rel="stylesheet" href="missing.css">
	</head>`)

	fetch := func(href string) (string, error) {
		if href == "ok.css" {
			return `c{color:blue;}`, nil
		}
		return "", errors.New("not found")
	}

	result := LoadLinkedCSS(doc.Root, `a{color:red;}`, fetch)
	if len(result.Merged.Rules) != 3 {
		t.Fatalf("expected 3 merged rules, got %d: %+v", len(result.Merged.Rules), result.Merged.Rules)
	}
	order := []string{"a", "b", "c"}
	for i, want := range order {
		if result.Merged.Rules[i].Selectors[0].Tag != want {
			t.Errorf("rule %d tag = %s, want %s", i, result.Merged.Rules[i].Selectors[0].Tag, want)
		}
	}
	if len(result.FailedURLs) != 1 || result.FailedURLs[0] != "missing.css" {
		t.Errorf("expected missing.css to be recorded as failed, got %v", result.FailedURLs)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
}
