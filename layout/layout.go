// Package layout turns a styled DOM into a tree of block/inline boxes:
// display:none subtrees are pruned, block boxes stack vertically at
// the containing block's content edge, and inline content is broken
// into word-wrapped text runs. Given identical DOM, stylesheet, and
// viewport width, Layout is bit-exact — there is no clock, no
// randomness, and no cross-call state.
package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marrowdock/vellum/htmldom"
	"github.com/marrowdock/vellum/style"
)

// CharWidthPx is the fixed character-width approximation used for text
// wrapping. It matches golang.org/x/image/font/basicfont.Face7x13's
// glyph advance, the same face paint.RenderToCanvas draws with, so
// wrap points here and glyph placement in paint never disagree.
const CharWidthPx = 7

// LineHeightPx is the default line box height when no line-height
// style is set.
const LineHeightPx = 13

// BoxType is the closed variant a LayoutBox belongs to.
type BoxType int

const (
	BlockBox BoxType = iota
	InlineBox
	AnonymousBox
)

// Rect is an axis-aligned box in CSS pixel units.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) falls within the box's content rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// EdgeSizes holds per-side pixel sizes (for padding, margin, border).
type EdgeSizes struct {
	Top, Right, Bottom, Left int
}

// TextRun is one wrapped line of text positioned within its box.
type TextRun struct {
	Text string
	X, Y int
}

// Box is one node of the layout tree.
type Box struct {
	Element     *htmldom.Node
	Type        BoxType
	ContentRect Rect
	Padding     EdgeSizes
	Margin      EdgeSizes
	Border      EdgeSizes
	Children    []*Box
	TextRuns    []TextRun
	Style       style.Computed
}

// Contains reports whether (x, y) falls within the box's content rect.
func (b *Box) Contains(x, y int) bool {
	return b.ContentRect.Contains(x, y)
}

// Layout builds a layout tree for root's element children against a
// viewport of the given width. display:none subtrees (and their
// descendants) are absent from the result entirely.
func Layout(root *htmldom.Node, tree style.Tree, viewportWidth int) *Box {
	rootBox := &Box{Type: BlockBox, ContentRect: Rect{X: 0, Y: 0, W: viewportWidth}}
	y := 0
	for _, c := range root.Children {
		if c.Type != htmldom.ElementNode {
			continue
		}
		childY := y
		child := layoutElement(c, tree, viewportWidth, 0, &childY)
		if child != nil {
			rootBox.Children = append(rootBox.Children, child)
			y = childY
		}
	}
	rootBox.ContentRect.H = y
	return rootBox
}

func layoutElement(n *htmldom.Node, tree style.Tree, containingWidth, x int, y *int) *Box {
	computed := tree.Of(n)
	if computed.GetOr("display", "") == "none" {
		return nil
	}

	padding := edgeFromStyle(computed, "padding")
	margin := edgeFromStyle(computed, "margin")
	border := edgeFromStyle(computed, "border-width")

	width := containingWidth - margin.Left - margin.Right - border.Left - border.Right - padding.Left - padding.Right
	if w, ok := computed.Get("width"); ok {
		if px, ok2 := parsePixels(w); ok2 {
			width = px
		}
	}
	if width < 0 {
		width = 0
	}

	top := *y + margin.Top
	contentX := x + margin.Left + border.Left + padding.Left
	contentY := top + border.Top + padding.Top

	box := &Box{Element: n, Type: BlockBox, Style: computed, Padding: padding, Margin: margin, Border: border}
	innerY := contentY
	var inlineBuf []string

	flushInline := func() {
		if len(inlineBuf) == 0 {
			return
		}
		for _, line := range wrapText(strings.Join(inlineBuf, " "), width) {
			box.TextRuns = append(box.TextRuns, TextRun{Text: line, X: contentX, Y: innerY})
			innerY += lineHeightPx(computed)
		}
		inlineBuf = nil
	}

	for _, c := range n.Children {
		switch c.Type {
		case htmldom.TextNode:
			inlineBuf = append(inlineBuf, c.Data)
		case htmldom.ElementNode:
			childComputed := tree.Of(c)
			if childComputed.GetOr("display", "") == "none" {
				continue
			}
			if isInlineDisplay(c, childComputed) {
				inlineBuf = append(inlineBuf, collectInlineText(c, tree)...)
			} else {
				flushInline()
				childY := innerY
				childBox := layoutElement(c, tree, width, contentX, &childY)
				if childBox != nil {
					box.Children = append(box.Children, childBox)
					innerY = childY
				}
			}
		}
	}
	flushInline()

	box.ContentRect = Rect{X: contentX, Y: contentY, W: width, H: innerY - contentY}
	*y = innerY + padding.Bottom + border.Bottom + margin.Bottom
	return box
}

func collectInlineText(n *htmldom.Node, tree style.Tree) []string {
	var out []string
	for _, c := range n.Children {
		switch c.Type {
		case htmldom.TextNode:
			out = append(out, c.Data)
		case htmldom.ElementNode:
			if tree.Of(c).GetOr("display", "") == "none" {
				continue
			}
			out = append(out, collectInlineText(c, tree)...)
		}
	}
	return out
}

var blockTags = map[string]bool{
	"div": true, "p": true, "body": true, "html": true, "header": true,
	"footer": true, "section": true, "article": true, "ul": true, "ol": true,
	"li": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "table": true, "form": true, "nav": true, "main": true,
}

func defaultDisplay(tag string) string {
	if blockTags[tag] {
		return "block"
	}
	return "inline"
}

func isInlineDisplay(n *htmldom.Node, c style.Computed) bool {
	d, ok := c.Get("display")
	if !ok {
		d = defaultDisplay(n.Tag)
	}
	return d == "inline"
}

func parsePixels(v string) (int, bool) {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "px")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func edgeFromStyle(c style.Computed, prop string) EdgeSizes {
	if v, ok := c.Get(prop); ok {
		if px, ok2 := parsePixels(v); ok2 {
			return EdgeSizes{Top: px, Right: px, Bottom: px, Left: px}
		}
	}
	return EdgeSizes{}
}

func lineHeightPx(c style.Computed) int {
	if v, ok := c.Get("line-height"); ok {
		if px, ok2 := parsePixels(v); ok2 {
			return px
		}
	}
	return LineHeightPx
}

func wrapText(text string, widthPx int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	charsPerLine := widthPx / CharWidthPx
	if charsPerLine < 1 {
		charsPerLine = 1
	}
	words := strings.Fields(text)
	var lines []string
	var cur strings.Builder
	for _, w := range words {
		switch {
		case cur.Len() == 0:
			cur.WriteString(w)
		case cur.Len()+1+len(w) <= charsPerLine:
			cur.WriteByte(' ')
			cur.WriteString(w)
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(w)
		}
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// Serialize produces a canonical textual dump of the layout tree,
// sufficient to detect any geometric or style change between two runs.
func Serialize(box *Box) string {
	var b strings.Builder
	serializeBox(&b, box, 0)
	return b.String()
}

func serializeBox(b *strings.Builder, box *Box, depth int) {
	indent := strings.Repeat("  ", depth)
	tag := "root"
	if box.Element != nil {
		tag = box.Element.Tag
	}
	r := box.ContentRect
	fmt.Fprintf(b, "%s%s rect=(%d,%d,%d,%d)\n", indent, tag, r.X, r.Y, r.W, r.H)
	for _, t := range box.TextRuns {
		fmt.Fprintf(b, "%s  text@(%d,%d) %q\n", indent, t.X, t.Y, t.Text)
	}
	for _, c := range box.Children {
		serializeBox(b, c, depth+1)
	}
}
