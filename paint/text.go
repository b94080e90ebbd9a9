package paint

import (
	"strings"

	"github.com/marrowdock/vellum/layout"
)

// RenderToText serializes every visible text run in document order,
// naively re-wrapping at lineWidth characters.
func RenderToText(root *layout.Box, lineWidth int) string {
	var lines []string
	var walk func(b *layout.Box)
	walk = func(b *layout.Box) {
		if b == nil {
			return
		}
		for _, t := range b.TextRuns {
			lines = append(lines, wrapNaive(t.Text, lineWidth)...)
		}
		for _, c := range b.Children {
			walk(c)
		}
	}
	walk(root)
	return strings.Join(lines, "\n")
}

func wrapNaive(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var cur strings.Builder
	for _, w := range words {
		switch {
		case cur.Len() == 0:
			cur.WriteString(w)
		case cur.Len()+1+len(w) <= width:
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
