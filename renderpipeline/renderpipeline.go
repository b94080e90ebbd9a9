// Package renderpipeline owns one document's DOM, stylesheet, and
// canvas, and rebuilds the derived layers (cascade → layout → paint)
// on demand. It generalizes the teacher's domwatch/mutation.Snapshot
// idea — an immutable HTML asset identified by a SHA-256 fingerprint —
// to a frame fingerprint taken over the rendered canvas's pixels.
package renderpipeline

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/marrowdock/vellum/cssom"
	"github.com/marrowdock/vellum/htmldom"
	"github.com/marrowdock/vellum/layout"
	"github.com/marrowdock/vellum/paint"
	"github.com/marrowdock/vellum/style"
)

// Pipeline owns {dom, stylesheet, viewport_w, viewport_h, layout,
// canvas, render_count}. Not safe for concurrent use.
type Pipeline struct {
	DOM           *htmldom.Node
	Stylesheet    cssom.Stylesheet
	ViewportW     int
	ViewportH     int
	Layout        *layout.Box
	Canvas        paint.Canvas
	RenderCount   int
}

// New constructs a pipeline and performs one full pass: cascade,
// layout, then paint. RenderCount becomes 1.
func New(dom *htmldom.Node, sheet cssom.Stylesheet, viewportW, viewportH int) *Pipeline {
	p := &Pipeline{
		DOM:        dom,
		Stylesheet: sheet,
		ViewportW:  viewportW,
		ViewportH:  viewportH,
	}
	p.render()
	p.RenderCount = 1
	return p
}

// Rerender recomputes cascade → layout → paint from the current DOM
// and stylesheet and increments RenderCount by exactly 1, regardless
// of how many DOM mutations happened since the last render.
func (p *Pipeline) Rerender() {
	p.render()
	p.RenderCount++
}

func (p *Pipeline) render() {
	tree := style.Cascade(p.DOM, p.Stylesheet)
	box := layout.Layout(p.DOM, tree, p.ViewportW)
	canvas := paint.RenderToCanvas(box, p.ViewportW, p.ViewportH)
	p.Layout = box
	p.Canvas = canvas
}

// SetStylesheet replaces the stylesheet in place. It does not trigger
// a render — call Rerender to pick it up.
func (p *Pipeline) SetStylesheet(sheet cssom.Stylesheet) {
	p.Stylesheet = sheet
}

// FrameFingerprint returns the SHA-256 hex digest of the current
// canvas's pixel buffer, mirroring mutation.HashHTML's
// content-addressed-snapshot shape applied to a rendered frame instead
// of serialized HTML.
func (p *Pipeline) FrameFingerprint() string {
	sum := sha256.Sum256(p.Canvas.Pixels)
	return hex.EncodeToString(sum[:])
}
