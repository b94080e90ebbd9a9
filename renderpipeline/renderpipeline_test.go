package renderpipeline

import (
	"testing"

	"github.com/marrowdock/vellum/cssom"
	"github.com/marrowdock/vellum/htmldom"
)

func build(html, css string, w, h int) *Pipeline {
	doc := htmldom.Parse(html)
	sheet := cssom.Parse(css)
	return New(doc.Root, sheet, w, h)
}

func TestConstructionPerformsOneRenderPass(t *testing.T) {
	p := build(`<div>hi</div>`, ``, 400, 300)
	if p.RenderCount != 1 {
		t.Errorf("RenderCount = %d, want 1", p.RenderCount)
	}
	if p.Layout == nil {
		t.Fatal("expected layout to be populated after construction")
	}
	if len(p.Canvas.Pixels) != 400*300*4 {
		t.Errorf("canvas pixel length = %d, want %d", len(p.Canvas.Pixels), 400*300*4)
	}
}

func TestRerenderIncrementsByExactlyOne(t *testing.T) {
	p := build(`<div>hi</div>`, ``, 400, 300)
	for i := 0; i < 5; i++ {
		p.DOM.Children[0].Attrs = append(p.DOM.Children[0].Attrs, htmldom.Attr{Name: "data-x", Value: "y"})
	}
	p.Rerender()
	if p.RenderCount != 2 {
		t.Errorf("RenderCount = %d, want 2 after one Rerender regardless of mutation count", p.RenderCount)
	}
}

func TestOneHundredConsecutiveRendersProduceIdenticalCanvases(t *testing.T) {
	p := build(`<div><span>text</span></div>`, `div{padding:5px;}span{font-size:14px;}`, 800, 600)
	first := append([]byte(nil), p.Canvas.Pixels...)
	for i := 0; i < 100; i++ {
		p.Rerender()
		for j := range first {
			if p.Canvas.Pixels[j] != first[j] {
				t.Fatalf("render %d diverged at pixel %d", i, j)
			}
		}
	}
	if p.RenderCount != 101 {
		t.Errorf("RenderCount = %d, want 101", p.RenderCount)
	}
}

func TestIdenticalMutationSequenceProducesByteIdenticalCanvases(t *testing.T) {
	mutate := func(p *Pipeline) {
		body := p.DOM.Children[0]
		body.Children = append(body.Children, &htmldom.Node{
			Type: htmldom.ElementNode,
			Tag:  "p",
			Children: []*htmldom.Node{
				{Type: htmldom.TextNode, Data: "appended"},
			},
		})
		p.Rerender()
	}

	p1 := build(`<div><span>hello</span></div>`, `div{padding:3px;}`, 640, 480)
	p2 := build(`<div><span>hello</span></div>`, `div{padding:3px;}`, 640, 480)

	mutate(p1)
	mutate(p2)

	if len(p1.Canvas.Pixels) != len(p2.Canvas.Pixels) {
		t.Fatal("canvas sizes diverged")
	}
	for i := range p1.Canvas.Pixels {
		if p1.Canvas.Pixels[i] != p2.Canvas.Pixels[i] {
			t.Fatalf("pixel %d diverged between pipelines after identical mutation", i)
		}
	}
	if p1.FrameFingerprint() != p2.FrameFingerprint() {
		t.Error("frame fingerprints diverged for byte-identical canvases")
	}
}

func TestFrameFingerprintChangesWithContent(t *testing.T) {
	p := build(`<div>a</div>`, ``, 200, 200)
	before := p.FrameFingerprint()

	p.DOM.Children[0].Children[0].Data = "completely different text that changes layout"
	p.Rerender()
	after := p.FrameFingerprint()

	if before == after {
		t.Error("expected fingerprint to change after content mutation")
	}
}
