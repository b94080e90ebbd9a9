package paint

import (
	"fmt"
	"os"
	"time"

	"github.com/marrowdock/vellum/layout"
)

// TraceEntry is one recorded stage of a traced render.
type TraceEntry struct {
	Stage              string
	ElapsedSincePrevMs float64
}

// RenderToCanvasTraced renders exactly like RenderToCanvas, additionally
// appending four TraceEntry records in order: CanvasInit,
// BackgroundResolve, Paint, Complete. Pixel output is identical to the
// non-traced render for the same input.
func RenderToCanvasTraced(root *layout.Box, w, h int, trace *[]TraceEntry) Canvas {
	mark := time.Now()
	record := func(stage string) {
		now := time.Now()
		*trace = append(*trace, TraceEntry{Stage: stage, ElapsedSincePrevMs: now.Sub(mark).Seconds() * 1000})
		mark = now
	}

	img := newRGBACanvas(w, h)
	record("CanvasInit")

	bg := resolveBackground(root)
	fillBackground(img, bg)
	record("BackgroundResolve")

	paintBox(img, root)
	record("Paint")

	canvas := toCanvas(img)
	record("Complete")

	return canvas
}

// TracesReproducibleWith reports whether two render traces agree on
// stage sequence. Elapsed times are informational and not compared.
func TracesReproducibleWith(a, b []TraceEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Stage != b[i].Stage {
			return false
		}
	}
	return true
}

// WriteRenderTrace writes one line per entry ("stage=<name>
// elapsed_ms=<n>") to path, standing in for the out-of-core trace
// writer collaborator. Returns false on any I/O failure.
func WriteRenderTrace(trace []TraceEntry, path string) bool {
	f, err := os.Create(path)
	if err != nil {
		return false
	}
	defer f.Close()
	for _, e := range trace {
		if _, err := fmt.Fprintf(f, "stage=%s elapsed_ms=%.3f\n", e.Stage, e.ElapsedSincePrevMs); err != nil {
			return false
		}
	}
	return true
}
