// Package paint rasterizes a layout tree into a pixel buffer. Text is
// drawn with golang.org/x/image/font/basicfont's fixed 7x13 face — the
// same face layout.CharWidthPx is calibrated against, so wrap points
// computed during layout and glyph placement here never disagree.
package paint

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/marrowdock/vellum/layout"
)

// Canvas is the rasterized output: row-major RGBA pixels.
type Canvas struct {
	Width  int
	Height int
	Pixels []byte
}

// RenderToCanvas paints a background fill, then each box's background
// color, border, and text, in document order.
func RenderToCanvas(root *layout.Box, w, h int) Canvas {
	img := newRGBACanvas(w, h)
	fillBackground(img, resolveBackground(root))
	paintBox(img, root)
	return toCanvas(img)
}

func newRGBACanvas(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func fillBackground(img *image.RGBA, c color.RGBA) {
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func toCanvas(img *image.RGBA) Canvas {
	return Canvas{
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
		Pixels: append([]byte(nil), img.Pix...),
	}
}

func resolveBackground(root *layout.Box) color.RGBA {
	if root != nil {
		if bg, ok := root.Style.Get("background-color"); ok {
			if c, ok2 := parseColor(bg); ok2 {
				return c
			}
		}
		for _, child := range root.Children {
			if bg, ok := child.Style.Get("background-color"); ok {
				if c, ok2 := parseColor(bg); ok2 {
					return c
				}
			}
		}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

func paintBox(img *image.RGBA, box *layout.Box) {
	if box == nil {
		return
	}
	if bg, ok := box.Style.Get("background-color"); ok {
		if c, ok2 := parseColor(bg); ok2 {
			fillRect(img, box.ContentRect, c)
		}
	}
	if borderColor, ok := box.Style.Get("border-color"); ok {
		if c, ok2 := parseColor(borderColor); ok2 {
			drawBorder(img, box, c)
		}
	}
	drawText(img, box)
	for _, c := range box.Children {
		paintBox(img, c)
	}
}

func fillRect(img *image.RGBA, r layout.Rect, c color.RGBA) {
	bounds := img.Bounds()
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H
	if x0 < bounds.Min.X {
		x0 = bounds.Min.X
	}
	if y0 < bounds.Min.Y {
		y0 = bounds.Min.Y
	}
	if x1 > bounds.Max.X {
		x1 = bounds.Max.X
	}
	if y1 > bounds.Max.Y {
		y1 = bounds.Max.Y
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func borderRect(box *layout.Box) layout.Rect {
	r := box.ContentRect
	return layout.Rect{
		X: r.X - box.Padding.Left - box.Border.Left,
		Y: r.Y - box.Padding.Top - box.Border.Top,
		W: r.W + box.Padding.Left + box.Padding.Right + box.Border.Left + box.Border.Right,
		H: r.H + box.Padding.Top + box.Padding.Bottom + box.Border.Top + box.Border.Bottom,
	}
}

func drawBorder(img *image.RGBA, box *layout.Box, c color.RGBA) {
	thickness := box.Border.Top
	if thickness <= 0 {
		return
	}
	r := borderRect(box)
	fillRect(img, layout.Rect{X: r.X, Y: r.Y, W: r.W, H: thickness}, c)
	fillRect(img, layout.Rect{X: r.X, Y: r.Y + r.H - thickness, W: r.W, H: thickness}, c)
	fillRect(img, layout.Rect{X: r.X, Y: r.Y, W: thickness, H: r.H}, c)
	fillRect(img, layout.Rect{X: r.X + r.W - thickness, Y: r.Y, W: thickness, H: r.H}, c)
}

func drawText(img *image.RGBA, box *layout.Box) {
	if len(box.TextRuns) == 0 {
		return
	}
	textColor := color.RGBA{A: 255}
	if v, ok := box.Style.Get("color"); ok {
		if c, ok2 := parseColor(v); ok2 {
			textColor = c
		}
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: textColor},
		Face: basicfont.Face7x13,
	}
	baseline := basicfont.Face7x13.Ascent
	for _, run := range box.TextRuns {
		drawer.Dot = fixed.P(run.X, run.Y+baseline)
		drawer.DrawString(run.Text)
	}
}
