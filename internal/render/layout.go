// Package render holds the raster helpers the window uses to lay out and
// draw images: letterboxing, scaling, thumbnail grids and drop shadows.
package render

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Fit returns the largest rectangle with the aspect ratio of src that fits in
// box, centred. This is the letterboxed placement used for result images.
func Fit(src image.Point, box image.Rectangle) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 || box.Empty() {
		return image.Rectangle{}
	}
	bw, bh := box.Dx(), box.Dy()
	w, h := bw, src.Y*bw/src.X
	if h > bh {
		w, h = src.X*bh/src.Y, bh
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	origin := box.Min.Add(image.Pt((bw-w)/2, (bh-h)/2))
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}
}

// Scale draws src into r of dst. Downscaled images use a smoothing kernel;
// same-size copies are exact.
func Scale(dst draw.Image, r image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if r.Empty() || sb.Empty() {
		return
	}
	if r.Dx() == sb.Dx() && r.Dy() == sb.Dy() {
		draw.Draw(dst, r, src, sb.Min, draw.Over)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, src, sb, draw.Over, nil)
}

// Grid lays out n square cells of size cell, separated by gap, left to right
// then top to bottom inside area. Cells that would not fit vertically are
// still returned so callers can clip them.
func Grid(n, cell, gap int, area image.Rectangle) []image.Rectangle {
	if n <= 0 || cell <= 0 {
		return nil
	}
	perRow := (area.Dx() + gap) / (cell + gap)
	if perRow < 1 {
		perRow = 1
	}
	out := make([]image.Rectangle, n)
	for i := range out {
		col, row := i%perRow, i/perRow
		origin := area.Min.Add(image.Pt(col*(cell+gap), row*(cell+gap)))
		out[i] = image.Rectangle{Min: origin, Max: origin.Add(image.Pt(cell, cell))}
	}
	return out
}
