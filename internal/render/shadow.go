package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow drawn under a card.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns the shadow used under the display area and the
// error modal.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  12,
		Offset:  image.Pt(0, 6),
		Opacity: 0.25,
	}
}

// DrawShadow paints a blurred shadow of the rectangle card onto dst. The card
// itself is not drawn; callers fill it afterwards.
func DrawShadow(dst draw.Image, card image.Rectangle, opts ShadowOptions) {
	if card.Empty() || opts.Opacity <= 0 {
		return
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}

	padded := card.Inset(-radius)
	mask := image.NewGray(padded.Sub(padded.Min))
	inner := card.Sub(padded.Min)
	draw.Draw(mask, inner, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	blurred := blurGray(mask, radius)

	alpha := uint8(opacity*255 + 0.5)
	if alpha == 0 {
		return
	}
	target := padded.Add(opts.Offset)
	draw.DrawMask(dst, target, image.NewUniform(color.RGBA{0, 0, 0, alpha}), image.Point{}, blurred, image.Point{}, draw.Over)
}

// blurGray is a separable box blur using running sums per row and column.
func blurGray(src *image.Gray, radius int) *image.Gray {
	bounds := src.Bounds()
	if radius <= 0 {
		out := image.NewGray(bounds)
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := bounds.Dx(), bounds.Dy()
	tmp := image.NewGray(bounds)
	dst := image.NewGray(bounds)

	boxPass(w, h, radius,
		func(line, i int) int { return int(src.Pix[line*src.Stride+i]) },
		func(line, i int, v uint8) { tmp.Pix[line*tmp.Stride+i] = v })
	boxPass(h, w, radius,
		func(line, i int) int { return int(tmp.Pix[i*tmp.Stride+line]) },
		func(line, i int, v uint8) { dst.Pix[i*dst.Stride+line] = v })
	return dst
}

// boxPass averages each of lines lines of length n over a window of
// 2*radius+1, clamped at the edges.
func boxPass(n, lines, radius int, get func(line, i int) int, set func(line, i int, v uint8)) {
	prefix := make([]int, n+1)
	for line := 0; line < lines; line++ {
		for i := 0; i < n; i++ {
			prefix[i+1] = prefix[i] + get(line, i)
		}
		for i := 0; i < n; i++ {
			i0 := max(i-radius, 0)
			i1 := min(i+radius, n-1)
			set(line, i, uint8((prefix[i1+1]-prefix[i0])/(i1-i0+1)))
		}
	}
}
