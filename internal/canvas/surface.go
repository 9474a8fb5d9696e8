// Package canvas implements the free-draw surface: a fixed-size raster buffer
// that turns pointer input into round-capped strokes.
package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/gogpu/gg"
)

const (
	// DefaultWidth and DefaultHeight are the logical buffer size.
	DefaultWidth  = 960
	DefaultHeight = 540

	// StrokeWidth is the pen width in buffer pixels.
	StrokeWidth = 5
)

// StrokeColor is the pen colour.
var StrokeColor color.Color = color.Black

// Point is a position in display or buffer space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Scale converts p from a display of size rendered to a buffer of size
// logical. Each axis uses its own ratio.
func Scale(p Point, logical, rendered image.Point) Point {
	out := p
	if rendered.X > 0 {
		out.X = p.X * float64(logical.X) / float64(rendered.X)
	}
	if rendered.Y > 0 {
		out.Y = p.Y * float64(logical.Y) / float64(rendered.Y)
	}
	return out
}

// Surface is the drawing buffer. Its size never changes after New.
type Surface struct {
	dc      *gg.Context
	width   int
	height  int
	cursor  Point
	drawing bool
}

// New returns a blank white surface of the given size. Non-positive sizes
// fall back to the defaults.
func New(width, height int) *Surface {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	s := &Surface{dc: gg.NewContext(width, height), width: width, height: height}
	s.Clear()
	return s
}

// Size returns the logical buffer size.
func (s *Surface) Size() image.Point { return image.Pt(s.width, s.height) }

// ToBuffer maps a point from a display of size rendered into buffer space.
func (s *Surface) ToBuffer(p Point, rendered image.Point) Point {
	return Scale(p, s.Size(), rendered)
}

// BeginStroke moves the pen to p without drawing or clearing anything.
func (s *Surface) BeginStroke(p Point) {
	s.cursor = p
	s.drawing = true
}

// ContinueStroke draws a segment from the pen to p. It does nothing unless a
// stroke is active.
func (s *Surface) ContinueStroke(p Point) error {
	if !s.drawing {
		return nil
	}
	s.dc.SetColor(StrokeColor)
	s.dc.SetLineWidth(StrokeWidth)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	s.dc.MoveTo(s.cursor.X, s.cursor.Y)
	s.dc.LineTo(p.X, p.Y)
	err := s.dc.Stroke()
	s.cursor = p
	if err != nil {
		return fmt.Errorf("stroke: %w", err)
	}
	return nil
}

// EndStroke finishes the active stroke.
func (s *Surface) EndStroke() { s.drawing = false }

// Drawing reports whether a stroke is active. Scroll and zoom input should be
// swallowed while it is true.
func (s *Surface) Drawing() bool { return s.drawing }

// Clear repaints the whole buffer white.
func (s *Surface) Clear() {
	s.dc.ClearPath()
	s.dc.ClearWithColor(gg.White)
}

// Load paints the buffer white and draws img stretched over the full buffer.
// The aspect ratio of img is not preserved.
func (s *Surface) Load(img image.Image) {
	s.Clear()
	if img == nil || img.Bounds().Empty() {
		return
	}
	s.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             0,
		Y:             0,
		DstWidth:      float64(s.width),
		DstHeight:     float64(s.height),
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

// Image returns a copy of the buffer.
func (s *Surface) Image() *image.RGBA {
	return toRGBA(s.dc.Image())
}

// Flatten renders the buffer over an opaque white background so that no
// transparent pixels reach the output.
func (s *Surface) Flatten() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), s.Image(), image.Point{}, draw.Over)
	return out
}

// PNG encodes the flattened buffer.
func (s *Surface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Flatten()); err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	return buf.Bytes(), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
