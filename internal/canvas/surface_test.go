package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

var white = color.RGBA{255, 255, 255, 255}

func assertUniform(t *testing.T, img *image.RGBA, want color.RGBA) {
	t.Helper()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func countNonWhite(img *image.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != white {
				n++
			}
		}
	}
	return n
}

func TestNewSurfaceIsBlank(t *testing.T) {
	s := New(64, 32)
	if s.Size() != image.Pt(64, 32) {
		t.Fatalf("size %v", s.Size())
	}
	assertUniform(t, s.Image(), white)
}

func TestNewSurfaceDefaults(t *testing.T) {
	s := New(0, -1)
	if s.Size() != image.Pt(DefaultWidth, DefaultHeight) {
		t.Fatalf("size %v", s.Size())
	}
}

func TestStrokeDrawsAndClearResets(t *testing.T) {
	strokes := [][]Point{
		{Pt(5, 5), Pt(50, 5)},
		{Pt(10, 10), Pt(20, 25), Pt(60, 30)},
		{Pt(0, 0), Pt(63, 31), Pt(0, 31), Pt(63, 0)},
	}
	for i, stroke := range strokes {
		s := New(64, 32)
		s.BeginStroke(stroke[0])
		for _, p := range stroke[1:] {
			if err := s.ContinueStroke(p); err != nil {
				t.Fatalf("stroke %d: %v", i, err)
			}
		}
		s.EndStroke()
		if countNonWhite(s.Image()) == 0 {
			t.Fatalf("stroke %d left no pixels", i)
		}
		s.Clear()
		assertUniform(t, s.Image(), white)
	}
}

func TestContinueWithoutBeginDoesNothing(t *testing.T) {
	s := New(32, 32)
	if err := s.ContinueStroke(Pt(20, 20)); err != nil {
		t.Fatal(err)
	}
	assertUniform(t, s.Image(), white)
}

func TestEndStrokeStopsDrawing(t *testing.T) {
	s := New(32, 32)
	s.BeginStroke(Pt(1, 1))
	if !s.Drawing() {
		t.Fatal("expected active stroke")
	}
	s.EndStroke()
	if s.Drawing() {
		t.Fatal("expected stroke to end")
	}
	if err := s.ContinueStroke(Pt(30, 30)); err != nil {
		t.Fatal(err)
	}
	assertUniform(t, s.Image(), white)
}

func TestBeginStrokeKeepsExistingContent(t *testing.T) {
	s := New(64, 64)
	s.BeginStroke(Pt(4, 4))
	_ = s.ContinueStroke(Pt(60, 4))
	s.EndStroke()
	before := countNonWhite(s.Image())
	s.BeginStroke(Pt(4, 60))
	if got := countNonWhite(s.Image()); got != before {
		t.Fatalf("begin stroke changed pixels: %d -> %d", before, got)
	}
}

func TestLoadPaintsWhiteThenStretches(t *testing.T) {
	s := New(40, 20)
	s.BeginStroke(Pt(0, 0))
	_ = s.ContinueStroke(Pt(39, 19))
	s.EndStroke()

	// A fully transparent image must leave a white buffer, not the old strokes.
	s.Load(image.NewRGBA(image.Rect(0, 0, 7, 3)))
	assertUniform(t, s.Image(), white)

	red := color.RGBA{255, 0, 0, 255}
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, red)
		}
	}
	s.Load(src)
	img := s.Image()
	// The square source covers the whole non-square buffer.
	for _, p := range []image.Point{{1, 1}, {38, 1}, {1, 18}, {38, 18}, {20, 10}} {
		if got := img.RGBAAt(p.X, p.Y); got.R < 200 || got.G > 60 || got.B > 60 {
			t.Fatalf("pixel %v = %+v, want red", p, got)
		}
	}
}

func TestFlattenHasNoTransparency(t *testing.T) {
	s := New(16, 16)
	s.BeginStroke(Pt(2, 8))
	_ = s.ContinueStroke(Pt(14, 8))
	s.EndStroke()
	flat := s.Flatten()
	for i := 3; i < len(flat.Pix); i += 4 {
		if flat.Pix[i] != 255 {
			t.Fatalf("alpha %d at byte %d", flat.Pix[i], i)
		}
	}
	data, err := s.PNG()
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	dec, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Fatalf("bounds %v", dec.Bounds())
	}
}

func TestScale(t *testing.T) {
	logical := image.Pt(960, 540)
	cases := []struct {
		name     string
		in       Point
		rendered image.Point
		want     Point
	}{
		{"identity", Pt(100, 50), image.Pt(960, 540), Pt(100, 50)},
		{"half size", Pt(100, 50), image.Pt(480, 270), Pt(200, 100)},
		{"independent axes", Pt(100, 100), image.Pt(1920, 270), Pt(50, 200)},
		{"origin", Pt(0, 0), image.Pt(123, 45), Pt(0, 0)},
		{"zero rendered", Pt(7, 9), image.Point{}, Pt(7, 9)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Scale(tc.in, logical, tc.rendered); got != tc.want {
				t.Fatalf("Scale(%v, %v) = %v, want %v", tc.in, tc.rendered, got, tc.want)
			}
		})
	}
}

func TestToBufferUsesSurfaceSize(t *testing.T) {
	s := New(200, 100)
	got := s.ToBuffer(Pt(50, 50), image.Pt(100, 200))
	if got != Pt(100, 25) {
		t.Fatalf("got %v", got)
	}
}
