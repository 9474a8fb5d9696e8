package appstate

import (
	"image"

	"github.com/example/bananaboard/internal/canvas"
	"github.com/example/bananaboard/internal/render"
	"github.com/example/bananaboard/internal/session"
)

// layout holds the screen rectangles for one window size.
type layout struct {
	width, height int

	header  image.Rectangle
	modes   []image.Rectangle
	clear   image.Rectangle
	display image.Rectangle
	footer  image.Rectangle
	prompt  image.Rectangle
	send    image.Rectangle
}

// computeLayout splits the window into the mode bar, the display area and the
// prompt bar. Mode buttons are sized to their labels, left to right.
func computeLayout(width, height int) layout {
	l := layout{width: width, height: height}
	l.header = image.Rect(0, 0, width, headerHeight)
	l.footer = image.Rect(0, height-footerHeight, width, height)
	if l.footer.Min.Y < l.header.Max.Y {
		l.footer.Min.Y = l.header.Max.Y
	}

	by := (headerHeight - buttonHeight) / 2
	x := margin
	for _, m := range session.Modes {
		w := labelWidth(m.Label()) + 24
		l.modes = append(l.modes, image.Rect(x, by, x+w, by+buttonHeight))
		x += w + 2
	}
	cw := labelWidth("Clear") + 24
	l.clear = image.Rect(width-margin-cw, by, width-margin, by+buttonHeight)

	l.display = image.Rectangle{
		Min: image.Pt(margin, l.header.Max.Y+margin),
		Max: image.Pt(width-margin, l.footer.Min.Y-margin),
	}
	if l.display.Empty() {
		l.display = image.Rectangle{}
	}

	fy := l.footer.Min.Y + (footerHeight-buttonHeight-6)/2
	sw := labelWidth("Sending...") + 24
	l.send = image.Rect(width-margin-sw, fy, width-margin, fy+buttonHeight+6)
	l.prompt = image.Rect(margin, fy, l.send.Min.X-margin, fy+buttonHeight+6)
	return l
}

// renderedSize is the on-screen size of the drawing surface. The surface is
// stretched over the whole display area.
func (l layout) renderedSize() image.Point { return l.display.Size() }

// resultRect returns where an image of size src is drawn: letterboxed inside
// the display area.
func (l layout) resultRect(src image.Point) image.Rectangle {
	return render.Fit(src, l.display.Inset(margin))
}

// thumbRects lays out n thumbnails in the display area, shifted up by scroll
// pixels.
func (l layout) thumbRects(n, scroll int) []image.Rectangle {
	rects := render.Grid(n, thumbSize, thumbGap, l.display.Inset(margin))
	for i := range rects {
		rects[i] = rects[i].Sub(image.Pt(0, scroll))
	}
	return rects
}

// maxScroll is the furthest the thumbnail grid can be scrolled.
func (l layout) maxScroll(n int) int {
	rects := l.thumbRects(n, 0)
	if len(rects) == 0 {
		return 0
	}
	bottom := rects[len(rects)-1].Max.Y + margin
	over := bottom - l.display.Max.Y
	if over < 0 {
		return 0
	}
	return over
}

// removeRect is the remove badge in the top right corner of a thumbnail.
func removeRect(thumb image.Rectangle) image.Rectangle {
	return image.Rect(thumb.Max.X-badgeSize-4, thumb.Min.Y+4, thumb.Max.X-4, thumb.Min.Y+4+badgeSize)
}

// hitThumb reports which thumbnail p falls on and whether it hit the remove
// badge. idx is -1 when p misses every visible thumbnail.
func (l layout) hitThumb(p image.Point, n, scroll int) (idx int, remove bool) {
	if !p.In(l.display) {
		return -1, false
	}
	for i, r := range l.thumbRects(n, scroll) {
		if !p.In(r) {
			continue
		}
		return i, p.In(removeRect(r))
	}
	return -1, false
}

// toDisplay converts a window position into display-relative coordinates and
// reports whether it falls inside the display area. Sub-pixel positions are
// kept so the buffer mapping stays exact when the buffer is larger than the
// display.
func (l layout) toDisplay(x, y float32) (canvas.Point, bool) {
	px := float64(x) - float64(l.display.Min.X)
	py := float64(y) - float64(l.display.Min.Y)
	size := l.display.Size()
	inside := px >= 0 && py >= 0 && px < float64(size.X) && py < float64(size.Y)
	return canvas.Pt(px, py), inside
}

// modalRect sizes the error card for a body of lines text lines.
func (l layout) modalRect(lines int) (card, ok image.Rectangle) {
	h := 24 + lineHeight(titleFace) + 12 + lines*lineHeight(bodyFace) + 16 + buttonHeight + 16
	w := modalWidth
	if w > l.width-2*margin {
		w = l.width - 2*margin
	}
	x := (l.width - w) / 2
	y := (l.height - h) / 2
	card = image.Rect(x, y, x+w, y+h)
	ow := labelWidth("OK") + 40
	ok = image.Rect(card.Max.X-16-ow, card.Max.Y-16-buttonHeight, card.Max.X-16, card.Max.Y-16)
	return card, ok
}

// errorModal wraps text for the error card and returns the card and its OK
// button.
func (l layout) errorModal(text string) (lines []string, card, ok image.Rectangle) {
	first, _ := l.modalRect(0)
	lines = wrapText(bodyFace, text, first.Dx()-32)
	card, ok = l.modalRect(len(lines))
	return lines, card, ok
}
