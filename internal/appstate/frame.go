package appstate

import (
	"context"
	"image"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/bananaboard/internal/intake"
	"github.com/example/bananaboard/internal/render"
	"github.com/example/bananaboard/internal/session"
	"github.com/example/bananaboard/internal/theme"
)

type paintState struct {
	layout       layout
	snap         session.Snapshot
	theme        *theme.Theme
	modeButtons  []*CacheButton
	clearButton  *CacheButton
	sendButton   *CacheButton
	okButton     *CacheButton
	hover        Button
	pressed      Button
	scroll       int
	hoverThumb   int
	message      string
	messageUntil time.Time
	pathEntry    bool
	pathText     string
}

// buttonState picks the visual state of b for this frame.
func (st paintState) buttonState(b Button) ButtonState {
	switch {
	case b == Button(st.sendButton) && !st.snap.CanSubmit():
		return StateDisabled
	case b == st.pressed:
		return StatePressed
	case b == st.hover:
		return StateHover
	}
	return StateDefault
}

// imageCache keeps decoded copies of encoded images between frames. It is
// owned by the paint goroutine.
type imageCache struct {
	entries map[*byte]*image.RGBA
	seen    map[*byte]bool
}

func newImageCache() *imageCache {
	return &imageCache{entries: map[*byte]*image.RGBA{}, seen: map[*byte]bool{}}
}

func (c *imageCache) get(im intake.Image) *image.RGBA {
	if len(im.Data) == 0 {
		return nil
	}
	k := &im.Data[0]
	c.seen[k] = true
	if img, ok := c.entries[k]; ok {
		return img
	}
	img, err := im.RGBA()
	if err != nil {
		log.Printf("display image: %v", err)
		img = nil
	}
	c.entries[k] = img
	return img
}

// sweep drops entries that were not used since the last sweep.
func (c *imageCache) sweep() {
	for k := range c.entries {
		if !c.seen[k] {
			delete(c.entries, k)
		}
	}
	c.seen = map[*byte]bool{}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState, cache *imageCache) {
	l := st.layout
	b, err := s.NewBuffer(image.Point{l.width, l.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()
	th := st.theme

	fillRect(dst, dst.Bounds(), th.Background)
	fillRect(dst, l.header, th.ModeBackground)
	for i, mb := range st.modeButtons {
		state := st.buttonState(mb)
		if i < len(session.Modes) && session.Modes[i] == st.snap.Mode {
			state = StateActive
		}
		mb.Draw(dst, state)
	}
	st.clearButton.Draw(dst, st.buttonState(st.clearButton))
	if ctx.Err() != nil {
		return
	}

	fillRect(dst, l.display, th.DisplayBackground)
	drawRect(dst, l.display, th.DisplayBorder, 1)
	drawDisplay(ctx, dst, st, cache)
	if ctx.Err() != nil {
		return
	}

	drawPrompt(dst, st)
	st.sendButton.Draw(dst, st.buttonState(st.sendButton))

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(dst, l, th, st.message)
	}
	if ctx.Err() != nil {
		return
	}

	if st.snap.ShowError {
		drawErrorModal(dst, st)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func drawDisplay(ctx context.Context, dst *image.RGBA, st paintState, cache *imageCache) {
	l := st.layout
	th := st.theme
	clip := dst.SubImage(l.display.Inset(1)).(*image.RGBA)
	defer cache.sweep()

	switch st.snap.Mode {
	case session.ModeCanvas:
		if st.snap.Canvas != nil {
			render.Scale(clip, l.display, st.snap.Canvas)
		}
	case session.ModeMulti:
		if len(st.snap.Images) == 0 {
			drawHint(dst, l.display, th, "Paste (Ctrl+V), open (Ctrl+O) or capture (Ctrl+N) images to combine")
			return
		}
		for i, r := range l.thumbRects(len(st.snap.Images), st.scroll) {
			if ctx.Err() != nil {
				return
			}
			if !r.Overlaps(l.display) {
				continue
			}
			if img := cache.get(st.snap.Images[i]); img != nil {
				render.Scale(clip, render.Fit(img.Bounds().Size(), r), img)
			}
			drawRect(clip, r, th.ThumbBorder, 1)
			if i == st.hoverThumb {
				br := removeRect(r)
				fillRect(clip, br, th.RemoveBadge)
				drawLabel(clip, br, "x", th.RemoveBadgeText)
			}
		}
	default:
		if st.snap.Result == nil {
			hint := "Paste (Ctrl+V), open (Ctrl+O) or capture (Ctrl+N) an image to edit"
			if st.snap.Mode == session.ModeImageGen {
				hint = "Describe an image and press Enter"
			}
			drawHint(dst, l.display, th, hint)
			return
		}
		img := cache.get(*st.snap.Result)
		if img == nil {
			return
		}
		render.Scale(clip, l.resultRect(img.Bounds().Size()), img)
	}
}

func drawHint(dst *image.RGBA, r image.Rectangle, th *theme.Theme, text string) {
	drawLabel(dst, r, text, th.Muted)
}

func drawPrompt(dst *image.RGBA, st paintState) {
	th := st.theme
	r := st.layout.prompt
	fillRect(dst, r, th.InputBackground)
	border := th.InputFocus
	if st.snap.ShowError {
		border = th.InputBorder
	}
	drawRect(dst, r, border, 1)
	clip := dst.SubImage(r.Inset(4)).(*image.RGBA)
	base := r.Min.Y + (r.Dy()+bodyFace.Metrics().Ascent.Ceil()-bodyFace.Metrics().Descent.Ceil())/2
	value, placeholder := st.snap.Prompt, "Describe what to generate..."
	if st.pathEntry {
		value, placeholder = st.pathText, "Image file path, Enter to add, Esc to cancel"
	}
	if value == "" {
		drawText(clip, bodyFace, image.Pt(r.Min.X+8, base), placeholder, th.Muted)
		return
	}
	text := promptTail(bodyFace, value, r.Dx()-24)
	drawText(clip, bodyFace, image.Pt(r.Min.X+8, base), text+"|", th.Foreground)
}

func drawMessage(dst *image.RGBA, l layout, th *theme.Theme, msg string) {
	w := measure(messageFace, msg)
	m := messageFace.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	px := (l.width - w) / 2
	py := l.footer.Min.Y - margin - 12 - descent
	rect := image.Rect(px-10, py-ascent-8, px+w+10, py+descent+8)
	render.DrawShadow(dst, rect, render.ShadowOptions{Radius: 6, Offset: image.Pt(0, 2), Opacity: 0.25})
	fillRect(dst, rect, th.ModalBackground)
	drawRect(dst, rect, th.DisplayBorder, 1)
	drawText(dst, messageFace, image.Pt(px, py), msg, th.Foreground)
}

func drawErrorModal(dst *image.RGBA, st paintState) {
	l := st.layout
	th := st.theme
	blendRect(dst, dst.Bounds(), th.Overlay)

	lines, card, _ := l.errorModal(st.snap.ErrorText())
	render.DrawShadow(dst, card, render.DefaultShadowOptions())
	fillRect(dst, card, th.ModalBackground)

	y := card.Min.Y + 24 + titleFace.Metrics().Ascent.Ceil()
	drawText(dst, titleFace, image.Pt(card.Min.X+16, y), "Failed to generate", th.ModalTitle)
	y += 12 + titleFace.Metrics().Descent.Ceil()
	clip := dst.SubImage(card).(*image.RGBA)
	for _, line := range lines {
		y += lineHeight(bodyFace)
		drawText(clip, bodyFace, image.Pt(card.Min.X+16, y), line, th.ModalText)
	}
	st.okButton.Draw(dst, st.buttonState(st.okButton))
}
