package appstate

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/bananaboard/internal/session"
	"github.com/example/bananaboard/internal/theme"
)

const (
	headerHeight = 40
	footerHeight = 52
	margin       = 8
	buttonHeight = 26
	thumbSize    = 128
	thumbGap     = 10
	badgeSize    = 18
	modalWidth   = 440
)

const (
	defaultWindowWidth  = 1024
	defaultWindowHeight = 720
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var (
	titleFace   font.Face
	bodyFace    font.Face
	messageFace font.Face
)

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	newFace := func(size float64) font.Face {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			log.Fatalf("font face: %v", err)
		}
		return face
	}
	titleFace = newFace(20)
	bodyFace = newFace(14)
	messageFace = newFace(24)
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// lookupShortcut finds the action bound to e. Drivers fill in both the rune
// and the key code, while bindings usually name only one of them, so the
// exact combination is tried first and then each half on its own.
func lookupShortcut(bindings map[KeyShortcut]string, e key.Event) (string, bool) {
	r := unicode.ToLower(e.Rune)
	candidates := []KeyShortcut{
		{Rune: r, Code: e.Code, Modifiers: e.Modifiers},
		{Rune: r, Modifiers: e.Modifiers},
		{Code: e.Code, Modifiers: e.Modifiers},
	}
	for _, ks := range candidates {
		if ks.Rune <= 0 && ks.Code == key.CodeUnknown {
			continue
		}
		if action, ok := bindings[ks]; ok {
			return action, true
		}
	}
	return "", false
}

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
	StateActive
	StateDisabled
	buttonStateCount
)

// Button represents an interactive UI element.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
// It is safe to lay out from the event loop while the paint goroutine draws.
type CacheButton struct {
	Button
	mu    sync.Mutex
	cache [buttonStateCount]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	rect := cb.Button.Rect()
	if rect.Empty() {
		return
	}
	if cb.cache[state] == nil {
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, rect, cb.cache[state], rect.Min, draw.Src)
}

func (cb *CacheButton) Rect() image.Rectangle {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.Button.Rect()
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [buttonStateCount]*image.RGBA{}
	}
}

// SetLabel relabels the wrapped button, dropping the cached renderings when
// the label changes.
func (cb *CacheButton) SetLabel(label string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	lb, ok := cb.Button.(interface{ SetLabel(string) bool })
	if ok && lb.SetLabel(label) {
		cb.cache = [buttonStateCount]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

// ModeButton selects one of the session modes. It is drawn as a segment of
// the mode bar.
type ModeButton struct {
	mode     session.Mode
	rect     image.Rectangle
	theme    *theme.Theme
	onSelect func(session.Mode)
}

func (mb *ModeButton) Draw(dst *image.RGBA, state ButtonState) {
	bg, fg := mb.theme.ModeBackground, mb.theme.ModeText
	switch state {
	case StateHover, StatePressed:
		bg = mb.theme.ModeHover
	case StateActive:
		bg, fg = mb.theme.ModeActive, mb.theme.ModeTextActive
	}
	fillRect(dst, mb.rect, bg)
	drawLabel(dst, mb.rect, mb.mode.Label(), fg)
}

func (mb *ModeButton) Rect() image.Rectangle { return mb.rect }

func (mb *ModeButton) SetRect(r image.Rectangle) { mb.rect = r }

func (mb *ModeButton) Activate() {
	if mb.onSelect != nil {
		mb.onSelect(mb.mode)
	}
}

// ActionButton is a labelled push button.
type ActionButton struct {
	label      string
	rect       image.Rectangle
	theme      *theme.Theme
	onActivate func()
}

func (ab *ActionButton) Draw(dst *image.RGBA, state ButtonState) {
	bg := ab.theme.ButtonBackground
	switch state {
	case StateHover:
		bg = ab.theme.ButtonBackgroundHover
	case StatePressed, StateActive:
		bg = ab.theme.ButtonBackgroundPress
	case StateDisabled:
		bg = ab.theme.ButtonDisabled
	}
	fillRect(dst, ab.rect, bg)
	drawRect(dst, ab.rect, ab.theme.ButtonBorder, 1)
	drawLabel(dst, ab.rect, ab.label, ab.theme.ButtonText)
}

func (ab *ActionButton) Rect() image.Rectangle { return ab.rect }

func (ab *ActionButton) SetRect(r image.Rectangle) { ab.rect = r }

// SetLabel changes the label and reports whether it differed.
func (ab *ActionButton) SetLabel(label string) bool {
	if ab.label == label {
		return false
	}
	ab.label = label
	return true
}

func (ab *ActionButton) Activate() {
	if ab.onActivate != nil {
		ab.onActivate()
	}
}

func labelWidth(label string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(label).Ceil()
}

// drawLabel centres label inside rect using the fixed-width UI face.
func drawLabel(dst *image.RGBA, rect image.Rectangle, label string, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13}
	w := d.MeasureString(label).Ceil()
	x := rect.Min.X + (rect.Dx()-w)/2
	y := rect.Min.Y + (rect.Dy()+basicfont.Face7x13.Ascent-basicfont.Face7x13.Descent)/2
	d.Dot = fixed.P(x, y)
	d.DrawString(label)
}

func drawText(dst *image.RGBA, face font.Face, pt image.Point, text string, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face, Dot: fixed.P(pt.X, pt.Y)}
	d.DrawString(text)
}

func fillRect(dst *image.RGBA, rect image.Rectangle, col color.Color) {
	draw.Draw(dst, rect, &image.Uniform{col}, image.Point{}, draw.Src)
}

func blendRect(dst *image.RGBA, rect image.Rectangle, col color.Color) {
	draw.Draw(dst, rect, &image.Uniform{col}, image.Point{}, draw.Over)
}

func drawRect(dst *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	if rect.Empty() {
		return
	}
	u := &image.Uniform{col}
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thick),
		image.Rect(rect.Min.X, rect.Max.Y-thick, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thick, rect.Max.Y),
		image.Rect(rect.Max.X-thick, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(rect), u, image.Point{}, draw.Src)
	}
}

// wrapText breaks text into lines no wider than width when drawn with face.
// Explicit newlines are kept. A single word wider than width gets a line of
// its own.
func wrapText(face font.Face, text string, width int) []string {
	d := &font.Drawer{Face: face}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			next := line + " " + w
			if d.MeasureString(next).Ceil() > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line = next
		}
		lines = append(lines, line)
	}
	return lines
}

// lineHeight returns the distance between baselines for face.
func lineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil() + 2
}

func measure(face font.Face, text string) int {
	d := &font.Drawer{Face: face}
	return d.MeasureString(text).Ceil()
}

// promptTail returns the longest suffix of text that fits in width, so the
// caret stays visible while typing past the end of the field.
func promptTail(face font.Face, text string, width int) string {
	if measure(face, text) <= width {
		return text
	}
	runes := []rune(text)
	for i := 1; i < len(runes); i++ {
		tail := string(runes[i:])
		if measure(face, tail) <= width {
			return tail
		}
	}
	return ""
}
