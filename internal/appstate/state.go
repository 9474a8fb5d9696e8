package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/bananaboard/internal/capture"
	"github.com/example/bananaboard/internal/clipboard"
	"github.com/example/bananaboard/internal/intake"
	"github.com/example/bananaboard/internal/notify"
	"github.com/example/bananaboard/internal/session"
	"github.com/example/bananaboard/internal/theme"
)

const messageDuration = 2 * time.Second

// AppState holds application configuration for the window.
type AppState struct {
	Session  *session.State
	Theme    *theme.Theme
	Notifier *notify.Notifier
	SaveDir  string
	Files    []intake.File
	Title    string

	updateCh chan struct{}

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithSession sets the session the window drives.
func WithSession(s *session.State) Option { return func(a *AppState) { a.Session = s } }

// WithTheme sets the colour theme.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithNotifier sets the desktop notifier used after generate, save and copy.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithSaveDir sets the directory results are saved into.
func WithSaveDir(dir string) Option { return func(a *AppState) { a.SaveDir = dir } }

// WithFiles queues files to upload once the window is open.
func WithFiles(files []intake.File) Option { return func(a *AppState) { a.Files = files } }

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Title:    "bananaboard",
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	if a.Session == nil {
		a.Session = session.New()
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	if a.SaveDir == "" {
		a.SaveDir = "."
	}
	return a
}

// NotifyChanged requests a repaint. It is safe to call from any goroutine.
func (a *AppState) NotifyChanged() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// statusEvent carries a transient message from a worker goroutine back to
// the event loop.
type statusEvent struct {
	text string
}

// Run opens the window and blocks until it is closed.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main runs the window on screen s.
func (a *AppState) Main(s screen.Screen) {
	width, height := defaultWindowWidth, defaultWindowHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	a.Session.SetOnChange(a.NotifyChanged)
	defer a.Session.SetOnChange(nil)

	status := func(format string, args ...any) {
		w.Send(statusEvent{text: fmt.Sprintf(format, args...)})
	}

	upload := func(files []intake.File) {
		go func() {
			if err := a.Session.Upload(ctx, files); err != nil {
				log.Print(err)
				status("upload failed")
			}
		}()
	}
	if len(a.Files) > 0 {
		upload(a.Files)
	}

	var message string
	var messageUntil time.Time
	flash := func(text string) {
		message = text
		log.Print(message)
		messageUntil = time.Now().Add(messageDuration)
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		cache := newImageCache()
		for st := range paintCh {
			pctx, pcancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = pcancel
			paintMu.Unlock()
			drawFrame(pctx, s, w, st, cache)
			paintMu.Lock()
			paintCancel = nil
			if pctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			pcancel()
		}
	}()
	defer close(paintCh)

	keyboardAction := map[KeyShortcut]string{}
	actions := map[string]func(){}
	register := func(name string, keys KeyboardShortcuts, fn func()) {
		actions[name] = fn
		if keys != nil {
			for _, sc := range keys.KeyboardShortcuts() {
				keyboardAction[sc] = name
			}
		}
	}

	selectMode := func(m session.Mode) {
		a.Session.SetMode(m)
	}
	modeKeys := []rune{'1', '2', '3', '4'}
	for i, m := range session.Modes {
		register("mode-"+m.String(), shortcutList{{Rune: modeKeys[i], Modifiers: key.ModControl}}, func() {
			selectMode(m)
		})
	}

	register("submit", shortcutList{{Code: key.CodeReturnEnter}}, func() {
		if a.Session.Busy() {
			return
		}
		go a.submit(ctx)
	})

	register("clear", shortcutList{{Rune: 'l', Modifiers: key.ModControl}}, func() {
		a.Session.Clear()
	})

	register("save", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, func() {
		path, err := a.save(time.Now())
		if err != nil {
			log.Printf("save: %v", err)
			flash(saveFailure(err))
			return
		}
		flash(fmt.Sprintf("saved %s", path))
		a.Notifier.Saved(path)
	})

	register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, func() {
		if snap := a.Session.Snapshot(); snap.ShowError {
			if err := clipboard.CopyText(snap.ErrorText()); err != nil {
				log.Printf("copy: %v", err)
				return
			}
			a.Notifier.Copied("error message")
			return
		}
		img, ok := a.Session.Result()
		if !ok {
			flash("nothing to copy")
			return
		}
		if err := clipboard.CopyImage(img); err != nil {
			log.Printf("copy: %v", err)
			flash("copy failed")
			return
		}
		flash("image copied to clipboard")
		a.Notifier.Copied("result image")
	})

	register("paste", shortcutList{{Rune: 'v', Modifiers: key.ModControl}}, func() {
		if !a.Session.Mode().AcceptsUploads() {
			flash(session.ErrUploadUnavailable.Error())
			return
		}
		files, err := a.clipboardFiles()
		if err != nil {
			log.Printf("paste: %v", err)
			flash("clipboard has no image")
			return
		}
		upload(files)
	})

	pathEntry := false
	pathText := ""
	register("add-file", shortcutList{{Rune: 'o', Modifiers: key.ModControl}}, func() {
		if !a.Session.Mode().AcceptsUploads() {
			flash(session.ErrUploadUnavailable.Error())
			return
		}
		pathEntry = true
		pathText = ""
	})
	finishPathEntry := func() {
		pathEntry = false
		files, err := a.pathFiles(pathText)
		pathText = ""
		if err != nil {
			flash(err.Error())
			return
		}
		upload(files)
	}

	register("capture", shortcutList{{Rune: 'n', Modifiers: key.ModControl}}, func() {
		if !a.Session.Mode().AcceptsUploads() {
			flash(session.ErrUploadUnavailable.Error())
			return
		}
		go func() {
			f, err := capture.Screen(ctx, capture.Options{Interactive: true})
			if errors.Is(err, capture.ErrCancelled) {
				status("capture cancelled")
				return
			}
			if err != nil {
				log.Printf("capture: %v", err)
				status("capture failed")
				return
			}
			upload([]intake.File{f})
		}()
	})

	register("dismiss", shortcutList{{Code: key.CodeEscape}}, func() {
		a.Session.DismissError()
	})

	handleShortcut := func(action string) {
		if fn, ok := actions[action]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}

	th := a.Theme
	var modeButtons []*CacheButton
	for _, m := range session.Modes {
		modeButtons = append(modeButtons, &CacheButton{Button: &ModeButton{mode: m, theme: th, onSelect: selectMode}})
	}
	clearButton := &CacheButton{Button: &ActionButton{label: "Clear", theme: th, onActivate: func() { handleShortcut("clear") }}}
	sendButton := &CacheButton{Button: &ActionButton{label: "Send", theme: th, onActivate: func() { handleShortcut("submit") }}}
	okButton := &CacheButton{Button: &ActionButton{label: "OK", theme: th, onActivate: func() { handleShortcut("dismiss") }}}

	var lay layout
	relayout := func() {
		lay = computeLayout(width, height)
		for i, mb := range modeButtons {
			mb.SetRect(lay.modes[i])
		}
		clearButton.SetRect(lay.clear)
		sendButton.SetRect(lay.send)
	}
	relayout()

	var hover, pressed Button
	hoverThumb := -1
	scroll := 0
	touching := false

	// hitButton returns the button under p. Only the OK button is live while
	// the error modal is open.
	hitButton := func(p image.Point, modal bool) Button {
		if modal {
			if p.In(okButton.Rect()) {
				return okButton
			}
			return nil
		}
		for _, mb := range modeButtons {
			if p.In(mb.Rect()) {
				return mb
			}
		}
		for _, b := range []*CacheButton{clearButton, sendButton} {
			if p.In(b.Rect()) {
				return b
			}
		}
		return nil
	}

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case statusEvent:
			flash(e.text)
			w.Send(paint.Event{})
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			relayout()
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				if dropCount < frameDropThreshold {
					paintCancel()
					dropCount++
				}
			}
			paintMu.Unlock()
			snap := a.Session.Snapshot()
			if snap.ShowError {
				_, _, ok := lay.errorModal(snap.ErrorText())
				okButton.SetRect(ok)
			}
			if snap.Busy {
				sendButton.SetLabel("Sending...")
			} else {
				sendButton.SetLabel("Send")
			}
			scroll = clampScroll(scroll, lay.maxScroll(len(snap.Images)))
			st := paintState{
				layout:       lay,
				snap:         snap,
				theme:        th,
				modeButtons:  modeButtons,
				clearButton:  clearButton,
				sendButton:   sendButton,
				okButton:     okButton,
				hover:        hover,
				pressed:      pressed,
				scroll:       scroll,
				hoverThumb:   hoverThumb,
				message:      message,
				messageUntil: messageUntil,
				pathEntry:    pathEntry,
				pathText:     pathText,
			}
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}
		case key.Event:
			if e.Direction != key.DirPress && e.Direction != key.DirNone {
				continue
			}
			if a.Session.Status().ShowError {
				if e.Code == key.CodeEscape || e.Code == key.CodeReturnEnter {
					handleShortcut("dismiss")
				} else if action, ok := lookupShortcut(keyboardAction, e); ok && action == "copy" {
					handleShortcut(action)
				}
				continue
			}
			if pathEntry {
				switch e.Code {
				case key.CodeEscape:
					pathEntry = false
					pathText = ""
				case key.CodeReturnEnter:
					finishPathEntry()
				default:
					if action, ok := lookupShortcut(keyboardAction, e); ok && action == "paste" {
						pathEntry = false
						pathText = ""
						handleShortcut(action)
						continue
					}
					if next, ok := editPrompt(pathText, e); ok {
						pathText = next
					}
				}
				w.Send(paint.Event{})
				continue
			}
			if action, ok := lookupShortcut(keyboardAction, e); ok {
				handleShortcut(action)
				continue
			}
			if next, ok := editPrompt(a.Session.Prompt(), e); ok {
				a.Session.SetPrompt(next)
			}
		case touch.Event:
			p, inside := lay.toDisplay(e.X, e.Y)
			switch e.Type {
			case touch.TypeBegin:
				if inside && !a.Session.Status().ShowError {
					touching = true
					a.Session.BeginStroke(p, lay.renderedSize())
				}
			case touch.TypeMove:
				if touching {
					touching = followStroke(a.Session, lay, e.X, e.Y, false)
				}
			case touch.TypeEnd:
				touching = false
				a.Session.EndStroke()
			}
		case mouse.Event:
			pt := image.Pt(int(e.X), int(e.Y))
			if e.Button.IsWheel() {
				if a.Session.Drawing() {
					continue
				}
				if e.Direction == mouse.DirStep || e.Direction == mouse.DirPress {
					scroll = wheelScroll(scroll, e.Button)
					w.Send(paint.Event{})
				}
				continue
			}
			if message != "" && time.Now().Before(messageUntil) && e.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				w.Send(paint.Event{})
			}
			snap := a.Session.Status()

			if snap.Drawing {
				switch e.Direction {
				case mouse.DirNone:
					followStroke(a.Session, lay, e.X, e.Y, false)
				case mouse.DirRelease:
					followStroke(a.Session, lay, e.X, e.Y, true)
				}
				continue
			}

			b := hitButton(pt, snap.ShowError)
			if b != hover {
				hover = b
				w.Send(paint.Event{})
			}
			if b != nil {
				switch {
				case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
					pressed = b
					w.Send(paint.Event{})
				case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
					if pressed == b && !(b == Button(sendButton) && snap.Busy) {
						b.Activate()
					}
					pressed = nil
					w.Send(paint.Event{})
				}
				continue
			}
			if e.Direction == mouse.DirRelease {
				pressed = nil
			}
			if snap.ShowError {
				continue
			}

			switch snap.Mode {
			case session.ModeCanvas:
				if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					if p, inside := lay.toDisplay(e.X, e.Y); inside {
						a.Session.BeginStroke(p, lay.renderedSize())
					}
				}
			case session.ModeMulti:
				idx, remove := lay.hitThumb(pt, snap.Images, scroll)
				if idx != hoverThumb {
					hoverThumb = idx
					w.Send(paint.Event{})
				}
				if remove && e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					a.Session.RemoveImage(idx)
					hoverThumb = -1
				}
			}
		case error:
			log.Print(e)
		}
	}
}

// followStroke feeds a pointer position to the active stroke and reports
// whether the stroke is still going. A release, or a position outside the
// display area, ends the stroke.
func followStroke(s *session.State, l layout, x, y float32, release bool) bool {
	p, inside := l.toDisplay(x, y)
	if release || !inside {
		s.EndStroke()
		return false
	}
	if err := s.ContinueStroke(p, l.renderedSize()); err != nil {
		log.Printf("stroke: %v", err)
	}
	return s.Drawing()
}

var (
	pasteImage = clipboard.Paste
	pasteText  = clipboard.PasteText
)

var errNoFiles = errors.New("no such file")

// clipboardFiles returns the clipboard image, or failing that the image files
// named by the clipboard text.
func (a *AppState) clipboardFiles() ([]intake.File, error) {
	f, err := pasteImage()
	if err == nil {
		return []intake.File{f}, nil
	}
	text, terr := pasteText()
	if terr != nil {
		return nil, err
	}
	paths := intake.Paths(text)
	if len(paths) == 0 {
		return nil, err
	}
	return intake.FromPaths(paths), nil
}

// pathFiles resolves paths typed into the path field.
func (a *AppState) pathFiles(text string) ([]intake.File, error) {
	if !a.Session.Mode().AcceptsUploads() {
		return nil, session.ErrUploadUnavailable
	}
	paths := intake.Paths(text)
	if len(paths) == 0 {
		return nil, errNoFiles
	}
	return intake.FromPaths(paths), nil
}

// submit sends the current request and reports a successful generation.
// Failures are already shown by the session's error modal.
func (a *AppState) submit(ctx context.Context) {
	snap := a.Session.Snapshot()
	if err := a.Session.Submit(ctx); err != nil {
		if !errors.Is(err, session.ErrBusy) {
			log.Printf("generate: %v", err)
		}
		return
	}
	img, ok := a.Session.Result()
	if !ok {
		return
	}
	preview, err := img.Decode()
	if err != nil {
		log.Printf("notification preview: %v", err)
		preview = nil
	}
	a.Notifier.Generated(fmt.Sprintf("%s: %s", snap.Mode.Label(), snap.Prompt), preview)
}

var errNothingToSave = errors.New("nothing to save")

// save writes the result image, or the drawing in canvas mode, into the save
// directory and returns the written path.
func (a *AppState) save(now time.Time) (string, error) {
	var img intake.Image
	if a.Session.Mode() == session.ModeCanvas {
		data, err := a.Session.CanvasPNG()
		if err != nil {
			return "", err
		}
		img = intake.Image{MIMEType: "image/png", Data: data}
	} else {
		result, ok := a.Session.Result()
		if !ok {
			return "", errNothingToSave
		}
		img = result
	}
	if err := os.MkdirAll(a.SaveDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", a.SaveDir, err)
	}
	path := intake.SaveName(a.SaveDir, now)
	if err := intake.Save(path, img); err != nil {
		return "", err
	}
	return path, nil
}

func saveFailure(err error) string {
	if errors.Is(err, errNothingToSave) {
		return "nothing to save"
	}
	return "save failed"
}

// editPrompt applies a key press to the prompt text. ok is false when the key
// does not edit text.
func editPrompt(prompt string, e key.Event) (next string, ok bool) {
	if e.Modifiers&(key.ModControl|key.ModAlt|key.ModMeta) != 0 {
		return prompt, false
	}
	switch e.Code {
	case key.CodeDeleteBackspace:
		if prompt == "" {
			return prompt, false
		}
		_, n := utf8.DecodeLastRuneInString(prompt)
		return prompt[:len(prompt)-n], true
	case key.CodeReturnEnter, key.CodeEscape, key.CodeTab:
		return prompt, false
	}
	if e.Rune < ' ' || e.Rune == utf8.RuneError {
		return prompt, false
	}
	return prompt + string(e.Rune), true
}

const wheelStep = thumbSize / 2

func wheelScroll(scroll int, b mouse.Button) int {
	switch b {
	case mouse.ButtonWheelUp:
		return scroll - wheelStep
	case mouse.ButtonWheelDown:
		return scroll + wheelStep
	}
	return scroll
}

func clampScroll(scroll, limit int) int {
	if scroll > limit {
		scroll = limit
	}
	if scroll < 0 {
		scroll = 0
	}
	return scroll
}
