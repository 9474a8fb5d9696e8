// Package session holds the mutable state shared by every front-end: the
// active mode, the prompt, uploaded images, the current result and the
// drawing surface. All mutation goes through State's transition methods.
package session

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/example/bananaboard/internal/canvas"
	"github.com/example/bananaboard/internal/generate"
	"github.com/example/bananaboard/internal/intake"
)

// State is the session state container. It is safe for concurrent use.
type State struct {
	mu sync.Mutex

	mode      Mode
	prompt    string
	result    *intake.Image
	images    []intake.Image
	errMsg    string
	showError bool
	busy      bool

	surface *canvas.Surface
	backend generate.Backend

	changeMu sync.Mutex
	onChange func()
}

// Option modifies a State during creation.
type Option func(*State)

// WithBackend sets the generation backend used by Submit.
func WithBackend(b generate.Backend) Option { return func(s *State) { s.backend = b } }

// WithCanvasSize sets the logical size of the drawing surface.
func WithCanvasSize(w, h int) Option {
	return func(s *State) { s.surface = canvas.New(w, h) }
}

// WithMode sets the initial mode.
func WithMode(m Mode) Option { return func(s *State) { s.mode = m } }

// WithPrompt sets the initial prompt.
func WithPrompt(p string) Option { return func(s *State) { s.prompt = p } }

// WithResult sets the initial result image.
func WithResult(img intake.Image) Option {
	return func(s *State) { s.result = &img }
}

// New creates a State in editor mode with a blank default-size surface.
func New(opts ...Option) *State {
	s := &State{mode: ModeEditor}
	for _, o := range opts {
		o(s)
	}
	if s.surface == nil {
		s.surface = canvas.New(canvas.DefaultWidth, canvas.DefaultHeight)
	}
	if s.result != nil && s.mode == ModeCanvas {
		s.loadSurface(*s.result)
	}
	return s
}

// SetOnChange registers a callback invoked after every transition. It runs
// without the state lock held and may be called from any goroutine.
func (s *State) SetOnChange(fn func()) {
	s.changeMu.Lock()
	s.onChange = fn
	s.changeMu.Unlock()
}

func (s *State) changed() {
	s.changeMu.Lock()
	fn := s.onChange
	s.changeMu.Unlock()
	if fn != nil {
		fn()
	}
}

// Mode returns the active mode.
func (s *State) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches mode. Entering canvas mode from another mode starts from a
// blank surface; nothing else is cleared.
func (s *State) SetMode(m Mode) {
	s.mu.Lock()
	if m == ModeCanvas && s.mode != ModeCanvas {
		s.surface.Clear()
	}
	s.mode = m
	s.mu.Unlock()
	s.changed()
}

// SetPrompt replaces the prompt text.
func (s *State) SetPrompt(p string) {
	s.mu.Lock()
	s.prompt = p
	s.mu.Unlock()
	s.changed()
}

// Prompt returns the prompt text.
func (s *State) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

// Upload decodes files for the active mode. Multi mode appends every image
// file to the collection and fails as a whole if any file fails. The other
// modes replace the result with the first image file. Non-image files are
// ignored and an upload with no image files changes nothing.
func (s *State) Upload(ctx context.Context, files []intake.File) error {
	mode := s.Mode()
	if !mode.AcceptsUploads() {
		return ErrUploadUnavailable
	}
	if mode == ModeMulti {
		imgs, err := intake.DecodeAll(ctx, files)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		s.AddImages(imgs...)
		return nil
	}
	img, ok, err := intake.DecodeFirst(ctx, files)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if ok {
		s.SetResult(img)
	}
	return nil
}

// AddImages appends to the multi-image collection.
func (s *State) AddImages(imgs ...intake.Image) {
	if len(imgs) == 0 {
		return
	}
	s.mu.Lock()
	s.images = append(s.images, imgs...)
	s.mu.Unlock()
	s.changed()
}

// RemoveImage drops the collection entry at index i. Out of range indices are
// ignored.
func (s *State) RemoveImage(i int) {
	s.mu.Lock()
	if i < 0 || i >= len(s.images) {
		s.mu.Unlock()
		return
	}
	s.images = append(s.images[:i:i], s.images[i+1:]...)
	s.mu.Unlock()
	s.changed()
}

// SetResult replaces the current result. In canvas mode the image is also
// stretched onto the surface.
func (s *State) SetResult(img intake.Image) {
	s.mu.Lock()
	s.setResultLocked(img)
	s.mu.Unlock()
	s.changed()
}

func (s *State) setResultLocked(img intake.Image) {
	s.result = &img
	if s.mode == ModeCanvas {
		s.loadSurface(img)
	}
}

func (s *State) loadSurface(img intake.Image) {
	pix, err := img.Decode()
	if err != nil {
		log.Printf("load canvas: %v", err)
		s.surface.Clear()
		return
	}
	s.surface.Load(pix)
}

// Result returns the current result image.
func (s *State) Result() (intake.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return intake.Image{}, false
	}
	return *s.result, true
}

// Clear discards the result and the collection. In canvas mode the surface
// is repainted white as well.
func (s *State) Clear() {
	s.mu.Lock()
	s.result = nil
	s.images = nil
	if s.mode == ModeCanvas {
		s.surface.Clear()
	}
	s.mu.Unlock()
	s.changed()
}

// ShowError opens the error modal with msg.
func (s *State) ShowError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.showError = true
	s.mu.Unlock()
	s.changed()
}

// DismissError closes the error modal.
func (s *State) DismissError() {
	s.mu.Lock()
	s.showError = false
	s.mu.Unlock()
	s.changed()
}

// Busy reports whether a submission is in flight.
func (s *State) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// BeginStroke starts a stroke at p, given in a display of size rendered.
// It does nothing outside canvas mode.
func (s *State) BeginStroke(p canvas.Point, rendered image.Point) {
	s.mu.Lock()
	if s.mode != ModeCanvas {
		s.mu.Unlock()
		return
	}
	s.surface.BeginStroke(s.surface.ToBuffer(p, rendered))
	s.mu.Unlock()
}

// ContinueStroke extends the active stroke to p.
func (s *State) ContinueStroke(p canvas.Point, rendered image.Point) error {
	s.mu.Lock()
	if s.mode != ModeCanvas || !s.surface.Drawing() {
		s.mu.Unlock()
		return nil
	}
	err := s.surface.ContinueStroke(s.surface.ToBuffer(p, rendered))
	s.mu.Unlock()
	s.changed()
	return err
}

// EndStroke finishes the active stroke.
func (s *State) EndStroke() {
	s.mu.Lock()
	s.surface.EndStroke()
	s.mu.Unlock()
}

// Drawing reports whether a stroke is active.
func (s *State) Drawing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Drawing()
}

// CanvasSize returns the logical size of the drawing surface.
func (s *State) CanvasSize() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Size()
}

// CanvasPNG returns the flattened drawing.
func (s *State) CanvasPNG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.PNG()
}
