package session

import (
	"image"

	"github.com/example/bananaboard/internal/generate"
	"github.com/example/bananaboard/internal/intake"
)

// Snapshot is a copy of the state taken for rendering.
type Snapshot struct {
	Mode      Mode
	Prompt    string
	Result    *intake.Image
	Images    []intake.Image
	Error     string
	ShowError bool
	Busy      bool
	Drawing   bool

	// Canvas is a copy of the drawing surface. It is nil outside canvas
	// mode.
	Canvas     *image.RGBA
	CanvasSize image.Point
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Mode:       s.mode,
		Prompt:     s.prompt,
		Images:     append([]intake.Image(nil), s.images...),
		Error:      s.errMsg,
		ShowError:  s.showError,
		Busy:       s.busy,
		Drawing:    s.surface.Drawing(),
		CanvasSize: s.surface.Size(),
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	if s.mode == ModeCanvas {
		snap.Canvas = s.surface.Image()
	}
	return snap
}

// ErrorText is the modal body: the embedded API message when the error
// carries one, otherwise the raw text.
func (s Snapshot) ErrorText() string {
	return generate.ParseErrorMessage(s.Error)
}

// CanSubmit reports whether the send control should be enabled.
func (s Snapshot) CanSubmit() bool { return !s.Busy }

// Status is the part of the state an input handler consults on every event.
// Unlike Snapshot it copies no images.
type Status struct {
	Mode      Mode
	Images    int
	HasResult bool
	ShowError bool
	Busy      bool
	Drawing   bool
}

// Status returns the current flags.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Mode:      s.mode,
		Images:    len(s.images),
		HasResult: s.result != nil,
		ShowError: s.showError,
		Busy:      s.busy,
		Drawing:   s.surface.Drawing(),
	}
}
