package session

import (
	"fmt"
	"strings"
)

// Mode selects the input used for the next submission.
type Mode int

const (
	// ModeEditor edits the current result image. It is the initial mode.
	ModeEditor Mode = iota
	// ModeMulti combines an ordered collection of uploaded images.
	ModeMulti
	// ModeCanvas sends a free-hand drawing.
	ModeCanvas
	// ModeImageGen generates an image from the prompt alone.
	ModeImageGen
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeEditor, ModeMulti, ModeCanvas, ModeImageGen}

func (m Mode) String() string {
	switch m {
	case ModeEditor:
		return "editor"
	case ModeMulti:
		return "multi"
	case ModeCanvas:
		return "canvas"
	case ModeImageGen:
		return "imagegen"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Label is the short title shown on mode buttons.
func (m Mode) Label() string {
	switch m {
	case ModeEditor:
		return "Editor"
	case ModeMulti:
		return "Multi-Img"
	case ModeCanvas:
		return "Canvas"
	case ModeImageGen:
		return "Image Gen"
	}
	return m.String()
}

// AcceptsUploads reports whether the mode has an upload affordance.
func (m Mode) AcceptsUploads() bool { return m != ModeImageGen }

// ParseMode accepts the names produced by String plus a few aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "editor", "edit":
		return ModeEditor, nil
	case "multi", "multi-img", "multi-img-edit", "combine":
		return ModeMulti, nil
	case "canvas", "sketch", "draw":
		return ModeCanvas, nil
	case "imagegen", "image-gen", "generate", "gen":
		return ModeImageGen, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}
