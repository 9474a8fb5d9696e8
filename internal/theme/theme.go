package theme

import (
	"image/color"
)

// Theme defines the color palette for the window.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background
	Foreground color.RGBA // Main text color
	Muted      color.RGBA // Hints and placeholder text

	// Mode bar
	ModeBackground color.RGBA
	ModeActive     color.RGBA
	ModeHover      color.RGBA
	ModeText       color.RGBA
	ModeTextActive color.RGBA

	// Buttons
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonDisabled        color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Prompt field
	InputBackground color.RGBA
	InputBorder     color.RGBA
	InputFocus      color.RGBA

	// Display area
	DisplayBackground color.RGBA
	DisplayBorder     color.RGBA
	ThumbBorder       color.RGBA
	RemoveBadge       color.RGBA
	RemoveBadgeText   color.RGBA

	// Error modal
	Overlay         color.RGBA // Drawn over the window while the modal is open
	ModalBackground color.RGBA
	ModalTitle      color.RGBA
	ModalText       color.RGBA
}

// Default returns the hardcoded light theme.
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{243, 244, 246, 255},
		Foreground:            color.RGBA{17, 24, 39, 255},
		Muted:                 color.RGBA{107, 114, 128, 255},
		ModeBackground:        color.RGBA{229, 231, 235, 255},
		ModeActive:            color.RGBA{255, 255, 255, 255},
		ModeHover:             color.RGBA{209, 213, 219, 255},
		ModeText:              color.RGBA{75, 85, 99, 255},
		ModeTextActive:        color.RGBA{17, 24, 39, 255},
		ButtonBackground:      color.RGBA{17, 24, 39, 255},
		ButtonBackgroundHover: color.RGBA{55, 65, 81, 255},
		ButtonBackgroundPress: color.RGBA{0, 0, 0, 255},
		ButtonDisabled:        color.RGBA{156, 163, 175, 255},
		ButtonText:            color.RGBA{255, 255, 255, 255},
		ButtonBorder:          color.RGBA{17, 24, 39, 255},
		InputBackground:       color.RGBA{255, 255, 255, 255},
		InputBorder:           color.RGBA{209, 213, 219, 255},
		InputFocus:            color.RGBA{59, 130, 246, 255},
		DisplayBackground:     color.RGBA{255, 255, 255, 255},
		DisplayBorder:         color.RGBA{229, 231, 235, 255},
		ThumbBorder:           color.RGBA{209, 213, 219, 255},
		RemoveBadge:           color.RGBA{239, 68, 68, 255},
		RemoveBadgeText:       color.RGBA{255, 255, 255, 255},
		Overlay:               color.RGBA{0, 0, 0, 128},
		ModalBackground:       color.RGBA{255, 255, 255, 255},
		ModalTitle:            color.RGBA{17, 24, 39, 255},
		ModalText:             color.RGBA{185, 28, 28, 255},
	}
}
