// Package clipboard moves images between the system clipboard and the intake
// representation used by the session.
package clipboard

import (
	"errors"

	"github.com/example/bananaboard/internal/intake"
)

// ErrEmpty is returned when the clipboard holds no image.
var ErrEmpty = errors.New("clipboard does not contain image data")

// Paste returns the clipboard image as an intake file.
func Paste() (intake.File, error) {
	data, err := readPNG()
	if err != nil {
		return intake.File{}, err
	}
	if len(data) == 0 {
		return intake.File{}, ErrEmpty
	}
	return intake.FromBytes("clipboard.png", "image/png", data), nil
}

// PasteText returns the clipboard text. File managers put copied files there
// as paths or file:// URIs.
func PasteText() (string, error) {
	data, err := readText()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CopyImage places img on the clipboard as PNG.
func CopyImage(img intake.Image) error {
	data, err := img.PNG()
	if err != nil {
		return err
	}
	return writePNG(data)
}

// CopyText places text on the clipboard.
func CopyText(text string) error {
	return writeText(text)
}
