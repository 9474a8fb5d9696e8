package session

import "errors"

// ValidationError is a submission rejected before any backend call. Its
// message is shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrEmptyPrompt = &ValidationError{Message: "Please enter a prompt."}
	ErrNoImage     = &ValidationError{Message: "Please upload an image to edit."}
	ErrNoImages    = &ValidationError{Message: "Please upload at least one image to edit."}

	ErrBusy              = errors.New("a generation is already in progress")
	ErrUploadUnavailable = errors.New("uploads are not available in image generation mode")
	ErrNoBackend         = errors.New("no generation backend configured")
)
