// Package generate assembles generation requests, dispatches them to a
// backend and folds multimodal responses into a single outcome.
package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/bananaboard/internal/intake"
)

const (
	// FallbackMessage is reported when a multimodal response has no image
	// and no text.
	FallbackMessage = "Failed to generate image. Please try again."
	// UnexpectedMessage is reported for errors that carry no text.
	UnexpectedMessage = "An unexpected error occurred."
)

// ErrNoImages is returned by a backend when a text-to-image call produced
// nothing.
var ErrNoImages = errors.New("no images returned")

// Kind selects the backend operation.
type Kind int

const (
	// KindContent is the multimodal path: attachments plus a prompt.
	KindContent Kind = iota
	// KindImage is the text-to-image path.
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindImage:
		return "image"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Request is one assembled submission.
type Request struct {
	Kind        Kind
	Prompt      string
	Attachments []intake.Image
}

// Segment is one part of a multimodal response. Exactly one of Text or Image
// is set.
type Segment struct {
	Text  string
	Image *intake.Image
}

// TextSegment and ImageSegment build segments.
func TextSegment(s string) Segment          { return Segment{Text: s} }
func ImageSegment(img intake.Image) Segment { return Segment{Image: &img} }

// Backend is the generative API.
type Backend interface {
	GenerateImage(ctx context.Context, prompt string) (intake.Image, error)
	GenerateContent(ctx context.Context, attachments []intake.Image, prompt string) ([]Segment, error)
}

// Failure is a completed call that returned no image.
type Failure struct {
	Text string
}

func (f *Failure) Error() string {
	if f.Text == "" {
		return FallbackMessage
	}
	return f.Text
}

// Fold scans every segment and keeps the last text and the last image seen.
// Earlier values are overwritten, not accumulated.
func Fold(segments []Segment) (text string, img *intake.Image) {
	for _, s := range segments {
		switch {
		case s.Image != nil:
			img = s.Image
		case s.Text != "":
			text = s.Text
		}
	}
	return text, img
}

// Outcome turns a folded multimodal response into an image or a *Failure.
func Outcome(segments []Segment) (intake.Image, error) {
	text, img := Fold(segments)
	if img == nil {
		return intake.Image{}, &Failure{Text: text}
	}
	out := *img
	if out.MIMEType == "" {
		out.MIMEType = intake.DefaultMIMEType
	}
	return out, nil
}

// Dispatch issues exactly one backend call for req.
func Dispatch(ctx context.Context, b Backend, req Request) (intake.Image, error) {
	switch req.Kind {
	case KindImage:
		img, err := b.GenerateImage(ctx, req.Prompt)
		if err != nil {
			return intake.Image{}, fmt.Errorf("generate image: %w", err)
		}
		if img.MIMEType == "" {
			img.MIMEType = intake.DefaultMIMEType
		}
		return img, nil
	case KindContent:
		segs, err := b.GenerateContent(ctx, req.Attachments, req.Prompt)
		if err != nil {
			return intake.Image{}, fmt.Errorf("generate content: %w", err)
		}
		return Outcome(segs)
	}
	return intake.Image{}, fmt.Errorf("unknown request kind %v", req.Kind)
}

// Message extracts the text a user should see for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnexpectedMessage
}
