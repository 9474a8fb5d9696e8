package session

import (
	"context"
	"log"
	"strings"

	"github.com/example/bananaboard/internal/generate"
	"github.com/example/bananaboard/internal/intake"
)

// Request validates the state for the active mode and assembles the request
// Submit would send. Validation order is prompt, then editor image, then
// multi collection.
func (s *State) Request() (generate.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestLocked()
}

func (s *State) requestLocked() (generate.Request, error) {
	if strings.TrimSpace(s.prompt) == "" {
		return generate.Request{}, ErrEmptyPrompt
	}
	req := generate.Request{Kind: generate.KindContent, Prompt: s.prompt}
	switch s.mode {
	case ModeImageGen:
		req.Kind = generate.KindImage
	case ModeEditor:
		if s.result == nil {
			return generate.Request{}, ErrNoImage
		}
		req.Attachments = []intake.Image{*s.result}
	case ModeMulti:
		if len(s.images) == 0 {
			return generate.Request{}, ErrNoImages
		}
		req.Attachments = append([]intake.Image(nil), s.images...)
	case ModeCanvas:
		data, err := s.surface.PNG()
		if err != nil {
			return generate.Request{}, err
		}
		req.Attachments = []intake.Image{{MIMEType: "image/png", Data: data}}
	}
	return req, nil
}

// Submit validates, sends exactly one backend call and applies the outcome.
// A submission while another is in flight returns ErrBusy without a call.
// Every failure is also shown in the error modal. The busy flag is cleared
// on every return path.
func (s *State) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	mode := s.mode
	backend := s.backend
	req, err := s.requestLocked()
	s.mu.Unlock()
	s.changed()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		s.changed()
	}()

	if err == nil && backend == nil {
		err = ErrNoBackend
	}
	if err != nil {
		s.ShowError(generate.Message(err))
		return err
	}

	img, err := generate.Dispatch(ctx, backend, req)
	if err != nil {
		log.Printf("submit %s: %v", mode, err)
		s.ShowError(generate.Message(err))
		return err
	}

	s.mu.Lock()
	if mode == ModeMulti {
		s.images = nil
		s.mode = ModeEditor
	}
	s.setResultLocked(img)
	s.mu.Unlock()
	return nil
}
