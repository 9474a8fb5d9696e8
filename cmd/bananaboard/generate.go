package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/bananaboard/internal/clipboard"
	"github.com/example/bananaboard/internal/generate"
	"github.com/example/bananaboard/internal/intake"
	"github.com/example/bananaboard/internal/session"
)

// generateCmd runs one submission headless: generate, edit and combine
// differ only in the mode and in how many images they take.
type generateCmd struct {
	name          string
	mode          session.Mode
	prompt        string
	output        string
	files         []string
	fromClipboard bool
	toClipboard   bool
	*root
	fs *flag.FlagSet
}

func (g *generateCmd) FlagSet() *flag.FlagSet {
	return g.fs
}

func newGenerateCmd(name string, mode session.Mode, r *root) *generateCmd {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	g := &generateCmd{name: name, mode: mode, root: r, fs: fs}
	fs.Usage = usageFunc(g)
	fs.StringVar(&g.prompt, "prompt", "", "instruction sent with the request")
	fs.StringVar(&g.output, "output", "", "write the result to this file, - for stdout (defaults to a timestamped file in the save directory)")
	fs.BoolVar(&g.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&g.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	if mode.AcceptsUploads() {
		fs.BoolVar(&g.fromClipboard, "from-clipboard", false, "read an input image from the clipboard")
		fs.BoolVar(&g.fromClipboard, "from-clip", false, "read an input image from the clipboard (alias)")
	}
	return g
}

func parseGenerateCmd(args []string, r *root) (*generateCmd, error) {
	g := newGenerateCmd("generate", session.ModeImageGen, r)
	if err := g.fs.Parse(args); err != nil {
		return nil, err
	}
	if g.prompt == "" {
		g.prompt = strings.Join(g.fs.Args(), " ")
	} else if g.fs.NArg() > 0 {
		return nil, &UsageError{of: g}
	}
	return g, nil
}

func parseEditCmd(args []string, r *root) (*generateCmd, error) {
	g := newGenerateCmd("edit", session.ModeEditor, r)
	if err := g.fs.Parse(args); err != nil {
		return nil, err
	}
	g.files = g.fs.Args()
	switch {
	case g.fromClipboard && len(g.files) > 0:
		return nil, fmt.Errorf("edit takes an image file or -from-clipboard, not both")
	case len(g.files) > 1:
		return nil, fmt.Errorf("edit takes one image, got %d; use combine for several", len(g.files))
	}
	return g, nil
}

func parseCombineCmd(args []string, r *root) (*generateCmd, error) {
	g := newGenerateCmd("combine", session.ModeMulti, r)
	if err := g.fs.Parse(args); err != nil {
		return nil, err
	}
	g.files = g.fs.Args()
	return g, nil
}

func (g *generateCmd) Run() error {
	ctx := g.root.context()
	s, err := g.root.newSession(g.mode, false)
	if err != nil {
		return err
	}
	s.SetPrompt(g.prompt)

	files := intake.FromPaths(g.files)
	if g.fromClipboard {
		f, err := clipboard.Paste()
		if err != nil {
			return fmt.Errorf("failed to read clipboard: %w", err)
		}
		files = append(files, f)
	}
	if len(files) > 0 {
		if err := s.Upload(ctx, files); err != nil {
			return err
		}
	}
	return g.root.submit(s, g.output, g.toClipboard)
}

// submitError is a failed submission. Its text is the message the window
// would show in its error modal.
type submitError struct {
	text string
	err  error
}

func (e *submitError) Error() string { return "failed to generate: " + e.text }

func (e *submitError) Unwrap() error { return e.err }

// submit sends the session's request and writes the result.
func (r *root) submit(s *session.State, output string, toClipboard bool) error {
	if err := s.Submit(r.context()); err != nil {
		return &submitError{text: generate.ParseErrorMessage(generate.Message(err)), err: err}
	}
	img, ok := s.Result()
	if !ok {
		return &submitError{text: generate.UnexpectedMessage}
	}
	if preview, err := img.Decode(); err == nil {
		r.notifier.Generated(fmt.Sprintf("%s: %s", s.Mode().Label(), s.Prompt()), preview)
	} else {
		log.Printf("notification preview: %v", err)
	}

	if err := r.writeResult(img, output); err != nil {
		return err
	}
	if toClipboard {
		if err := clipboard.CopyImage(img); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		r.notifier.Copied("result")
	}
	return nil
}

func (r *root) writeResult(img intake.Image, output string) error {
	if output == "-" {
		data, err := img.PNG()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	if output == "" {
		if err := os.MkdirAll(r.saveDir, 0o755); err != nil {
			return fmt.Errorf("failed to create save directory: %w", err)
		}
		output = intake.SaveName(r.saveDir, time.Now())
	} else if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := intake.Save(output, img); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "saved", output)
	r.notifier.Saved(output)
	return nil
}
