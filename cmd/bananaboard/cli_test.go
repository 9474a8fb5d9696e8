package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/bananaboard/internal/canvas"
	"github.com/example/bananaboard/internal/config"
	"github.com/example/bananaboard/internal/generate"
	"github.com/example/bananaboard/internal/intake"
	"github.com/example/bananaboard/internal/session"
)

type fakeBackend struct {
	prompt      string
	attachments []intake.Image
	image       intake.Image
	err         error
}

func (f *fakeBackend) GenerateImage(_ context.Context, prompt string) (intake.Image, error) {
	f.prompt = prompt
	return f.image, f.err
}

func (f *fakeBackend) GenerateContent(_ context.Context, attachments []intake.Image, prompt string) ([]generate.Segment, error) {
	f.prompt = prompt
	f.attachments = attachments
	if f.err != nil {
		return nil, f.err
	}
	return []generate.Segment{generate.TextSegment("here you go"), generate.ImageSegment(f.image)}, nil
}

func useBackend(t *testing.T, b generate.Backend, err error) {
	t.Helper()
	original := newBackendFn
	newBackendFn = func(context.Context, *config.Config) (generate.Backend, error) { return b, err }
	t.Cleanup(func() { newBackendFn = original })
}

func testRoot(t *testing.T) *root {
	t.Helper()
	return &root{program: "bananaboard", config: config.New(), saveDir: t.TempDir()}
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGenerateWritesResult(t *testing.T) {
	out := intake.Image{MIMEType: "image/png", Data: pngData(t, 4, 4)}
	b := &fakeBackend{image: out}
	useBackend(t, b, nil)

	r := testRoot(t)
	path := filepath.Join(r.saveDir, "nested", "out.png")
	cmd, err := parseGenerateCmd([]string{"-output", path, "a", "banana", "boat"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if b.prompt != "a banana boat" {
		t.Fatalf("prompt = %q", b.prompt)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, out.Data) {
		t.Fatal("output differs from the generated image")
	}
}

func TestGenerateRejectsPromptTwice(t *testing.T) {
	_, err := parseGenerateCmd([]string{"-prompt", "x", "y"}, testRoot(t))
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestEditRunValidationError(t *testing.T) {
	b := &fakeBackend{}
	useBackend(t, b, nil)

	cmd, err := parseEditCmd([]string{"-prompt", "make it blue"}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = cmd.Run()
	if !errors.Is(err, session.ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if want := "failed to generate: Please upload an image to edit."; err.Error() != want {
		t.Fatalf("error = %q, want %q", err, want)
	}
	if b.prompt != "" {
		t.Fatal("backend called for an invalid request")
	}
}

func TestEditSendsImage(t *testing.T) {
	r := testRoot(t)
	in := filepath.Join(r.saveDir, "in.png")
	if err := os.WriteFile(in, pngData(t, 2, 2), 0o644); err != nil {
		t.Fatal(err)
	}
	b := &fakeBackend{image: intake.Image{MIMEType: "image/png", Data: pngData(t, 3, 3)}}
	useBackend(t, b, nil)

	cmd, err := parseEditCmd([]string{"-prompt", "sharpen", "-output", filepath.Join(r.saveDir, "out.png"), in}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(b.attachments) != 1 || b.attachments[0].MIMEType != "image/png" {
		t.Fatalf("attachments = %+v", b.attachments)
	}
}

func TestParseEditArgs(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"two images", []string{"a.png", "b.png"}, "use combine"},
		{"file and clipboard", []string{"-from-clipboard", "a.png"}, "not both"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseEditCmd(tc.args, testRoot(t))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSubmitErrorShowsAPIMessage(t *testing.T) {
	useBackend(t, &fakeBackend{err: errors.New(`got status 400: {"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)}, nil)

	cmd, err := parseGenerateCmd([]string{"a cat"}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = cmd.Run()
	if err == nil || err.Error() != "failed to generate: API key not valid" {
		t.Fatalf("error = %v", err)
	}
}

func TestMissingBackendFailsHeadless(t *testing.T) {
	sentinel := errors.New("no key")
	useBackend(t, nil, sentinel)

	cmd, err := parseCombineCmd([]string{"-prompt", "merge", "a.png"}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); !errors.Is(err, sentinel) {
		t.Fatalf("expected %v, got %v", sentinel, err)
	}
}

func TestParseStrokes(t *testing.T) {
	cases := []struct {
		name    string
		tokens  []string
		want    [][]canvas.Point
		wantErr string
	}{
		{"empty", nil, nil, ""},
		{"line", strings.Fields("line 1 2 3 4"), [][]canvas.Point{{canvas.Pt(1, 2), canvas.Pt(3, 4)}}, ""},
		{"stroke then line", strings.Fields("stroke 0 0 5 5 10 0 line 1.5 2 3 4"), [][]canvas.Point{
			{canvas.Pt(0, 0), canvas.Pt(5, 5), canvas.Pt(10, 0)},
			{canvas.Pt(1.5, 2), canvas.Pt(3, 4)},
		}, ""},
		{"short line", strings.Fields("line 1 2 3"), nil, "line requires"},
		{"odd stroke", strings.Fields("stroke 1 2 3 4 5"), nil, "x y pairs"},
		{"unknown", strings.Fields("circle 1 2 3"), nil, "unsupported stroke"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseStrokes(tc.tokens)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if len(got[i]) != len(tc.want[i]) {
					t.Fatalf("stroke %d: got %v, want %v", i, got[i], tc.want[i])
				}
				for j := range got[i] {
					if got[i][j] != tc.want[i][j] {
						t.Fatalf("stroke %d: got %v, want %v", i, got[i], tc.want[i])
					}
				}
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"black", color.RGBA{0, 0, 0, 255}, true},
		{"Red", color.RGBA{255, 0, 0, 255}, true},
		{"#00ff00", color.RGBA{0, 255, 0, 255}, true},
		{"not-a-colour", color.RGBA{}, false},
	}
	for _, tc := range cases {
		got, err := parseColor(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("parseColor(%q) error = %v", tc.in, err)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("parseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSketchDryRun(t *testing.T) {
	useBackend(t, nil, errors.New("no key"))
	original := canvas.StrokeColor
	t.Cleanup(func() { canvas.StrokeColor = original })

	r := testRoot(t)
	script := filepath.Join(r.saveDir, "strokes.txt")
	if err := os.WriteFile(script, []byte("# diagonal\nline 0 0 200 200\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(r.saveDir, "sketch.png")
	cmd, err := parseSketchCmd([]string{"-dry-run", "-script", script, "-color", "blue", "-output", out}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Size() != image.Pt(canvas.DefaultWidth, canvas.DefaultHeight) {
		t.Fatalf("size = %v", img.Bounds().Size())
	}
	r8, g8, b8, _ := img.At(100, 100).RGBA()
	if b8>>8 < 200 || r8>>8 > 50 || g8>>8 > 50 {
		t.Fatalf("pixel on the stroke = %v, want blue", img.At(100, 100))
	}
	if r, g, b, _ := img.At(300, 100).RGBA(); r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Fatalf("pixel off the stroke = %v, want white", img.At(300, 100))
	}
}

func TestSketchSendsCanvas(t *testing.T) {
	b := &fakeBackend{image: intake.Image{MIMEType: "image/png", Data: pngData(t, 2, 2)}}
	useBackend(t, b, nil)
	original := canvas.StrokeColor
	t.Cleanup(func() { canvas.StrokeColor = original })

	r := testRoot(t)
	cmd, err := parseSketchCmd([]string{"-prompt", "make it a house", "-output", filepath.Join(r.saveDir, "out.png"), "line", "10", "10", "50", "50"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(b.attachments) != 1 {
		t.Fatalf("attachments = %d", len(b.attachments))
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(b.attachments[0].Data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != canvas.DefaultWidth || cfg.Height != canvas.DefaultHeight {
		t.Fatalf("canvas attachment %dx%d", cfg.Width, cfg.Height)
	}
}

type fakeStore struct {
	key     string
	deleted bool
}

func (f *fakeStore) APIKey() (string, error)    { return f.key, nil }
func (f *fakeStore) SetAPIKey(key string) error { f.key = key; return nil }
func (f *fakeStore) DeleteAPIKey() error        { f.key = ""; f.deleted = true; return nil }

func TestConfigKeyCommands(t *testing.T) {
	store := &fakeStore{}
	newCmd := func(args ...string) *configCmd {
		c, err := parseConfigCmd(args, testRoot(t))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		c.store = func() (config.SecretStore, error) { return store, nil }
		return c
	}

	c := newCmd("set-key")
	c.in = strings.NewReader("  secret-from-stdin \n")
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if store.key != "secret-from-stdin" {
		t.Fatalf("stored %q", store.key)
	}

	if err := newCmd("set-key", "direct").Run(); err != nil {
		t.Fatal(err)
	}
	if store.key != "direct" {
		t.Fatalf("stored %q", store.key)
	}

	if err := newCmd("clear-key").Run(); err != nil {
		t.Fatal(err)
	}
	if !store.deleted || store.key != "" {
		t.Fatal("key not removed")
	}
}

func TestConfigPrint(t *testing.T) {
	r := testRoot(t)
	r.config.Theme = "dark"
	c, err := parseConfigCmd([]string{"print"}, r)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	c.out = &buf
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "theme = dark") {
		t.Fatalf("print output:\n%s", buf.String())
	}
}

func TestUsageTemplates(t *testing.T) {
	r := testRoot(t)
	cases := []struct {
		of   HelpData
		want string
	}{
		{newGenerateCmd("generate", session.ModeImageGen, r), "Usage: bananaboard generate"},
		{newGenerateCmd("edit", session.ModeEditor, r), "-from-clipboard"},
		{newGenerateCmd("combine", session.ModeMulti, r), "Usage: bananaboard combine"},
		{&sketchCmd{root: r}, "stroke x0 y0 x1 y1"},
		{&configCmd{root: r}, "set-key"},
	}
	for _, tc := range cases {
		help := (&UsageError{of: tc.of}).Error()
		if !strings.Contains(help, tc.want) {
			t.Errorf("%s help missing %q:\n%s", tc.of.Template(), tc.want, help)
		}
	}
}
