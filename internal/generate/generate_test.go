package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/bananaboard/internal/intake"
)

type fakeBackend struct {
	imageCalls   int
	contentCalls int
	image        intake.Image
	segments     []Segment
	err          error
	gotPrompt    string
	gotAttach    []intake.Image
}

func (f *fakeBackend) GenerateImage(_ context.Context, prompt string) (intake.Image, error) {
	f.imageCalls++
	f.gotPrompt = prompt
	return f.image, f.err
}

func (f *fakeBackend) GenerateContent(_ context.Context, attachments []intake.Image, prompt string) ([]Segment, error) {
	f.contentCalls++
	f.gotPrompt = prompt
	f.gotAttach = attachments
	return f.segments, f.err
}

func img(tag string) intake.Image {
	return intake.Image{MIMEType: "image/png", Data: []byte(tag)}
}

func TestFoldLastWins(t *testing.T) {
	cases := []struct {
		name     string
		segments []Segment
		text     string
		image    string
	}{
		{"empty", nil, "", ""},
		{"text only", []Segment{TextSegment("a"), TextSegment("b")}, "b", ""},
		{"interleaved", []Segment{TextSegment("A"), ImageSegment(img("X")), TextSegment("B"), ImageSegment(img("Y"))}, "B", "Y"},
		{"image then text", []Segment{ImageSegment(img("X")), TextSegment("late")}, "late", "X"},
		{"empty segments ignored", []Segment{TextSegment("keep"), {}}, "keep", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, got := Fold(tc.segments)
			if text != tc.text {
				t.Errorf("text = %q, want %q", text, tc.text)
			}
			switch {
			case tc.image == "" && got != nil:
				t.Errorf("unexpected image %q", got.Data)
			case tc.image != "" && (got == nil || string(got.Data) != tc.image):
				t.Errorf("image = %v, want %q", got, tc.image)
			}
		})
	}
}

func TestOutcomeWithoutImageFails(t *testing.T) {
	cases := []struct {
		name     string
		segments []Segment
		want     string
	}{
		{"with text", []Segment{TextSegment("I cannot draw that")}, "I cannot draw that"},
		{"without text", nil, FallbackMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Outcome(tc.segments)
			var f *Failure
			if !errors.As(err, &f) {
				t.Fatalf("expected *Failure, got %v", err)
			}
			if Message(err) != tc.want {
				t.Fatalf("Message = %q, want %q", Message(err), tc.want)
			}
		})
	}
}

func TestOutcomeDefaultsMIMEType(t *testing.T) {
	out, err := Outcome([]Segment{ImageSegment(intake.Image{Data: []byte{1}})})
	if err != nil {
		t.Fatal(err)
	}
	if out.MIMEType != intake.DefaultMIMEType {
		t.Fatalf("mime %q", out.MIMEType)
	}
}

func TestDispatchImageKind(t *testing.T) {
	b := &fakeBackend{image: intake.Image{Data: []byte("pic")}}
	out, err := Dispatch(context.Background(), b, Request{Kind: KindImage, Prompt: "a cat"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if b.imageCalls != 1 || b.contentCalls != 0 {
		t.Fatalf("calls image=%d content=%d", b.imageCalls, b.contentCalls)
	}
	if b.gotPrompt != "a cat" || string(out.Data) != "pic" || out.MIMEType != intake.DefaultMIMEType {
		t.Fatalf("unexpected result %+v prompt %q", out, b.gotPrompt)
	}
}

func TestDispatchContentKind(t *testing.T) {
	attach := []intake.Image{img("one"), img("two")}
	b := &fakeBackend{segments: []Segment{TextSegment("A"), ImageSegment(img("X")), TextSegment("B"), ImageSegment(img("Y"))}}
	out, err := Dispatch(context.Background(), b, Request{Kind: KindContent, Prompt: "merge", Attachments: attach})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if b.contentCalls != 1 || b.imageCalls != 0 {
		t.Fatalf("calls image=%d content=%d", b.imageCalls, b.contentCalls)
	}
	if len(b.gotAttach) != 2 || string(b.gotAttach[0].Data) != "one" || string(b.gotAttach[1].Data) != "two" {
		t.Fatalf("attachments out of order: %+v", b.gotAttach)
	}
	if string(out.Data) != "Y" {
		t.Fatalf("got %q, want last image", out.Data)
	}
}

func TestDispatchWrapsBackendError(t *testing.T) {
	sentinel := errors.New("quota")
	b := &fakeBackend{err: sentinel}
	_, err := Dispatch(context.Background(), b, Request{Kind: KindContent, Prompt: "p"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if !strings.Contains(Message(err), "quota") {
		t.Fatalf("Message = %q", Message(err))
	}
}

func TestMessage(t *testing.T) {
	if Message(nil) != "" {
		t.Fatal("nil error should have no message")
	}
	if got := Message(errors.New("")); got != UnexpectedMessage {
		t.Fatalf("got %q", got)
	}
	if got := Message(errors.New("boom")); got != "boom" {
		t.Fatalf("got %q", got)
	}
}

func TestParseErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "network down", "network down"},
		{"embedded", `got status 400: {"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, "API key not valid"},
		{"bare", `{"error":{"message":"quota exceeded"}}`, "quota exceeded"},
		{"no message", `{"error":{"code":500}}`, `{"error":{"code":500}}`},
		{"invalid json", `{"error":nope}`, `{"error":nope}`},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseErrorMessage(tc.raw); got != tc.want {
				t.Fatalf("ParseErrorMessage(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
