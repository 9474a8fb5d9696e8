package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/example/bananaboard/internal/generate"
	"github.com/example/bananaboard/internal/intake"
)

type fakeModels struct {
	contentModel string
	imageModel   string
	contents     []*genai.Content
	contentCfg   *genai.GenerateContentConfig
	imageCfg     *genai.GenerateImagesConfig
	prompt       string

	contentRes *genai.GenerateContentResponse
	imageRes   *genai.GenerateImagesResponse
	err        error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.contentModel = model
	f.contents = contents
	f.contentCfg = config
	return f.contentRes, f.err
}

func (f *fakeModels) GenerateImages(_ context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.imageModel = model
	f.prompt = prompt
	f.imageCfg = config
	return f.imageRes, f.err
}

func TestGenerateContentBuildsOneUserTurn(t *testing.T) {
	m := &fakeModels{contentRes: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "A"},
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("X")}},
			{Text: "B"},
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("Y")}},
		}},
	}}}}
	c := newClient(m)
	attach := []intake.Image{
		{MIMEType: "image/jpeg", Data: []byte("one")},
		{Data: []byte("two")},
	}
	segs, err := c.GenerateContent(context.Background(), attach, "combine these")
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if m.contentModel != DefaultContentModel {
		t.Fatalf("model %q", m.contentModel)
	}
	if len(m.contents) != 1 || m.contents[0].Role != string(genai.RoleUser) {
		t.Fatalf("contents %+v", m.contents)
	}
	parts := m.contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "image/jpeg" || string(parts[0].InlineData.Data) != "one" {
		t.Fatalf("part 0 %+v", parts[0])
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != intake.DefaultMIMEType {
		t.Fatalf("part 1 %+v", parts[1])
	}
	if parts[2].Text != "combine these" {
		t.Fatalf("prompt part %+v", parts[2])
	}
	if got := m.contentCfg.ResponseModalities; len(got) != 2 || got[0] != "TEXT" || got[1] != "IMAGE" {
		t.Fatalf("modalities %v", got)
	}

	img, err := generate.Outcome(segs)
	if err != nil {
		t.Fatal(err)
	}
	if string(img.Data) != "Y" {
		t.Fatalf("got %q, want last image", img.Data)
	}
	text, _ := generate.Fold(segs)
	if text != "B" {
		t.Fatalf("text %q", text)
	}
}

func TestGenerateContentWithoutCandidates(t *testing.T) {
	c := newClient(&fakeModels{contentRes: &genai.GenerateContentResponse{}})
	if _, err := c.GenerateContent(context.Background(), nil, "p"); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerateContentPassesErrors(t *testing.T) {
	sentinel := errors.New("400 bad request")
	c := newClient(&fakeModels{err: sentinel})
	if _, err := c.GenerateContent(context.Background(), nil, "p"); !errors.Is(err, sentinel) {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateImage(t *testing.T) {
	m := &fakeModels{imageRes: &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{
		{Image: &genai.Image{ImageBytes: []byte("first")}},
		{Image: &genai.Image{ImageBytes: []byte("second"), MIMEType: "image/jpeg"}},
	}}}
	c := newClient(m, WithImageModel("imagen-test"), WithContentModel(""))
	img, err := c.GenerateImage(context.Background(), "a lighthouse")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if m.imageModel != "imagen-test" || m.prompt != "a lighthouse" {
		t.Fatalf("model %q prompt %q", m.imageModel, m.prompt)
	}
	if m.imageCfg == nil || m.imageCfg.NumberOfImages != 1 {
		t.Fatalf("config %+v", m.imageCfg)
	}
	if string(img.Data) != "first" || img.MIMEType != intake.DefaultMIMEType {
		t.Fatalf("image %+v", img)
	}
	if c.contentModel != DefaultContentModel {
		t.Fatal("empty model override replaced the default")
	}
}

func TestGenerateImageEmpty(t *testing.T) {
	c := newClient(&fakeModels{imageRes: &genai.GenerateImagesResponse{}})
	if _, err := c.GenerateImage(context.Background(), "p"); !errors.Is(err, generate.ErrNoImages) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), ""); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v", err)
	}
}
