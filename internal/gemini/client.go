// Package gemini is the generate.Backend backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/example/bananaboard/internal/generate"
	"github.com/example/bananaboard/internal/intake"
)

const (
	// DefaultImageModel serves text-to-image requests.
	DefaultImageModel = "imagen-4.0-generate-001"
	// DefaultContentModel serves multimodal edit requests.
	DefaultContentModel = "gemini-2.5-flash-image-preview"
)

var (
	ErrNoAPIKey     = errors.New("no API key configured")
	errNoCandidates = errors.New("no candidates returned from model")
)

// models is the subset of *genai.Models the client calls.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client implements generate.Backend.
type Client struct {
	models       models
	imageModel   string
	contentModel string
}

var _ generate.Backend = (*Client)(nil)

// Option modifies a Client during creation.
type Option func(*Client)

// WithImageModel overrides the text-to-image model.
func WithImageModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.imageModel = name
		}
	}
}

// WithContentModel overrides the multimodal model.
func WithContentModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.contentModel = name
		}
	}
}

// New creates a client for the Gemini developer API. The key is passed
// through unchanged.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newClient(gc.Models, opts...), nil
}

func newClient(m models, opts ...Option) *Client {
	c := &Client{models: m, imageModel: DefaultImageModel, contentModel: DefaultContentModel}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GenerateImage requests one image for prompt and returns the first image
// produced.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (intake.Image, error) {
	res, err := c.models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{NumberOfImages: 1})
	if err != nil {
		return intake.Image{}, err
	}
	if res == nil {
		return intake.Image{}, generate.ErrNoImages
	}
	for _, gi := range res.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mt := gi.Image.MIMEType
		if mt == "" {
			mt = intake.DefaultMIMEType
		}
		return intake.Image{MIMEType: mt, Data: gi.Image.ImageBytes}, nil
	}
	return intake.Image{}, generate.ErrNoImages
}

// GenerateContent sends the attachments followed by the prompt as one user
// turn and returns the parts of the first candidate in order.
func (c *Client) GenerateContent(ctx context.Context, attachments []intake.Image, prompt string) ([]generate.Segment, error) {
	parts := make([]*genai.Part, 0, len(attachments)+1)
	for _, a := range attachments {
		mt := a.MIMEType
		if mt == "" {
			mt = intake.DefaultMIMEType
		}
		parts = append(parts, genai.NewPartFromBytes(a.Data, mt))
	}
	parts = append(parts, genai.NewPartFromText(prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	res, err := c.models.GenerateContent(ctx, c.contentModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0] == nil || res.Candidates[0].Content == nil {
		return nil, errNoCandidates
	}
	return segments(res.Candidates[0].Content.Parts), nil
}

func segments(parts []*genai.Part) []generate.Segment {
	out := make([]generate.Segment, 0, len(parts))
	for _, p := range parts {
		switch {
		case p == nil:
		case p.Text != "":
			out = append(out, generate.TextSegment(p.Text))
		case p.InlineData != nil && len(p.InlineData.Data) > 0:
			out = append(out, generate.ImageSegment(intake.Image{
				MIMEType: p.InlineData.MIMEType,
				Data:     p.InlineData.Data,
			}))
		}
	}
	return out
}
