// Package intake turns file-like inputs into encoded images that can be shown
// in the UI or attached to a generation request.
package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/sync/errgroup"
)

// DefaultMIMEType is used when a payload carries no usable type.
const DefaultMIMEType = "image/png"

var errNotDataURI = errors.New("not a base64 data URI")

// Image is an encoded image payload. Data holds the original file bytes, not
// decoded pixels.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI renders the image as data:<mime>;base64,<payload>.
func (im Image) DataURI() string {
	mt := im.MIMEType
	if mt == "" {
		mt = DefaultMIMEType
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(im.Data)
}

// ParseDataURI reverses DataURI. Only base64 payloads are accepted.
func ParseDataURI(s string) (Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Image{}, errNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, errNotDataURI
	}
	mt, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, errNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("data URI payload: %w", err)
	}
	if mt == "" {
		mt = DefaultMIMEType
	}
	return Image{MIMEType: mt, Data: data}, nil
}

// Decode returns the pixels of the image.
func (im Image) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(im.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", im.MIMEType, err)
	}
	return img, nil
}

// RGBA decodes the image into a zero-based RGBA buffer.
func (im Image) RGBA() (*image.RGBA, error) {
	img, err := im.Decode()
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

// PNG returns the PNG encoding of the image, re-encoding other formats.
func (im Image) PNG() ([]byte, error) {
	if im.MIMEType == "image/png" || (im.MIMEType == "" && bytes.HasPrefix(im.Data, pngMagic)) {
		return im.Data, nil
	}
	img, err := im.Decode()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Save writes the image to path as PNG.
func Save(path string, im Image) error {
	data, err := im.PNG()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SaveName returns a timestamped PNG file name in dir.
func SaveName(dir string, t time.Time) string {
	return filepath.Join(dir, "bananaboard-"+t.Format("20060102-150405")+".png")
}

// FromImage encodes img as PNG.
func FromImage(img image.Image) (Image, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("encode png: %w", err)
	}
	return Image{MIMEType: "image/png", Data: buf.Bytes()}, nil
}

// File is a file-like input: a name, a declared media type and a way to read
// its contents.
type File struct {
	Name string
	Type string
	Open func() (io.ReadCloser, error)
}

// FromPath describes a file on disk. The type comes from the extension and
// falls back to sniffing the first bytes.
func FromPath(path string) File {
	f := File{
		Name: path,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
	f.Type = typeByExtension(path)
	if f.Type == "" {
		f.Type = sniffPath(path)
	}
	return f
}

// FromBytes wraps an in-memory payload such as clipboard or capture data.
func FromBytes(name, typ string, data []byte) File {
	if typ == "" {
		typ = http.DetectContentType(data)
	}
	return File{
		Name: name,
		Type: typ,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// FromPaths is a convenience for FromPath over a list.
func FromPaths(paths []string) []File {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		files = append(files, FromPath(p))
	}
	return files
}

// IsImage reports whether the declared type is an image type.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.Type, "image/")
}

// Filter keeps image-typed files in their original order.
func Filter(files []File) []File {
	out := make([]File, 0, len(files))
	for _, f := range files {
		if f.IsImage() {
			out = append(out, f)
		}
	}
	return out
}

// Read loads one file and checks that its contents decode as an image.
func Read(f File) (Image, error) {
	if f.Open == nil {
		return Image{}, fmt.Errorf("%s: no reader", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return Image{}, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return Image{}, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return Image{}, fmt.Errorf("decode %s: %w", f.Name, err)
	}
	mt := f.Type
	if !strings.HasPrefix(mt, "image/") {
		mt = http.DetectContentType(data)
	}
	return Image{MIMEType: mt, Data: data}, nil
}

// DecodeAll reads every image file concurrently. Results keep the order of
// files; the first failure rejects the whole batch.
func DecodeAll(ctx context.Context, files []File) ([]Image, error) {
	files = Filter(files)
	out := make([]Image, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := Read(f)
			if err != nil {
				return err
			}
			out[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeFirst reads only the first image file. ok is false when files holds
// no images.
func DecodeFirst(ctx context.Context, files []File) (img Image, ok bool, err error) {
	files = Filter(files)
	if len(files) == 0 {
		return Image{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return Image{}, false, err
	}
	img, err = Read(files[0])
	if err != nil {
		return Image{}, false, err
	}
	return img, true, nil
}

func typeByExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil {
		return ""
	}
	return mt
}

func sniffPath(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	if n == 0 {
		return ""
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(head[:n]))
	if err != nil {
		return ""
	}
	return mt
}
