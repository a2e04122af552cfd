package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	// Registered decoders for uploads and model output.
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kiranshivaraju/hazardlens/pkg/bbox"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

const (
	jpegQuality = 90
	boxStroke   = 4
)

// boxColor matches the named color "green" (#008000).
var boxColor = color.RGBA{R: 0, G: 128, B: 0, A: 255}

// SourceImage is an uploaded photo after decoding and downscaling.
// Image is never mutated; previews draw on copies.
type SourceImage struct {
	Image  *image.RGBA
	JPEG   []byte
	Format string
}

func (s *SourceImage) Width() int  { return s.Image.Bounds().Dx() }
func (s *SourceImage) Height() int { return s.Image.Bounds().Dy() }

// Media returns the JPEG encoding as a model attachment.
func (s *SourceImage) Media() []models.Media {
	return []models.Media{{MimeType: "image/jpeg", Data: s.JPEG}}
}

// prepareImage decodes upload, flattens transparency onto white and shrinks
// it to fit within maxDim x maxDim preserving aspect ratio. Images already
// inside the bound keep their size.
func prepareImage(upload []byte, maxDim int) (*SourceImage, error) {
	if len(upload) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}
	src, format, err := image.Decode(bytes.NewReader(upload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxDim)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrInvalidImage)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	return &SourceImage{Image: dst, JPEG: buf.Bytes(), Format: format}, nil
}

func fitWithin(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		nh := (h*maxDim + w/2) / w
		return maxDim, max(nh, 1)
	}
	nw := (w*maxDim + h/2) / h
	return max(nw, 1), maxDim
}

// drawPreview returns a copy of img with one box outline. The stroke lies
// inside the box and is clipped to the image.
func drawPreview(img *image.RGBA, p bbox.Pixel) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)

	bounds := out.Bounds()
	fill := image.NewUniform(boxColor)
	bands := []image.Rectangle{
		image.Rect(p.X1, p.Y1, p.X2+1, p.Y1+boxStroke),
		image.Rect(p.X1, p.Y2-boxStroke+1, p.X2+1, p.Y2+1),
		image.Rect(p.X1, p.Y1, p.X1+boxStroke, p.Y2+1),
		image.Rect(p.X2-boxStroke+1, p.Y1, p.X2+1, p.Y2+1),
	}
	for _, r := range bands {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		draw.Draw(out, r, fill, image.Point{}, draw.Src)
	}
	return out
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// toPNG decodes model image output in any registered format and re-encodes it.
func toPNG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding generated image: %w", err)
	}
	return encodePNG(img)
}
