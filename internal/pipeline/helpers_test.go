package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/hazardlens/internal/ai/mock"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var gray = color.RGBA{R: 200, G: 200, B: 200, A: 255}

const threeRecs = "Sure! Here you go:\n```json\n[\n" +
	`{"Modification": "rec one", "Rationale": "r1", "Cost": "$", "Installation": "i1"},` + "\n" +
	`{"Modification": "rec two", "Rationale": "r2", "Cost": "$$", "Installation": "i2"},` + "\n" +
	`{"Modification": "rec three", "Rationale": "r3", "Cost": "$$$", "Installation": "i3"}` +
	"\n]\n```"

// scripted routes calls by kind so tests can vary one call at a time.
type scripted struct {
	recommend func() (models.GenerateResponse, error)
	locate    func(mod string) (models.GenerateResponse, error)
	visualize func(mod string) (models.GenerateResponse, error)

	mu         sync.Mutex
	locates    []string
	visualizes []string
}

func (s *scripted) provider() *mock.MockProvider {
	return &mock.MockProvider{
		Name_: "scripted",
		GenerateFunc: func(_ context.Context, req models.GenerateRequest) (models.GenerateResponse, error) {
			mod := modificationOf(req.Prompt)
			switch {
			case req.SystemInstruction == placementInstruction:
				s.mu.Lock()
				s.locates = append(s.locates, mod)
				s.mu.Unlock()
				return s.locate(mod)
			case req.WantsImage():
				s.mu.Lock()
				s.visualizes = append(s.visualizes, mod)
				s.mu.Unlock()
				return s.visualize(mod)
			default:
				return s.recommend()
			}
		},
	}
}

func modificationOf(prompt string) string {
	const marker = `"modification": `
	i := strings.LastIndex(prompt, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(prompt[i+len(marker):])
}

// happyBoxes gives each of threeRecs its own non-overlapping box.
// On a 200x100 source they land at x0-60/y0-40, x100-160/y0-40 and
// x40-180/y60-90.
var happyBoxes = map[string]string{
	"rec one":   "[0, 0, 400, 300]",
	"rec two":   "[0, 500, 400, 800]",
	"rec three": "[600, 200, 900, 900]",
}

func placementFor(mod string) models.GenerateResponse {
	box, ok := happyBoxes[mod]
	if !ok {
		box = "[100, 200, 500, 800]"
	}
	return mock.TextResponse("```json\n[{\"box_2d\": " + box + ", \"label\": \"area\"}]\n```")
}

// happyScript answers every call successfully.
func happyScript(t *testing.T) *scripted {
	after := solidPNG(t, 8, 8, color.RGBA{B: 255, A: 255})
	return &scripted{
		recommend: func() (models.GenerateResponse, error) {
			return mock.TextResponse(threeRecs), nil
		},
		locate: func(mod string) (models.GenerateResponse, error) {
			return placementFor(mod), nil
		},
		visualize: func(string) (models.GenerateResponse, error) {
			return mock.ImageResponse("image/png", after), nil
		},
	}
}

func testOptions() Options {
	return Options{MaxRecommendations: 3, Concurrency: 3, MaxImageDim: 1024}
}
