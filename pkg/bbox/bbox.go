// Package bbox converts model-space bounding boxes into pixel coordinates.
//
// Models return boxes on a fixed 0–1000 grid in [y1, x1, y2, x2] order,
// independent of the real image size. All functions are pure.
package bbox

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
)

// Scale is the side length of the normalized grid.
const Scale = 1000

// Normalized is a box in model coordinate space. Components are expected in
// [0, Scale] but ordering is not guaranteed; ToPixel corrects inversions.
type Normalized struct {
	Y1, X1, Y2, X2 int
}

// Pixel is a box in absolute pixel coordinates with X1<=X2 and Y1<=Y2.
type Pixel struct {
	X1, Y1, X2, Y2 int
}

// UnmarshalJSON accepts the [y1, x1, y2, x2] array form used by box_2d.
// Fractional values are rounded to the nearest integer.
func (n *Normalized) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("box_2d must be an array of numbers: %w", err)
	}
	if len(raw) != 4 {
		return fmt.Errorf("box_2d must have 4 components, got %d", len(raw))
	}
	n.Y1 = int(math.Round(raw[0]))
	n.X1 = int(math.Round(raw[1]))
	n.Y2 = int(math.Round(raw[2]))
	n.X2 = int(math.Round(raw[3]))
	return nil
}

// MarshalJSON writes the [y1, x1, y2, x2] array form.
func (n Normalized) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{n.Y1, n.X1, n.Y2, n.X2})
}

// ToPixel scales b onto an image of the given size.
// Components outside [0, Scale] are not clamped.
func ToPixel(b Normalized, width, height int) Pixel {
	p := Pixel{
		X1: scale(b.X1, width),
		Y1: scale(b.Y1, height),
		X2: scale(b.X2, width),
		Y2: scale(b.Y2, height),
	}
	if p.X1 > p.X2 {
		p.X1, p.X2 = p.X2, p.X1
	}
	if p.Y1 > p.Y2 {
		p.Y1, p.Y2 = p.Y2, p.Y1
	}
	return p
}

func scale(v, dim int) int {
	return int(math.Round(float64(v) / Scale * float64(dim)))
}

// Rect returns the box as an image.Rectangle (Max exclusive).
func (p Pixel) Rect() image.Rectangle {
	return image.Rect(p.X1, p.Y1, p.X2, p.Y2)
}

// Empty reports whether the box covers no pixels.
func (p Pixel) Empty() bool {
	return p.X1 == p.X2 || p.Y1 == p.Y2
}
