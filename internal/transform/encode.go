package transform

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
)

// ContentType is the MIME type of every encoded derivative.
const ContentType = "image/webp"

// Extension is the file extension of every encoded derivative.
const Extension = ".webp"

// Encoder serialises images to lossy WebP with fixed quality and effort.
// It holds no mutable state and is safe for concurrent use.
type Encoder struct {
	quality int
	method  int
}

// NewEncoder creates an Encoder. quality is clamped to 0–100 and method
// (encoder effort, higher is slower and smaller) to 0–6.
func NewEncoder(quality, method int) *Encoder {
	return &Encoder{
		quality: clamp(quality, 0, 100),
		method:  clamp(method, 0, 6),
	}
}

// Quality returns the effective lossy quality.
func (e *Encoder) Quality() int { return e.quality }

// Method returns the effective encoder effort.
func (e *Encoder) Method() int { return e.method }

// Encode returns img as WebP bytes. Sources in other colour models are
// converted to NRGBA first.
func (e *Encoder) Encode(img image.Image) ([]byte, error) {
	if _, ok := img.(*image.NRGBA); !ok {
		img = imaging.Clone(img)
	}

	var buf bytes.Buffer
	err := webp.Encode(&buf, img, webp.Options{
		Quality: e.quality,
		Method:  e.method,
	})
	if err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
