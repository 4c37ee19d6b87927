package transform

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrInvalidSpec is returned for a SizeSpec with a non-positive dimension.
var ErrInvalidSpec = errors.New("invalid size spec")

// Resize returns a new image sized according to spec. The source is not modified.
func Resize(src image.Image, spec SizeSpec) (image.Image, error) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("resize %s: empty source %dx%d", spec, b.Dx(), b.Dy())
	}

	switch s := spec.(type) {
	case FitCanvas:
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("resize %s: %w", s, ErrInvalidSpec)
		}
		return fitCanvas(src, s.Width, s.Height), nil
	case ProportionalWidth:
		if s.Width <= 0 {
			return nil, fmt.Errorf("resize %s: %w", s, ErrInvalidSpec)
		}
		return proportionalWidth(src, s.Width), nil
	default:
		return nil, fmt.Errorf("resize: unsupported size spec %T: %w", spec, ErrInvalidSpec)
	}
}

// FitDimensions returns the scaled size of a sw×sh source inside a w×h box.
// Each axis is floored and kept at one pixel minimum.
func FitDimensions(sw, sh, w, h int) (int, int) {
	ratio := min(float64(w)/float64(sw), float64(h)/float64(sh))
	return atLeastOne(float64(sw) * ratio), atLeastOne(float64(sh) * ratio)
}

// WidthDimensions returns the size of a sw×sh source scaled to width w.
func WidthDimensions(sw, sh, w int) (int, int) {
	ratio := float64(w) / float64(sw)
	return w, atLeastOne(float64(sh) * ratio)
}

func fitCanvas(src image.Image, w, h int) *image.NRGBA {
	b := src.Bounds()
	nw, nh := FitDimensions(b.Dx(), b.Dy(), w, h)

	scaled := imaging.Resize(src, nw, nh, imaging.Lanczos)
	canvas := imaging.New(w, h, color.NRGBA{})
	return imaging.Paste(canvas, scaled, image.Pt((w-nw)/2, (h-nh)/2))
}

func proportionalWidth(src image.Image, w int) *image.NRGBA {
	b := src.Bounds()
	nw, nh := WidthDimensions(b.Dx(), b.Dy(), w)
	return imaging.Resize(src, nw, nh, imaging.Lanczos)
}

// atLeastOne floors v; a zero-sized axis cannot be resampled.
func atLeastOne(v float64) int {
	n := int(v)
	if n < 1 {
		return 1
	}
	return n
}
